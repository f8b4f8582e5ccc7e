package models

type Level string

const (
	LevelND1  Level = "ND1"
	LevelND2  Level = "ND2"
	LevelHND1 Level = "HND1"
	LevelHND2 Level = "HND2"
	Level100  Level = "LEVEL_100"
	Level200  Level = "LEVEL_200"
	Level300  Level = "LEVEL_300"
	Level400  Level = "LEVEL_400"
	Level500  Level = "LEVEL_500"
)

// Levels lists every level in academic order.
var Levels = []Level{
	LevelND1, LevelND2, LevelHND1, LevelHND2,
	Level100, Level200, Level300, Level400, Level500,
}

func (l Level) Valid() bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}

func (l Level) String() string {
	return string(l)
}

type Semester string

const (
	SemesterFirst  Semester = "FIRST"
	SemesterSecond Semester = "SECOND"
)

var Semesters = []Semester{SemesterFirst, SemesterSecond}

func (s Semester) Valid() bool {
	return s == SemesterFirst || s == SemesterSecond
}

func (s Semester) String() string {
	return string(s)
}

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

type UserRole string

const (
	RoleHOD  UserRole = "HOD"
	RoleDEAN UserRole = "DEAN"
)

func (r UserRole) Valid() bool {
	return r == RoleHOD || r == RoleDEAN
}
