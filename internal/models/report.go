package models

type GPAHistory struct {
	Student       StudentSummary `json:"student"`
	SemesterGPAs  []SemesterGPA  `json:"semesterGpas"`
	CGPA          float64        `json:"cgpa"`
	TotalUnits    int            `json:"totalUnits"`
	TotalPoints   int            `json:"totalPoints"`
	ClassOfDegree string         `json:"classOfDegree"`
}

type StudentSummary struct {
	ID           string `json:"id"`
	MatricNumber string `json:"matricNumber"`
	Name         string `json:"name"`
	CurrentLevel Level  `json:"currentLevel"`
}

type GPAStudentRef struct {
	Value   float64        `json:"value"`
	Student StudentSummary `json:"student"`
}

type GPADistribution struct {
	FirstClass  int `json:"firstClass"`
	SecondUpper int `json:"secondUpper"`
	SecondLower int `json:"secondLower"`
	ThirdClass  int `json:"thirdClass"`
	Pass        int `json:"pass"`
	Fail        int `json:"fail"`
}

type DepartmentGPAStats struct {
	Count        int              `json:"count"`
	HighestGPA   *GPAStudentRef   `json:"highestGpa"`
	LowestGPA    *GPAStudentRef   `json:"lowestGpa"`
	AverageGPA   *float64         `json:"averageGpa"`
	Distribution *GPADistribution `json:"distribution,omitempty"`
}

type CourseLine struct {
	CourseCode    string  `json:"courseCode"`
	CourseTitle   string  `json:"courseTitle"`
	CreditUnit    int     `json:"creditUnit"`
	Score         float64 `json:"score"`
	Grade         Grade   `json:"grade"`
	GradePoint    int     `json:"gradePoint"`
	QualityPoints int     `json:"qualityPoints"`
	IsCarryOver   bool    `json:"isCarryOver"`
}

type StudentSemesterResult struct {
	StudentID    string       `json:"studentId"`
	MatricNumber string       `json:"matricNumber"`
	StudentName  string       `json:"studentName"`
	Level        Level        `json:"level"`
	Semester     Semester     `json:"semester"`
	AcademicYear string       `json:"academicYear"`
	Results      []CourseLine `json:"results"`
	GPA          float64      `json:"gpa"`
	CGPA         float64      `json:"cgpa"`
}

type DepartmentStats struct {
	DepartmentID   string  `json:"departmentId"`
	DepartmentName string  `json:"departmentName"`
	TotalStudents  int     `json:"totalStudents"`
	HighestGPA     float64 `json:"highestGpa"`
	LowestGPA      float64 `json:"lowestGpa"`
	AverageGPA     float64 `json:"averageGpa"`
	CarryOverCount int     `json:"carryOverCount"`
	PassRate       int     `json:"passRate"`
}

type DepartmentReport struct {
	Department   DepartmentWithStats     `json:"department"`
	Level        Level                   `json:"level"`
	Semester     Semester                `json:"semester"`
	AcademicYear string                  `json:"academicYear"`
	Stats        DepartmentStats         `json:"stats"`
	Students     []StudentSemesterResult `json:"students"`
}

type FacultyDepartmentStats struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Code           string   `json:"code"`
	StudentCount   int      `json:"studentCount"`
	CourseCount    int      `json:"courseCount"`
	AverageGPA     *float64 `json:"averageGpa"`
	HighestGPA     *float64 `json:"highestGpa"`
	LowestGPA      *float64 `json:"lowestGpa"`
	CarryOverCount int      `json:"carryOverCount"`
}

type FacultyStats struct {
	Faculty         Faculty                  `json:"faculty"`
	DepartmentCount int                      `json:"departmentCount"`
	TotalStudents   int                      `json:"totalStudents"`
	Departments     []FacultyDepartmentStats `json:"departments"`
}

type TranscriptSemester struct {
	Level        Level        `json:"level"`
	Semester     Semester     `json:"semester"`
	AcademicYear string       `json:"academicYear"`
	Courses      []CourseLine `json:"courses"`
	GPA          float64      `json:"gpa"`
	TotalUnits   int          `json:"totalUnits"`
	TotalPoints  int          `json:"totalPoints"`
}

type Transcript struct {
	Student       StudentWithDepartment `json:"student"`
	FacultyName   string                `json:"facultyName"`
	Semesters     []TranscriptSemester  `json:"semesters"`
	CGPA          float64               `json:"cgpa"`
	TotalUnits    int                   `json:"totalUnits"`
	TotalPoints   int                   `json:"totalPoints"`
	ClassOfDegree string                `json:"classOfDegree"`
	CarryOvers    []CourseLine          `json:"carryOvers"`
}

// SemesterGPAView is a stored semester record, or one computed on the fly
// from results when nothing has been stored for the key yet.
type SemesterGPAView struct {
	SemesterGPA
	Calculated bool `json:"calculated,omitempty"`
}
