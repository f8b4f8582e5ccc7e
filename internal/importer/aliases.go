package importer

import (
	"strings"
	"unicode"

	"github.com/RubachokBoss/academic-records/internal/models"
)

type Field string

const (
	FieldMatricNumber   Field = "matricNumber"
	FieldFirstName      Field = "firstName"
	FieldLastName       Field = "lastName"
	FieldMiddleName     Field = "middleName"
	FieldDepartmentCode Field = "departmentCode"
	FieldAdmissionYear  Field = "admissionYear"
	FieldLevel          Field = "level"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldCourseCode     Field = "courseCode"
	FieldScore          Field = "score"
	FieldSemester       Field = "semester"
	FieldAcademicYear   Field = "academicYear"
)

// AliasTable maps a canonical field to the header spellings accepted for it.
// Spellings are compared after normalizeHeader.
type AliasTable map[Field][]string

var StudentColumns = AliasTable{
	FieldMatricNumber:   {"matricnumber", "matricno", "matric", "matriculation", "matriculationnumber"},
	FieldFirstName:      {"firstname", "fname", "givenname"},
	FieldLastName:       {"lastname", "lname", "surname"},
	FieldMiddleName:     {"middlename", "mname", "othername", "othernames"},
	FieldDepartmentCode: {"departmentcode", "deptcode", "department", "dept"},
	FieldAdmissionYear:  {"admissionyear", "yearofadmission", "year"},
	FieldLevel:          {"studentlevel", "level", "currentlevel"},
	FieldEmail:          {"email", "emailaddress"},
	FieldPhone:          {"phone", "phonenumber", "mobile"},
}

var ScoreColumns = AliasTable{
	FieldMatricNumber:   {"matricnumber", "matricno", "matric"},
	FieldDepartmentCode: {"departmentcode", "deptcode", "department", "dept"},
	FieldCourseCode:     {"coursecode", "course"},
	FieldScore:          {"score", "mark", "marks", "totalscore"},
	FieldLevel:          {"studentlevel", "level", "currentlevel"},
	FieldSemester:       {"semester", "sem"},
	FieldAcademicYear:   {"academicyear", "session", "year"},
}

// Resolve returns the column index of every field found in headers. When two
// columns match the same field the leftmost wins.
func (t AliasTable) Resolve(headers []string) map[Field]int {
	lookup := make(map[string]Field)
	for field, spellings := range t {
		for _, s := range spellings {
			lookup[normalizeHeader(s)] = field
		}
	}

	columns := make(map[Field]int)
	for i, h := range headers {
		field, ok := lookup[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := columns[field]; !seen {
			columns[field] = i
		}
	}
	return columns
}

func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var levelAliases = map[string]models.Level{
	"ND1": models.LevelND1, "ND_1": models.LevelND1,
	"ND2": models.LevelND2, "ND_2": models.LevelND2,
	"HND1": models.LevelHND1, "HND_1": models.LevelHND1,
	"HND2": models.LevelHND2, "HND_2": models.LevelHND2,
	"100": models.Level100, "LEVEL_100": models.Level100, "LEVEL100": models.Level100, "100_LEVEL": models.Level100, "100L": models.Level100,
	"200": models.Level200, "LEVEL_200": models.Level200, "LEVEL200": models.Level200, "200_LEVEL": models.Level200, "200L": models.Level200,
	"300": models.Level300, "LEVEL_300": models.Level300, "LEVEL300": models.Level300, "300_LEVEL": models.Level300, "300L": models.Level300,
	"400": models.Level400, "LEVEL_400": models.Level400, "LEVEL400": models.Level400, "400_LEVEL": models.Level400, "400L": models.Level400,
	"500": models.Level500, "LEVEL_500": models.Level500, "LEVEL500": models.Level500, "500_LEVEL": models.Level500, "500L": models.Level500,
}

var semesterAliases = map[string]models.Semester{
	"FIRST": models.SemesterFirst, "1": models.SemesterFirst, "1ST": models.SemesterFirst, "FIRST_SEMESTER": models.SemesterFirst,
	"SECOND": models.SemesterSecond, "2": models.SemesterSecond, "2ND": models.SemesterSecond, "SECOND_SEMESTER": models.SemesterSecond,
}

// ParseLevel accepts the level spellings used in departmental spreadsheets,
// for example "100", "LEVEL_100", "100 Level" and "level100".
func ParseLevel(s string) (models.Level, bool) {
	level, ok := levelAliases[normalizeToken(s)]
	return level, ok
}

func ParseSemester(s string) (models.Semester, bool) {
	semester, ok := semesterAliases[normalizeToken(s)]
	return semester, ok
}

func normalizeToken(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	}), "_")
}
