package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
)

const MinYear = 1990

var (
	academicYearPattern = regexp.MustCompile(`^(\d{4})/(\d{4})$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	validLevels         = joinLevels()
)

// Validator runs the per-row checks that need no lookups. The clock is
// injectable so year bounds are testable.
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// ValidStudent is a student row whose fields passed the local checks.
type ValidStudent struct {
	RowNumber      int
	MatricNumber   string
	FirstName      string
	LastName       string
	MiddleName     string
	DepartmentCode string
	AdmissionYear  int
	Level          models.Level
	Email          string
	Phone          string
}

type ValidScore struct {
	RowNumber      int
	MatricNumber   string
	DepartmentCode string
	CourseCode     string
	Score          float64
	Level          models.Level
	Semester       models.Semester
	AcademicYear   string
}

func (v *Validator) ValidateStudentRow(row StudentRow) (ValidStudent, []string) {
	var errs []string
	out := ValidStudent{
		RowNumber:      row.RowNumber,
		MatricNumber:   row.MatricNumber,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		MiddleName:     row.MiddleName,
		DepartmentCode: row.DepartmentCode,
		Email:          row.Email,
		Phone:          row.Phone,
	}

	if row.MatricNumber == "" {
		errs = append(errs, "Matric number is required")
	}
	if row.FirstName == "" {
		errs = append(errs, "First name is required")
	}
	if row.LastName == "" {
		errs = append(errs, "Last name is required")
	}
	if row.DepartmentCode == "" {
		errs = append(errs, "Department code is required")
	}

	if year, err := strconv.Atoi(row.AdmissionYear); err != nil {
		errs = append(errs, "Valid admission year is required")
	} else if !v.ValidAdmissionYear(year) {
		errs = append(errs, fmt.Sprintf("Admission year must be between %d and %d", MinYear, v.now().Year()+1))
	} else {
		out.AdmissionYear = year
	}

	if row.Level == "" {
		errs = append(errs, "Student level is required")
	} else if level, ok := ParseLevel(row.Level); !ok {
		errs = append(errs, fmt.Sprintf("Invalid level: %s. Valid values: %s", row.Level, validLevels))
	} else {
		out.Level = level
	}

	if row.MatricNumber != "" && row.DepartmentCode != "" && !MatricMatchesDepartment(row.MatricNumber, row.DepartmentCode) {
		errs = append(errs, fmt.Sprintf("Matric number %s does not match department code %s", row.MatricNumber, row.DepartmentCode))
	}

	if row.Email != "" && !emailPattern.MatchString(row.Email) {
		errs = append(errs, "Invalid email format")
	}

	return out, errs
}

func (v *Validator) ValidateScoreRow(row ScoreRow) (ValidScore, []string) {
	var errs []string
	out := ValidScore{
		RowNumber:      row.RowNumber,
		MatricNumber:   row.MatricNumber,
		DepartmentCode: row.DepartmentCode,
		CourseCode:     row.CourseCode,
		AcademicYear:   row.AcademicYear,
	}

	if row.MatricNumber == "" {
		errs = append(errs, "Matric number is required")
	}
	if row.CourseCode == "" {
		errs = append(errs, "Course code is required")
	}

	if score, err := strconv.ParseFloat(row.Score, 64); err != nil {
		errs = append(errs, "Valid score is required")
	} else if score < 0 || score > 100 {
		errs = append(errs, "Score must be between 0 and 100")
	} else {
		out.Score = score
	}

	if row.Level == "" {
		errs = append(errs, "Student level is required")
	} else if level, ok := ParseLevel(row.Level); !ok {
		errs = append(errs, fmt.Sprintf("Invalid level: %s. Valid values: %s", row.Level, validLevels))
	} else {
		out.Level = level
	}

	if row.Semester == "" {
		errs = append(errs, "Semester is required")
	} else if semester, ok := ParseSemester(row.Semester); !ok {
		errs = append(errs, fmt.Sprintf("Invalid semester: %s. Valid values: FIRST, SECOND", row.Semester))
	} else {
		out.Semester = semester
	}

	if row.AcademicYear == "" {
		errs = append(errs, "Academic year is required")
	} else if !v.ValidAcademicYear(row.AcademicYear) {
		errs = append(errs, fmt.Sprintf("Invalid academic year: %s. Expected YYYY/YYYY with consecutive years from %d to %d (e.g., 2023/2024)",
			row.AcademicYear, MinYear, v.now().Year()))
	}

	return out, errs
}

// ValidAcademicYear accepts "YYYY/YYYY" where the second year follows the
// first and the first lies in [MinYear, current year].
func (v *Validator) ValidAcademicYear(s string) bool {
	m := academicYearPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1 && start >= MinYear && start <= v.now().Year()
}

func (v *Validator) ValidAdmissionYear(year int) bool {
	return year >= MinYear && year <= v.now().Year()+1
}

// MatricMatchesDepartment checks that the segment before the first "/" of a
// matric number such as CSC/2023/001 equals the department code.
func MatricMatchesDepartment(matric, departmentCode string) bool {
	prefix, _, found := strings.Cut(matric, "/")
	if !found {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(prefix), strings.TrimSpace(departmentCode))
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func joinLevels() string {
	names := make([]string, len(models.Levels))
	for i, l := range models.Levels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}
