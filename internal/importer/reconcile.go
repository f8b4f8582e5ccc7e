package importer

import (
	"fmt"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/models"
)

// StudentRef is what score reconciliation needs to know about a student.
type StudentRef struct {
	ID             string
	DepartmentID   string
	DepartmentCode string
	PassMark       int
}

// Catalog holds the persisted records a batch is checked against. It is
// loaded once per import so row checks do no I/O.
type Catalog struct {
	departments map[string]models.Department
	students    map[string]StudentRef
	courses     map[string]models.Course
}

func NewCatalog() *Catalog {
	return &Catalog{
		departments: make(map[string]models.Department),
		students:    make(map[string]StudentRef),
		courses:     make(map[string]models.Course),
	}
}

func (c *Catalog) AddDepartment(d models.Department) {
	c.departments[strings.ToUpper(d.Code)] = d
}

func (c *Catalog) AddStudent(matric string, ref StudentRef) {
	c.students[strings.ToUpper(matric)] = ref
}

func (c *Catalog) AddCourse(course models.Course) {
	c.courses[courseKey(course.DepartmentID, course.Code)] = course
}

func (c *Catalog) Department(code string) (models.Department, bool) {
	d, ok := c.departments[strings.ToUpper(code)]
	return d, ok
}

func (c *Catalog) Student(matric string) (StudentRef, bool) {
	s, ok := c.students[strings.ToUpper(matric)]
	return s, ok
}

func (c *Catalog) Course(departmentID, code string) (models.Course, bool) {
	course, ok := c.courses[courseKey(departmentID, code)]
	return course, ok
}

func courseKey(departmentID, code string) string {
	return departmentID + "|" + strings.ToUpper(code)
}

// Rejection is one input row that failed validation, with the original
// cells and every reason it failed.
type Rejection struct {
	RowNumber int
	Cells     []string
	Reasons   []string
}

type StudentBatch struct {
	TotalRows int
	Students  []models.Student
	Rejected  []Rejection
	// Skipped counts rows rejected because the matric number is already
	// persisted.
	Skipped int
}

func (b StudentBatch) Valid() bool { return len(b.Rejected) == 0 }

// ScoreRecord is a resolved score row ready for grading and upsert.
type ScoreRecord struct {
	RowNumber    int
	StudentID    string
	CourseID     string
	Score        float64
	CreditUnit   int
	PassMark     int
	Level        models.Level
	Semester     models.Semester
	AcademicYear string
}

func (r ScoreRecord) Key() models.SemesterKey {
	return models.SemesterKey{
		StudentID:    r.StudentID,
		Level:        r.Level,
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
	}
}

type ScoreBatch struct {
	TotalRows int
	Scores    []ScoreRecord
	Rejected  []Rejection
}

func (b ScoreBatch) Valid() bool { return len(b.Rejected) == 0 }

// ReconcileStudents validates every row independently and cross-checks it
// against the catalog and earlier rows of the same batch. Rows are processed
// in order because duplicate detection depends on earlier rows.
func ReconcileStudents(rows []StudentRow, v *Validator, cat *Catalog, actor models.Actor) StudentBatch {
	batch := StudentBatch{TotalRows: len(rows)}
	seen := make(map[string]int)

	for _, row := range rows {
		valid, reasons := v.ValidateStudentRow(row)

		dept, deptFound := cat.Department(row.DepartmentCode)
		if row.DepartmentCode != "" && !deptFound {
			reasons = append(reasons, fmt.Sprintf("Department with code '%s' not found", row.DepartmentCode))
		}
		if deptFound && !actor.CanAccessDepartment(dept) {
			reasons = append(reasons, "You can only import students to your own department")
		}

		if row.MatricNumber != "" {
			if _, exists := cat.Student(row.MatricNumber); exists {
				reasons = append(reasons, fmt.Sprintf("Student with matric number '%s' already exists", row.MatricNumber))
				batch.Skipped++
			} else if first, dup := seen[row.MatricNumber]; dup {
				reasons = append(reasons, fmt.Sprintf("Duplicate matric number '%s' (first seen on row %d)", row.MatricNumber, first))
			} else {
				seen[row.MatricNumber] = row.RowNumber
			}
		}

		if len(reasons) > 0 {
			batch.Rejected = append(batch.Rejected, Rejection{RowNumber: row.RowNumber, Cells: row.Cells, Reasons: reasons})
			continue
		}

		batch.Students = append(batch.Students, models.Student{
			MatricNumber:  valid.MatricNumber,
			FirstName:     valid.FirstName,
			LastName:      valid.LastName,
			MiddleName:    valid.MiddleName,
			Email:         valid.Email,
			Phone:         valid.Phone,
			CurrentLevel:  valid.Level,
			AdmissionYear: valid.AdmissionYear,
			DepartmentID:  dept.ID,
			IsActive:      true,
		})
	}

	return batch
}

// ReconcileScores resolves each row's course from the student's own
// department and checks it is offered at the stated level and semester.
func ReconcileScores(rows []ScoreRow, v *Validator, cat *Catalog, actor models.Actor) ScoreBatch {
	batch := ScoreBatch{TotalRows: len(rows)}
	seen := make(map[string]int)

	for _, row := range rows {
		valid, reasons := v.ValidateScoreRow(row)

		student, studentFound := cat.Student(row.MatricNumber)
		if row.MatricNumber != "" && !studentFound {
			reasons = append(reasons, fmt.Sprintf("Student with matric number '%s' not found", row.MatricNumber))
		}

		var course models.Course
		courseFound := false
		if studentFound {
			scope := models.Department{ID: student.DepartmentID}
			if dept, ok := cat.Department(student.DepartmentCode); ok {
				scope = dept
			}
			if !actor.CanAccessDepartment(scope) {
				reasons = append(reasons, "You can only add scores for students in your department")
			}
			if row.DepartmentCode != "" && !strings.EqualFold(row.DepartmentCode, student.DepartmentCode) {
				reasons = append(reasons, fmt.Sprintf("Student %s does not belong to department %s", row.MatricNumber, row.DepartmentCode))
			}

			if row.CourseCode != "" {
				course, courseFound = cat.Course(student.DepartmentID, row.CourseCode)
				if !courseFound {
					reasons = append(reasons, fmt.Sprintf("Course '%s' not found in student's department (%s)", row.CourseCode, student.DepartmentCode))
				}
			}
		}

		if courseFound && valid.Level != "" && valid.Semester != "" &&
			(course.Level != valid.Level || course.Semester != valid.Semester) {
			reasons = append(reasons, fmt.Sprintf("Course %s is offered at %s %s semester, not %s %s semester",
				course.Code, course.Level, course.Semester, valid.Level, valid.Semester))
		}

		if studentFound && courseFound && row.AcademicYear != "" {
			key := student.ID + "|" + course.ID + "|" + row.AcademicYear
			if first, dup := seen[key]; dup {
				reasons = append(reasons, fmt.Sprintf("Duplicate score for %s in %s %s (first seen on row %d)",
					row.MatricNumber, course.Code, row.AcademicYear, first))
			} else {
				seen[key] = row.RowNumber
			}
		}

		if len(reasons) > 0 {
			batch.Rejected = append(batch.Rejected, Rejection{RowNumber: row.RowNumber, Cells: row.Cells, Reasons: reasons})
			continue
		}

		batch.Scores = append(batch.Scores, ScoreRecord{
			RowNumber:    row.RowNumber,
			StudentID:    student.ID,
			CourseID:     course.ID,
			Score:        valid.Score,
			CreditUnit:   course.CreditUnit,
			PassMark:     student.PassMark,
			Level:        valid.Level,
			Semester:     valid.Semester,
			AcademicYear: valid.AcademicYear,
		})
	}

	return batch
}

// DistinctKeys returns the semester keys touched by records, in first-seen
// order, each once.
func DistinctKeys(records []ScoreRecord) []models.SemesterKey {
	seen := make(map[models.SemesterKey]struct{})
	var keys []models.SemesterKey
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
