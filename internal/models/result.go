package models

import "time"

type Result struct {
	ID            string    `json:"id" db:"id"`
	StudentID     string    `json:"studentId" db:"student_id"`
	CourseID      string    `json:"courseId" db:"course_id"`
	Score         float64   `json:"score" db:"score"`
	Grade         Grade     `json:"grade" db:"grade"`
	GradePoint    int       `json:"gradePoint" db:"grade_point"`
	QualityPoints int       `json:"qualityPoints" db:"quality_points"`
	IsCarryOver   bool      `json:"isCarryOver" db:"is_carry_over"`
	Level         Level     `json:"level" db:"level"`
	Semester      Semester  `json:"semester" db:"semester"`
	AcademicYear  string    `json:"academicYear" db:"academic_year"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

func (r Result) Key() SemesterKey {
	return SemesterKey{
		StudentID:    r.StudentID,
		Level:        r.Level,
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
	}
}

// ResultWithCourse is a result joined with the course and student columns
// that views need.
type ResultWithCourse struct {
	Result
	CourseCode   string `json:"courseCode" db:"course_code"`
	CourseTitle  string `json:"courseTitle" db:"course_title"`
	CreditUnit   int    `json:"creditUnit" db:"credit_unit"`
	MatricNumber string `json:"matricNumber,omitempty" db:"matric_number"`
	StudentName  string `json:"studentName,omitempty" db:"student_name"`
}

// GradingRow carries what the aggregator needs for one persisted result.
type GradingRow struct {
	ResultID   string
	Score      float64
	CreditUnit int
	PassMark   int
}

type ResultFilter struct {
	StudentID    string
	DepartmentID string
	Level        Level
	Semester     Semester
	AcademicYear string
	CarryOver    bool
}
