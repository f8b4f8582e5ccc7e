package models

import "time"

type Student struct {
	ID            string    `json:"id" db:"id"`
	MatricNumber  string    `json:"matricNumber" db:"matric_number"`
	FirstName     string    `json:"firstName" db:"first_name"`
	LastName      string    `json:"lastName" db:"last_name"`
	MiddleName    string    `json:"middleName,omitempty" db:"middle_name"`
	Email         string    `json:"email,omitempty" db:"email"`
	Phone         string    `json:"phone,omitempty" db:"phone"`
	CurrentLevel  Level     `json:"currentLevel" db:"current_level"`
	AdmissionYear int       `json:"admissionYear" db:"admission_year"`
	DepartmentID  string    `json:"departmentId" db:"department_id"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

func (s Student) FullName() string {
	if s.MiddleName != "" {
		return s.FirstName + " " + s.MiddleName + " " + s.LastName
	}
	return s.FirstName + " " + s.LastName
}

type StudentWithDepartment struct {
	Student
	DepartmentName string `json:"departmentName" db:"department_name"`
	DepartmentCode string `json:"departmentCode" db:"department_code"`
	PassMark       int    `json:"passMark" db:"pass_mark"`
	FacultyID      string `json:"facultyId" db:"faculty_id"`
}

type StudentFilter struct {
	DepartmentID string
	FacultyID    string
	Level        Level
	Search       string
	Limit        int
	Offset       int
}

type StudentDetails struct {
	StudentWithDepartment
	Results      []ResultWithCourse `json:"results"`
	SemesterGPAs []SemesterGPA      `json:"semesterGpas"`
}
