package models

import "time"

type Course struct {
	ID           string    `json:"id" db:"id"`
	Code         string    `json:"code" db:"code"`
	Title        string    `json:"title" db:"title"`
	CreditUnit   int       `json:"creditUnit" db:"credit_unit"`
	Level        Level     `json:"level" db:"level"`
	Semester     Semester  `json:"semester" db:"semester"`
	DepartmentID string    `json:"departmentId" db:"department_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type CourseFilter struct {
	DepartmentID string
	FacultyID    string
	Level        Level
	Semester     Semester
	Search       string
}
