package models

import "time"

type Department struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description,omitempty" db:"description"`
	PassMark    int       `json:"passMark" db:"pass_mark"`
	FacultyID   string    `json:"facultyId" db:"faculty_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type DepartmentWithStats struct {
	Department
	FacultyName  string `json:"facultyName" db:"faculty_name"`
	FacultyCode  string `json:"facultyCode" db:"faculty_code"`
	StudentCount int    `json:"studentCount" db:"student_count"`
	CourseCount  int    `json:"courseCount" db:"course_count"`
}
