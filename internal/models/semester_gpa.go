package models

import (
	"fmt"
	"time"
)

// SemesterKey identifies the scope of one semester GPA record.
type SemesterKey struct {
	StudentID    string   `json:"studentId"`
	Level        Level    `json:"level"`
	Semester     Semester `json:"semester"`
	AcademicYear string   `json:"academicYear"`
}

func (k SemesterKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.StudentID, k.Level, k.Semester, k.AcademicYear)
}

type SemesterGPA struct {
	ID              string    `json:"id" db:"id"`
	StudentID       string    `json:"studentId" db:"student_id"`
	Level           Level     `json:"level" db:"level"`
	Semester        Semester  `json:"semester" db:"semester"`
	AcademicYear    string    `json:"academicYear" db:"academic_year"`
	GPA             float64   `json:"gpa" db:"gpa"`
	TotalUnits      int       `json:"totalUnits" db:"total_units"`
	TotalPoints     int       `json:"totalPoints" db:"total_points"`
	CumulativeGPA   float64   `json:"cumulativeGpa" db:"cumulative_gpa"`
	CumulativeUnits int       `json:"cumulativeUnits" db:"cumulative_units"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

func (g SemesterGPA) Key() SemesterKey {
	return SemesterKey{
		StudentID:    g.StudentID,
		Level:        g.Level,
		Semester:     g.Semester,
		AcademicYear: g.AcademicYear,
	}
}

type SemesterGPAWithStudent struct {
	SemesterGPA
	MatricNumber string `json:"matricNumber" db:"matric_number"`
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
}

type GPAFilter struct {
	DepartmentID string
	Level        Level
	Semester     Semester
	AcademicYear string
}
