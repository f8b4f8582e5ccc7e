package models

import "time"

type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" db:"last_name"`
	Role         UserRole   `json:"role" db:"role"`
	DepartmentID *string    `json:"departmentId,omitempty" db:"department_id"`
	FacultyID    *string    `json:"facultyId,omitempty" db:"faculty_id"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type UserProfile struct {
	User
	Department *Department `json:"department,omitempty"`
	Faculty    *Faculty    `json:"faculty,omitempty"`
}
