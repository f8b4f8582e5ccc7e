package service

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
)

func requireHOD(actor models.Actor) error {
	if actor.Role != models.RoleHOD || actor.DepartmentID == "" {
		return fmt.Errorf("%w: only a head of department can perform this action", ErrForbidden)
	}
	return nil
}

// loadDepartment fetches a department and checks the actor's scope.
func loadDepartment(ctx context.Context, repo repository.DepartmentRepository, actor models.Actor, id string) (*models.DepartmentWithStats, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: department not found", ErrNotFound)
	}

	dept, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	if dept == nil {
		return nil, fmt.Errorf("%w: department not found", ErrNotFound)
	}
	if !actor.CanAccessDepartment(dept.Department) {
		return nil, fmt.Errorf("%w: you do not have access to this department", ErrForbidden)
	}

	return dept, nil
}

func loadStudent(ctx context.Context, repo repository.StudentRepository, actor models.Actor, id string) (*models.StudentWithDepartment, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: student not found", ErrNotFound)
	}

	student, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: student not found", ErrNotFound)
	}
	if !actor.CanAccessDepartment(studentDepartment(student)) {
		return nil, fmt.Errorf("%w: student is outside your department", ErrForbidden)
	}

	return student, nil
}

func studentDepartment(s *models.StudentWithDepartment) models.Department {
	return models.Department{
		ID:        s.DepartmentID,
		Name:      s.DepartmentName,
		Code:      s.DepartmentCode,
		PassMark:  s.PassMark,
		FacultyID: s.FacultyID,
	}
}

// scopeDepartment picks the department a listing is restricted to: an HOD
// always gets their own, anyone else gets the requested one after a scope
// check. An empty result means "no department filter".
func scopeDepartment(ctx context.Context, repo repository.DepartmentRepository, actor models.Actor, requested string) (string, error) {
	if actor.Role == models.RoleHOD {
		return actor.DepartmentID, nil
	}
	if requested == "" {
		return "", nil
	}
	if _, err := loadDepartment(ctx, repo, actor, requested); err != nil {
		return "", err
	}
	return requested, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
