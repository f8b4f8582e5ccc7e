package service

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/rs/zerolog"
)

// DepartmentService serves department and faculty reads.
type DepartmentService interface {
	ListPublic(ctx context.Context) ([]models.DepartmentWithStats, error)
	List(ctx context.Context, actor models.Actor) ([]models.DepartmentWithStats, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.DepartmentWithStats, error)
	MyDepartment(ctx context.Context, actor models.Actor) (*models.DepartmentWithStats, error)
	ListFaculties(ctx context.Context) ([]models.FacultyWithStats, error)
	GetFaculty(ctx context.Context, id string) (*models.FacultyWithStats, error)
	MyFaculty(ctx context.Context, actor models.Actor) (*models.FacultyWithStats, error)
}

type departmentService struct {
	deptRepo    repository.DepartmentRepository
	facultyRepo repository.FacultyRepository
	logger      zerolog.Logger
}

func NewDepartmentService(deptRepo repository.DepartmentRepository, facultyRepo repository.FacultyRepository, logger zerolog.Logger) DepartmentService {
	return &departmentService{
		deptRepo:    deptRepo,
		facultyRepo: facultyRepo,
		logger:      logger,
	}
}

func (s *departmentService) ListPublic(ctx context.Context) ([]models.DepartmentWithStats, error) {
	return s.list(ctx, "")
}

// List narrows a dean to the departments of their faculty.
func (s *departmentService) List(ctx context.Context, actor models.Actor) ([]models.DepartmentWithStats, error) {
	if actor.Role == models.RoleDEAN {
		return s.list(ctx, actor.FacultyID)
	}
	return s.list(ctx, "")
}

func (s *departmentService) list(ctx context.Context, facultyID string) ([]models.DepartmentWithStats, error) {
	departments, err := s.deptRepo.List(ctx, facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	if departments == nil {
		departments = []models.DepartmentWithStats{}
	}
	return departments, nil
}

func (s *departmentService) Get(ctx context.Context, actor models.Actor, id string) (*models.DepartmentWithStats, error) {
	return loadDepartment(ctx, s.deptRepo, actor, id)
}

func (s *departmentService) MyDepartment(ctx context.Context, actor models.Actor) (*models.DepartmentWithStats, error) {
	if actor.DepartmentID == "" {
		return nil, fmt.Errorf("%w: no department assigned to this account", ErrNotFound)
	}
	return loadDepartment(ctx, s.deptRepo, actor, actor.DepartmentID)
}

func (s *departmentService) ListFaculties(ctx context.Context) ([]models.FacultyWithStats, error) {
	faculties, err := s.facultyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list faculties: %w", err)
	}
	if faculties == nil {
		faculties = []models.FacultyWithStats{}
	}
	return faculties, nil
}

func (s *departmentService) GetFaculty(ctx context.Context, id string) (*models.FacultyWithStats, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: faculty not found", ErrNotFound)
	}
	faculty, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}
	if faculty == nil {
		return nil, fmt.Errorf("%w: faculty not found", ErrNotFound)
	}
	return faculty, nil
}

func (s *departmentService) MyFaculty(ctx context.Context, actor models.Actor) (*models.FacultyWithStats, error) {
	facultyID := actor.FacultyID
	if facultyID == "" && actor.DepartmentID != "" {
		dept, err := s.MyDepartment(ctx, actor)
		if err != nil {
			return nil, err
		}
		facultyID = dept.FacultyID
	}
	if facultyID == "" {
		return nil, fmt.Errorf("%w: no faculty assigned to this account", ErrNotFound)
	}
	return s.GetFaculty(ctx, facultyID)
}
