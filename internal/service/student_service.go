package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type StudentService interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateStudentRequest) (*models.StudentWithDepartment, error)
	List(ctx context.Context, actor models.Actor, filter models.StudentFilter, page, limit int) (*models.StudentsResponse, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.StudentDetails, error)
	Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateStudentRequest) (*models.StudentWithDepartment, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	ListByDepartmentLevel(ctx context.Context, actor models.Actor, departmentID string, level models.Level) ([]models.StudentWithDepartment, error)
}

type studentService struct {
	studentRepo repository.StudentRepository
	deptRepo    repository.DepartmentRepository
	resultRepo  repository.ResultRepository
	gpaRepo     repository.GPARepository
	cache       repository.Cache
	now         func() time.Time
	logger      zerolog.Logger
}

func NewStudentService(
	studentRepo repository.StudentRepository,
	deptRepo repository.DepartmentRepository,
	resultRepo repository.ResultRepository,
	gpaRepo repository.GPARepository,
	cache repository.Cache,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		studentRepo: studentRepo,
		deptRepo:    deptRepo,
		resultRepo:  resultRepo,
		gpaRepo:     gpaRepo,
		cache:       cache,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *studentService) checkAdmissionYear(year int) error {
	if latest := s.now().Year() + 1; year > latest {
		return invalid(fmt.Sprintf("Admission year must be between 1990 and %d", latest))
	}
	return nil
}

func (s *studentService) Create(ctx context.Context, actor models.Actor, req *models.CreateStudentRequest) (*models.StudentWithDepartment, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	if _, err := loadDepartment(ctx, s.deptRepo, actor, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.checkAdmissionYear(req.AdmissionYear); err != nil {
		return nil, err
	}

	matric := strings.ToUpper(strings.TrimSpace(req.MatricNumber))
	existing, err := s.studentRepo.GetByMatric(ctx, matric)
	if err != nil {
		return nil, fmt.Errorf("failed to check matric number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: matriculation number already exists", ErrConflict)
	}

	now := time.Now()
	student := &models.Student{
		ID:            uuid.New().String(),
		MatricNumber:  matric,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		MiddleName:    strings.TrimSpace(req.MiddleName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		CurrentLevel:  req.CurrentLevel,
		AdmissionYear: req.AdmissionYear,
		DepartmentID:  req.DepartmentID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: matriculation number already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("matric_number", student.MatricNumber).
		Str("department_id", student.DepartmentID).
		Msg("Student created")

	return s.reload(ctx, student.ID)
}

func (s *studentService) reload(ctx context.Context, id string) (*models.StudentWithDepartment, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: student not found", ErrNotFound)
	}
	return student, nil
}

func (s *studentService) List(ctx context.Context, actor models.Actor, filter models.StudentFilter, page, limit int) (*models.StudentsResponse, error) {
	departmentID, err := scopeDepartment(ctx, s.deptRepo, actor, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	filter.DepartmentID = departmentID
	filter.FacultyID = ""
	if departmentID == "" {
		filter.FacultyID = actor.FacultyID
	}

	page, limit = normalizePage(page, limit)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	students, total, err := s.studentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	if students == nil {
		students = []models.StudentWithDepartment{}
	}

	return &models.StudentsResponse{
		Students: students,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *studentService) Get(ctx context.Context, actor models.Actor, id string) (*models.StudentDetails, error) {
	student, err := loadStudent(ctx, s.studentRepo, actor, id)
	if err != nil {
		return nil, err
	}
	return studentDetails(ctx, s.resultRepo, s.gpaRepo, student)
}

func (s *studentService) Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateStudentRequest) (*models.StudentWithDepartment, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	current, err := loadStudent(ctx, s.studentRepo, actor, id)
	if err != nil {
		return nil, err
	}

	student := current.Student
	if req.MatricNumber != nil {
		matric := strings.ToUpper(strings.TrimSpace(*req.MatricNumber))
		if !strings.EqualFold(matric, student.MatricNumber) {
			existing, err := s.studentRepo.GetByMatric(ctx, matric)
			if err != nil {
				return nil, fmt.Errorf("failed to check matric number: %w", err)
			}
			if existing != nil {
				return nil, fmt.Errorf("%w: matriculation number already exists", ErrConflict)
			}
		}
		student.MatricNumber = matric
	}
	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.MiddleName != nil {
		student.MiddleName = strings.TrimSpace(*req.MiddleName)
	}
	if req.Email != nil {
		student.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		student.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.CurrentLevel != nil {
		student.CurrentLevel = *req.CurrentLevel
	}
	if req.AdmissionYear != nil {
		if err := s.checkAdmissionYear(*req.AdmissionYear); err != nil {
			return nil, err
		}
		student.AdmissionYear = *req.AdmissionYear
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	student.UpdatedAt = time.Now()

	if err := s.studentRepo.Update(ctx, &student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: matriculation number already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	if err := s.cache.Delete(ctx, historyCacheKey(student.ID)); err != nil {
		s.logger.Warn().Err(err).Str("student_id", student.ID).Msg("Failed to invalidate GPA history cache")
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("matric_number", student.MatricNumber).
		Msg("Student updated")

	return s.reload(ctx, student.ID)
}

func (s *studentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireHOD(actor); err != nil {
		return err
	}
	student, err := loadStudent(ctx, s.studentRepo, actor, id)
	if err != nil {
		return err
	}

	if err := s.studentRepo.Delete(ctx, student.ID); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if err := s.cache.Delete(ctx, historyCacheKey(student.ID)); err != nil {
		s.logger.Warn().Err(err).Str("student_id", student.ID).Msg("Failed to invalidate GPA history cache")
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("matric_number", student.MatricNumber).
		Msg("Student deleted")

	return nil
}

func (s *studentService) ListByDepartmentLevel(ctx context.Context, actor models.Actor, departmentID string, level models.Level) ([]models.StudentWithDepartment, error) {
	if !level.Valid() {
		return nil, invalid("Invalid level")
	}
	if _, err := loadDepartment(ctx, s.deptRepo, actor, departmentID); err != nil {
		return nil, err
	}

	students, _, err := s.studentRepo.List(ctx, models.StudentFilter{DepartmentID: departmentID, Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	if students == nil {
		students = []models.StudentWithDepartment{}
	}
	return students, nil
}
