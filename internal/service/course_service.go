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

type CourseService interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateCourseRequest) (*models.Course, error)
	List(ctx context.Context, actor models.Actor, filter models.CourseFilter) ([]models.Course, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Course, error)
	Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	ListByDepartmentLevelSemester(ctx context.Context, actor models.Actor, departmentID string, level models.Level, semester models.Semester) ([]models.Course, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
	deptRepo   repository.DepartmentRepository
	logger     zerolog.Logger
}

func NewCourseService(courseRepo repository.CourseRepository, deptRepo repository.DepartmentRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		courseRepo: courseRepo,
		deptRepo:   deptRepo,
		logger:     logger,
	}
}

var errCourseCodeTaken = fmt.Errorf("%w: course code already exists in this department", ErrConflict)

func (s *courseService) Create(ctx context.Context, actor models.Actor, req *models.CreateCourseRequest) (*models.Course, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}

	departmentID := req.DepartmentID
	if departmentID == "" {
		departmentID = actor.DepartmentID
	}
	if _, err := loadDepartment(ctx, s.deptRepo, actor, departmentID); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	existing, err := s.courseRepo.GetByCode(ctx, departmentID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check course code: %w", err)
	}
	if existing != nil {
		return nil, errCourseCodeTaken
	}

	now := time.Now()
	course := &models.Course{
		ID:           uuid.New().String(),
		Code:         code,
		Title:        strings.TrimSpace(req.Title),
		CreditUnit:   req.CreditUnit,
		Level:        req.Level,
		Semester:     req.Semester,
		DepartmentID: departmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errCourseCodeTaken
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info().
		Str("course_id", course.ID).
		Str("course_code", course.Code).
		Str("department_id", departmentID).
		Msg("Course created")

	return course, nil
}

func (s *courseService) List(ctx context.Context, actor models.Actor, filter models.CourseFilter) ([]models.Course, error) {
	departmentID, err := scopeDepartment(ctx, s.deptRepo, actor, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	filter.DepartmentID = departmentID
	filter.FacultyID = ""
	if departmentID == "" {
		filter.FacultyID = actor.FacultyID
	}

	courses, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

func (s *courseService) load(ctx context.Context, actor models.Actor, id string) (*models.Course, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: course not found", ErrNotFound)
	}
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course not found", ErrNotFound)
	}
	if _, err := loadDepartment(ctx, s.deptRepo, actor, course.DepartmentID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) Get(ctx context.Context, actor models.Actor, id string) (*models.Course, error) {
	return s.load(ctx, actor, id)
}

func (s *courseService) Update(ctx context.Context, actor models.Actor, id string, req *models.UpdateCourseRequest) (*models.Course, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	course, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != course.Code {
			existing, err := s.courseRepo.GetByCode(ctx, course.DepartmentID, code)
			if err != nil {
				return nil, fmt.Errorf("failed to check course code: %w", err)
			}
			if existing != nil && existing.ID != course.ID {
				return nil, errCourseCodeTaken
			}
		}
		course.Code = code
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.CreditUnit != nil {
		course.CreditUnit = *req.CreditUnit
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Semester != nil {
		course.Semester = *req.Semester
	}
	course.UpdatedAt = time.Now()

	if err := s.courseRepo.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errCourseCodeTaken
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info().
		Str("course_id", course.ID).
		Str("course_code", course.Code).
		Msg("Course updated")

	return course, nil
}

func (s *courseService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireHOD(actor); err != nil {
		return err
	}
	course, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}

	hasResults, err := s.courseRepo.HasResults(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("failed to check course results: %w", err)
	}
	if hasResults {
		return fmt.Errorf("%w: cannot delete course with existing results, delete results first", ErrConflict)
	}

	if err := s.courseRepo.Delete(ctx, course.ID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info().
		Str("course_id", course.ID).
		Str("course_code", course.Code).
		Msg("Course deleted")

	return nil
}

func (s *courseService) ListByDepartmentLevelSemester(ctx context.Context, actor models.Actor, departmentID string, level models.Level, semester models.Semester) ([]models.Course, error) {
	if !level.Valid() {
		return nil, invalid("Invalid level")
	}
	if !semester.Valid() {
		return nil, invalid("Invalid semester")
	}
	if _, err := loadDepartment(ctx, s.deptRepo, actor, departmentID); err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.List(ctx, models.CourseFilter{DepartmentID: departmentID, Level: level, Semester: semester})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}
