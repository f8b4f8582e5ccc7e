package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RubachokBoss/academic-records/internal/grading"
	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ResultService interface {
	AddScore(ctx context.Context, actor models.Actor, req *models.AddScoreRequest) (*models.AddScoreResponse, error)
	EnterScores(ctx context.Context, actor models.Actor, req *models.EnterScoresRequest) (*models.EnterScoresResponse, error)
	UpdateScore(ctx context.Context, actor models.Actor, id string, req *models.UpdateScoreRequest) (*models.ResultWithCourse, error)
	DeleteScore(ctx context.Context, actor models.Actor, id string) (*models.DeleteScoreResponse, error)
	StudentResults(ctx context.Context, actor models.Actor, studentID string, filter models.ResultFilter) ([]models.ResultWithCourse, error)
	StudentResultsWithGPA(ctx context.Context, actor models.Actor, studentID string) (*models.StudentDetails, error)
	DepartmentResults(ctx context.Context, actor models.Actor, departmentID string, filter models.ResultFilter) ([]models.ResultWithCourse, error)
	CarryOvers(ctx context.Context, actor models.Actor, studentID string) ([]models.ResultWithCourse, error)
}

type resultService struct {
	resultRepo  repository.ResultRepository
	studentRepo repository.StudentRepository
	courseRepo  repository.CourseRepository
	deptRepo    repository.DepartmentRepository
	gpaRepo     repository.GPARepository
	hook        ResultsChangedHook
	logger      zerolog.Logger
}

func NewResultService(
	resultRepo repository.ResultRepository,
	studentRepo repository.StudentRepository,
	courseRepo repository.CourseRepository,
	deptRepo repository.DepartmentRepository,
	gpaRepo repository.GPARepository,
	hook ResultsChangedHook,
	logger zerolog.Logger,
) ResultService {
	return &resultService{
		resultRepo:  resultRepo,
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		deptRepo:    deptRepo,
		gpaRepo:     gpaRepo,
		hook:        hook,
		logger:      logger,
	}
}

func (s *resultService) loadCourse(ctx context.Context, id string) (*models.Course, error) {
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
	return course, nil
}

func newResult(studentID string, course *models.Course, score float64, passMark int, level models.Level, semester models.Semester, academicYear string) (*models.Result, error) {
	outcome, err := grading.ComputeResult(score, course.CreditUnit, passMark)
	if err != nil {
		return nil, invalid(err.Error())
	}

	now := time.Now()
	return &models.Result{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		CourseID:      course.ID,
		Score:         outcome.Score,
		Grade:         outcome.Grade,
		GradePoint:    outcome.GradePoint,
		QualityPoints: outcome.QualityPoints,
		IsCarryOver:   outcome.IsCarryOver,
		Level:         level,
		Semester:      semester,
		AcademicYear:  academicYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func withCourse(r *models.Result, course *models.Course, student *models.StudentWithDepartment) models.ResultWithCourse {
	return models.ResultWithCourse{
		Result:       *r,
		CourseCode:   course.Code,
		CourseTitle:  course.Title,
		CreditUnit:   course.CreditUnit,
		MatricNumber: student.MatricNumber,
		StudentName:  student.FirstName + " " + student.LastName,
	}
}

func (s *resultService) AddScore(ctx context.Context, actor models.Actor, req *models.AddScoreRequest) (*models.AddScoreResponse, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}

	student, err := loadStudent(ctx, s.studentRepo, actor, req.StudentID)
	if err != nil {
		return nil, err
	}

	course, err := s.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.DepartmentID != student.DepartmentID {
		return nil, fmt.Errorf("%w: course does not belong to your department", ErrForbidden)
	}
	if msg := courseKeyMismatch(course, req.Level, req.Semester); msg != "" {
		return nil, invalid(msg)
	}

	result, err := newResult(student.ID, course, *req.Score, student.PassMark, req.Level, req.Semester, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	inserted, err := s.resultRepo.Upsert(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	outcome, err := s.hook.OnResultsChanged(ctx, result.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate GPA: %w", err)
	}

	s.logger.Info().
		Str("result_id", result.ID).
		Str("student_id", student.ID).
		Str("course_code", course.Code).
		Float64("score", result.Score).
		Bool("inserted", inserted).
		Msg("Score recorded")

	resp := &models.AddScoreResponse{
		Result: withCourse(result, course, student),
		CGPA:   outcome.CGPA,
	}
	if outcome.SemesterGPA != nil {
		resp.GPA = outcome.SemesterGPA.GPA
	}
	return resp, nil
}

func (s *resultService) EnterScores(ctx context.Context, actor models.Actor, req *models.EnterScoresRequest) (*models.EnterScoresResponse, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	dept, err := loadDepartment(ctx, s.deptRepo, actor, actor.DepartmentID)
	if err != nil {
		return nil, err
	}

	resp := &models.EnterScoresResponse{
		Results: []models.ResultWithCourse{},
		Errors:  []models.ScoreEntryError{},
	}
	fail := func(entry models.ScoreEntry, msg string) {
		resp.Errors = append(resp.Errors, models.ScoreEntryError{StudentID: entry.StudentID, CourseID: entry.CourseID, Error: msg})
	}

	var affected []string
	seen := make(map[string]bool)

	for _, entry := range req.Scores {
		student, err := loadStudent(ctx, s.studentRepo, actor, entry.StudentID)
		if err != nil {
			fail(entry, entryError(err))
			continue
		}
		course, err := s.loadCourse(ctx, entry.CourseID)
		if err != nil {
			fail(entry, entryError(err))
			continue
		}
		if course.DepartmentID != dept.ID {
			fail(entry, "Course does not belong to this department")
			continue
		}
		if msg := courseKeyMismatch(course, req.Level, req.Semester); msg != "" {
			fail(entry, msg)
			continue
		}

		result, err := newResult(student.ID, course, *entry.Score, dept.PassMark, req.Level, req.Semester, req.AcademicYear)
		if err != nil {
			fail(entry, entryError(err))
			continue
		}
		if _, err := s.resultRepo.Upsert(ctx, result); err != nil {
			s.logger.Error().Err(err).Str("student_id", student.ID).Str("course_id", course.ID).Msg("Failed to save score")
			fail(entry, "failed to save result")
			continue
		}

		resp.Results = append(resp.Results, withCourse(result, course, student))
		if !seen[student.ID] {
			seen[student.ID] = true
			affected = append(affected, student.ID)
		}
	}

	for _, id := range affected {
		key := models.SemesterKey{StudentID: id, Level: req.Level, Semester: req.Semester, AcademicYear: req.AcademicYear}
		if _, err := s.hook.OnResultsChanged(ctx, key); err != nil {
			s.logger.Error().Err(err).Str("student_id", id).Msg("Failed to recalculate GPA after score entry")
		}
	}

	resp.SuccessCount = len(resp.Results)
	resp.ErrorCount = len(resp.Errors)

	s.logger.Info().
		Str("department_id", dept.ID).
		Int("success_count", resp.SuccessCount).
		Int("error_count", resp.ErrorCount).
		Msg("Scores entered")

	return resp, nil
}

// entryError renders a per-entry failure without leaking infrastructure
// details.
func entryError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "internal error"
	}
}

func (s *resultService) loadResult(ctx context.Context, actor models.Actor, id string) (*models.ResultWithCourse, *models.StudentWithDepartment, error) {
	if !validID(id) {
		return nil, nil, fmt.Errorf("%w: result not found", ErrNotFound)
	}
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get result: %w", err)
	}
	if result == nil {
		return nil, nil, fmt.Errorf("%w: result not found", ErrNotFound)
	}

	student, err := loadStudent(ctx, s.studentRepo, actor, result.StudentID)
	if err != nil {
		return nil, nil, err
	}
	return result, student, nil
}

func (s *resultService) UpdateScore(ctx context.Context, actor models.Actor, id string, req *models.UpdateScoreRequest) (*models.ResultWithCourse, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	result, student, err := s.loadResult(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	outcome, err := grading.ComputeResult(*req.Score, result.CreditUnit, student.PassMark)
	if err != nil {
		return nil, invalid(err.Error())
	}
	result.Score = outcome.Score
	result.Grade = outcome.Grade
	result.GradePoint = outcome.GradePoint
	result.QualityPoints = outcome.QualityPoints
	result.IsCarryOver = outcome.IsCarryOver
	result.UpdatedAt = time.Now()

	if err := s.resultRepo.Update(ctx, &result.Result); err != nil {
		return nil, fmt.Errorf("failed to update result: %w", err)
	}
	if _, err := s.hook.OnResultsChanged(ctx, result.Key()); err != nil {
		return nil, fmt.Errorf("failed to recalculate GPA: %w", err)
	}

	s.logger.Info().
		Str("result_id", result.ID).
		Float64("score", result.Score).
		Msg("Score updated")

	return result, nil
}

func (s *resultService) DeleteScore(ctx context.Context, actor models.Actor, id string) (*models.DeleteScoreResponse, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	result, _, err := s.loadResult(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.resultRepo.Delete(ctx, result.ID); err != nil {
		return nil, fmt.Errorf("failed to delete result: %w", err)
	}

	outcome, err := s.hook.OnResultsChanged(ctx, result.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate GPA: %w", err)
	}

	s.logger.Info().
		Str("result_id", result.ID).
		Str("student_id", result.StudentID).
		Bool("gpa_recalculated", !outcome.Removed).
		Msg("Score deleted")

	return &models.DeleteScoreResponse{
		DeletedResult:   *result,
		GPARecalculated: !outcome.Removed,
	}, nil
}

func (s *resultService) StudentResults(ctx context.Context, actor models.Actor, studentID string, filter models.ResultFilter) ([]models.ResultWithCourse, error) {
	if _, err := loadStudent(ctx, s.studentRepo, actor, studentID); err != nil {
		return nil, err
	}

	filter.StudentID = studentID
	filter.DepartmentID = ""
	return s.list(ctx, filter)
}

func (s *resultService) StudentResultsWithGPA(ctx context.Context, actor models.Actor, studentID string) (*models.StudentDetails, error) {
	student, err := loadStudent(ctx, s.studentRepo, actor, studentID)
	if err != nil {
		return nil, err
	}
	return studentDetails(ctx, s.resultRepo, s.gpaRepo, student)
}

func studentDetails(ctx context.Context, resultRepo repository.ResultRepository, gpaRepo repository.GPARepository, student *models.StudentWithDepartment) (*models.StudentDetails, error) {
	results, err := resultRepo.List(ctx, models.ResultFilter{StudentID: student.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	gpas, err := gpaRepo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list semester GPAs: %w", err)
	}
	if results == nil {
		results = []models.ResultWithCourse{}
	}
	if gpas == nil {
		gpas = []models.SemesterGPA{}
	}

	return &models.StudentDetails{
		StudentWithDepartment: *student,
		Results:               results,
		SemesterGPAs:          gpas,
	}, nil
}

func (s *resultService) DepartmentResults(ctx context.Context, actor models.Actor, departmentID string, filter models.ResultFilter) ([]models.ResultWithCourse, error) {
	if actor.Role == models.RoleHOD {
		departmentID = actor.DepartmentID
	}
	if _, err := loadDepartment(ctx, s.deptRepo, actor, departmentID); err != nil {
		return nil, err
	}

	filter.StudentID = ""
	filter.DepartmentID = departmentID
	return s.list(ctx, filter)
}

func (s *resultService) CarryOvers(ctx context.Context, actor models.Actor, studentID string) ([]models.ResultWithCourse, error) {
	if _, err := loadStudent(ctx, s.studentRepo, actor, studentID); err != nil {
		return nil, err
	}
	return s.list(ctx, models.ResultFilter{StudentID: studentID, CarryOver: true})
}

func (s *resultService) list(ctx context.Context, filter models.ResultFilter) ([]models.ResultWithCourse, error) {
	results, err := s.resultRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if results == nil {
		results = []models.ResultWithCourse{}
	}
	return results, nil
}

// courseKeyMismatch reports why a score cannot be filed under level and
// semester, or "" when the course is offered there.
func courseKeyMismatch(course *models.Course, level models.Level, semester models.Semester) string {
	if course.Level != level {
		return fmt.Sprintf("Course %s is for %s, not %s", course.Code, course.Level, level)
	}
	if course.Semester != semester {
		return fmt.Sprintf("Course %s is for %s semester, not %s", course.Code, course.Semester, semester)
	}
	return ""
}
