package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RubachokBoss/academic-records/internal/grading"
	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/RubachokBoss/academic-records/internal/service/integration"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ResultsChangedHook is invoked after results under a semester key were
// inserted, updated or deleted, before the mutating operation returns.
type ResultsChangedHook interface {
	OnResultsChanged(ctx context.Context, key models.SemesterKey) (*models.GPAOutcome, error)
}

type GPAService interface {
	ResultsChangedHook
	CalculateSemester(ctx context.Context, actor models.Actor, req *models.CalculateGPARequest) (*models.GPAOutcome, error)
	RecalculateDepartment(ctx context.Context, actor models.Actor, req *models.CalculateDepartmentGPARequest) (*models.DepartmentGPAResponse, error)
	SemesterGPA(ctx context.Context, actor models.Actor, key models.SemesterKey) (*models.SemesterGPAView, error)
	History(ctx context.Context, actor models.Actor, studentID string) (*models.GPAHistory, error)
	DepartmentStats(ctx context.Context, actor models.Actor, departmentID string, filter models.GPAFilter) (*models.DepartmentGPAStats, error)
}

type gpaService struct {
	resultRepo  repository.ResultRepository
	gpaRepo     repository.GPARepository
	studentRepo repository.StudentRepository
	deptRepo    repository.DepartmentRepository
	cache       repository.Cache
	publisher   integration.EventPublisher
	concurrency int
	logger      zerolog.Logger
}

func NewGPAService(
	resultRepo repository.ResultRepository,
	gpaRepo repository.GPARepository,
	studentRepo repository.StudentRepository,
	deptRepo repository.DepartmentRepository,
	cache repository.Cache,
	publisher integration.EventPublisher,
	concurrency int,
	logger zerolog.Logger,
) GPAService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &gpaService{
		resultRepo:  resultRepo,
		gpaRepo:     gpaRepo,
		studentRepo: studentRepo,
		deptRepo:    deptRepo,
		cache:       cache,
		publisher:   publisher,
		concurrency: concurrency,
		logger:      logger,
	}
}

func historyCacheKey(studentID string) string {
	return "gpa-history:" + studentID
}

func (s *gpaService) OnResultsChanged(ctx context.Context, key models.SemesterKey) (*models.GPAOutcome, error) {
	rows, err := s.resultRepo.GradingRows(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for %s: %w", key, err)
	}

	var outcome *models.GPAOutcome
	if len(rows) == 0 {
		outcome, err = s.clearSemester(ctx, key)
	} else {
		outcome, err = s.storeSemester(ctx, key, rows)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, historyCacheKey(key.StudentID)); err != nil {
		s.logger.Warn().Err(err).Str("student_id", key.StudentID).Msg("Failed to invalidate GPA history cache")
	}

	event := &models.GPARecalculatedEvent{
		StudentID:    key.StudentID,
		Level:        key.Level,
		Semester:     key.Semester,
		AcademicYear: key.AcademicYear,
		CGPA:         outcome.CGPA,
		Removed:      outcome.Removed,
		Timestamp:    time.Now().Unix(),
	}
	if outcome.SemesterGPA != nil {
		event.GPA = outcome.SemesterGPA.GPA
		event.TotalUnits = outcome.SemesterGPA.TotalUnits
	}
	if err := s.publisher.PublishGPARecalculated(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("student_id", key.StudentID).Msg("Failed to publish GPA recalculated event")
	}

	return outcome, nil
}

func (s *gpaService) clearSemester(ctx context.Context, key models.SemesterKey) (*models.GPAOutcome, error) {
	removed, err := s.gpaRepo.DeleteByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to delete semester GPA: %w", err)
	}

	stored, err := s.gpaRepo.ListByStudent(ctx, key.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semester GPAs: %w", err)
	}
	cumulative := grading.ComputeCGPA(totalsOf(stored, nil))

	if removed {
		s.logger.Info().
			Str("student_id", key.StudentID).
			Str("semester_key", key.String()).
			Msg("Semester GPA removed, no results remain")
	}

	return &models.GPAOutcome{Key: key, CGPA: cumulative.CGPA, Removed: true}, nil
}

func (s *gpaService) storeSemester(ctx context.Context, key models.SemesterKey, rows []models.GradingRow) (*models.GPAOutcome, error) {
	inputs := make([]grading.ResultInput, len(rows))
	for i, r := range rows {
		inputs[i] = grading.ResultInput{Score: r.Score, CreditUnit: r.CreditUnit, PassMark: r.PassMark}
	}

	totals, err := grading.ComputeSemesterGPA(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute GPA for %s: %w", key, err)
	}

	stored, err := s.gpaRepo.ListByStudent(ctx, key.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semester GPAs: %w", err)
	}
	cumulative := grading.ComputeCGPA(append(totalsOf(stored, &key), totals))

	now := time.Now()
	gpa := &models.SemesterGPA{
		ID:              uuid.New().String(),
		StudentID:       key.StudentID,
		Level:           key.Level,
		Semester:        key.Semester,
		AcademicYear:    key.AcademicYear,
		GPA:             totals.GPA,
		TotalUnits:      totals.TotalUnits,
		TotalPoints:     totals.TotalPoints,
		CumulativeGPA:   cumulative.CGPA,
		CumulativeUnits: cumulative.CumulativeUnits,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.gpaRepo.Upsert(ctx, gpa); err != nil {
		return nil, fmt.Errorf("failed to save semester GPA: %w", err)
	}

	s.logger.Info().
		Str("student_id", key.StudentID).
		Str("semester_key", key.String()).
		Float64("gpa", gpa.GPA).
		Float64("cgpa", cumulative.CGPA).
		Msg("Semester GPA recalculated")

	return &models.GPAOutcome{Key: key, SemesterGPA: gpa, CGPA: cumulative.CGPA}, nil
}

// totalsOf converts stored records for CGPA summation, leaving out the
// record under skip when set.
func totalsOf(stored []models.SemesterGPA, skip *models.SemesterKey) []grading.SemesterTotals {
	totals := make([]grading.SemesterTotals, 0, len(stored)+1)
	for _, g := range stored {
		if skip != nil && g.Key() == *skip {
			continue
		}
		totals = append(totals, grading.SemesterTotals{GPA: g.GPA, TotalUnits: g.TotalUnits, TotalPoints: g.TotalPoints})
	}
	return totals
}

func (s *gpaService) CalculateSemester(ctx context.Context, actor models.Actor, req *models.CalculateGPARequest) (*models.GPAOutcome, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	if _, err := loadStudent(ctx, s.studentRepo, actor, req.StudentID); err != nil {
		return nil, err
	}

	return s.OnResultsChanged(ctx, models.SemesterKey{
		StudentID:    req.StudentID,
		Level:        req.Level,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	})
}

func (s *gpaService) RecalculateDepartment(ctx context.Context, actor models.Actor, req *models.CalculateDepartmentGPARequest) (*models.DepartmentGPAResponse, error) {
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

	studentIDs, err := s.studentRepo.ListIDsWithResults(ctx, departmentID, req.Level, req.Semester, req.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	outcomes := make([]*models.GPAOutcome, len(studentIDs))
	failures := make([]error, len(studentIDs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range studentIDs {
		i, id := i, id
		g.Go(func() error {
			outcomes[i], failures[i] = s.OnResultsChanged(ctx, models.SemesterKey{
				StudentID:    id,
				Level:        req.Level,
				Semester:     req.Semester,
				AcademicYear: req.AcademicYear,
			})
			return nil
		})
	}
	_ = g.Wait()

	resp := &models.DepartmentGPAResponse{
		Results:      []models.GPAOutcome{},
		ErrorDetails: []models.StudentGPAError{},
	}
	for i, id := range studentIDs {
		if failures[i] != nil {
			resp.ErrorDetails = append(resp.ErrorDetails, models.StudentGPAError{StudentID: id, Error: failures[i].Error()})
			continue
		}
		resp.Results = append(resp.Results, *outcomes[i])
	}
	resp.Calculated = len(resp.Results)
	resp.Errors = len(resp.ErrorDetails)

	s.logger.Info().
		Str("department_id", departmentID).
		Str("level", req.Level.String()).
		Str("semester", req.Semester.String()).
		Str("academic_year", req.AcademicYear).
		Int("calculated", resp.Calculated).
		Int("errors", resp.Errors).
		Msg("Department GPAs recalculated")

	return resp, nil
}

func (s *gpaService) SemesterGPA(ctx context.Context, actor models.Actor, key models.SemesterKey) (*models.SemesterGPAView, error) {
	if _, err := loadStudent(ctx, s.studentRepo, actor, key.StudentID); err != nil {
		return nil, err
	}

	stored, err := s.gpaRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get semester GPA: %w", err)
	}
	if stored != nil {
		return &models.SemesterGPAView{SemesterGPA: *stored}, nil
	}

	rows, err := s.resultRepo.GradingRows(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no results found for this semester", ErrNotFound)
	}

	inputs := make([]grading.ResultInput, len(rows))
	for i, r := range rows {
		inputs[i] = grading.ResultInput{Score: r.Score, CreditUnit: r.CreditUnit, PassMark: r.PassMark}
	}
	totals, err := grading.ComputeSemesterGPA(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute GPA: %w", err)
	}

	return &models.SemesterGPAView{
		SemesterGPA: models.SemesterGPA{
			StudentID:    key.StudentID,
			Level:        key.Level,
			Semester:     key.Semester,
			AcademicYear: key.AcademicYear,
			GPA:          totals.GPA,
			TotalUnits:   totals.TotalUnits,
			TotalPoints:  totals.TotalPoints,
		},
		Calculated: true,
	}, nil
}

func (s *gpaService) History(ctx context.Context, actor models.Actor, studentID string) (*models.GPAHistory, error) {
	student, err := loadStudent(ctx, s.studentRepo, actor, studentID)
	if err != nil {
		return nil, err
	}

	var history models.GPAHistory
	hit, err := s.cache.Get(ctx, historyCacheKey(studentID), &history)
	if err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("GPA history cache unavailable")
	}
	if hit {
		return &history, nil
	}

	stored, err := s.gpaRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semester GPAs: %w", err)
	}
	if stored == nil {
		stored = []models.SemesterGPA{}
	}
	cumulative := grading.ComputeCGPA(totalsOf(stored, nil))

	history = models.GPAHistory{
		Student: models.StudentSummary{
			ID:           student.ID,
			MatricNumber: student.MatricNumber,
			Name:         student.FirstName + " " + student.LastName,
			CurrentLevel: student.CurrentLevel,
		},
		SemesterGPAs:  stored,
		CGPA:          cumulative.CGPA,
		TotalUnits:    cumulative.CumulativeUnits,
		TotalPoints:   cumulative.CumulativePoints,
		ClassOfDegree: grading.ClassOfDegree(cumulative.CGPA),
	}

	if err := s.cache.Set(ctx, historyCacheKey(studentID), &history); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("Failed to cache GPA history")
	}

	return &history, nil
}

func (s *gpaService) DepartmentStats(ctx context.Context, actor models.Actor, departmentID string, filter models.GPAFilter) (*models.DepartmentGPAStats, error) {
	if _, err := loadDepartment(ctx, s.deptRepo, actor, departmentID); err != nil {
		return nil, err
	}

	filter.DepartmentID = departmentID
	gpas, err := s.gpaRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list semester GPAs: %w", err)
	}

	return summarizeGPAs(gpas), nil
}

// summarizeGPAs expects gpas ordered highest first.
func summarizeGPAs(gpas []models.SemesterGPAWithStudent) *models.DepartmentGPAStats {
	stats := &models.DepartmentGPAStats{Count: len(gpas)}
	if len(gpas) == 0 {
		return stats
	}

	ref := func(g models.SemesterGPAWithStudent) *models.GPAStudentRef {
		return &models.GPAStudentRef{
			Value: g.GPA,
			Student: models.StudentSummary{
				ID:           g.StudentID,
				MatricNumber: g.MatricNumber,
				Name:         g.FirstName + " " + g.LastName,
			},
		}
	}
	stats.HighestGPA = ref(gpas[0])
	stats.LowestGPA = ref(gpas[len(gpas)-1])

	var sum float64
	dist := &models.GPADistribution{}
	for _, g := range gpas {
		sum += g.GPA
		switch {
		case g.GPA >= 4.5:
			dist.FirstClass++
		case g.GPA >= 3.5:
			dist.SecondUpper++
		case g.GPA >= 2.4:
			dist.SecondLower++
		case g.GPA >= 1.5:
			dist.ThirdClass++
		case g.GPA >= 1.0:
			dist.Pass++
		default:
			dist.Fail++
		}
	}
	avg := grading.Round2(sum / float64(len(gpas)))
	stats.AverageGPA = &avg
	stats.Distribution = dist

	return stats
}
