package service

import (
	"context"
	"fmt"
	"math"

	"github.com/RubachokBoss/academic-records/internal/grading"
	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/rs/zerolog"
)

type ReportService interface {
	DepartmentReport(ctx context.Context, actor models.Actor, departmentID string, key ReportScope) (*models.DepartmentReport, error)
	// ExportDepartmentReport renders the department report as an xlsx
	// workbook and returns it with a suggested file name.
	ExportDepartmentReport(ctx context.Context, actor models.Actor, departmentID string, key ReportScope) ([]byte, string, error)
	FacultyStats(ctx context.Context, actor models.Actor, academicYear string) (*models.FacultyStats, error)
	Transcript(ctx context.Context, actor models.Actor, studentID string) (*models.Transcript, error)
}

// ReportScope selects the semester a department report covers.
type ReportScope struct {
	Level        models.Level
	Semester     models.Semester
	AcademicYear string
}

func (k ReportScope) validate() error {
	var details []string
	if !k.Level.Valid() {
		details = append(details, "level is required and must be a known level")
	}
	if !k.Semester.Valid() {
		details = append(details, "semester is required and must be FIRST or SECOND")
	}
	if k.AcademicYear == "" {
		details = append(details, "academicYear is required")
	}
	if len(details) > 0 {
		return invalid("Invalid report parameters", details...)
	}
	return nil
}

type reportService struct {
	deptRepo    repository.DepartmentRepository
	facultyRepo repository.FacultyRepository
	studentRepo repository.StudentRepository
	resultRepo  repository.ResultRepository
	gpaRepo     repository.GPARepository
	logger      zerolog.Logger
}

func NewReportService(
	deptRepo repository.DepartmentRepository,
	facultyRepo repository.FacultyRepository,
	studentRepo repository.StudentRepository,
	resultRepo repository.ResultRepository,
	gpaRepo repository.GPARepository,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		deptRepo:    deptRepo,
		facultyRepo: facultyRepo,
		studentRepo: studentRepo,
		resultRepo:  resultRepo,
		gpaRepo:     gpaRepo,
		logger:      logger,
	}
}

func courseLine(r models.ResultWithCourse) models.CourseLine {
	return models.CourseLine{
		CourseCode:    r.CourseCode,
		CourseTitle:   r.CourseTitle,
		CreditUnit:    r.CreditUnit,
		Score:         r.Score,
		Grade:         r.Grade,
		GradePoint:    r.GradePoint,
		QualityPoints: r.QualityPoints,
		IsCarryOver:   r.IsCarryOver,
	}
}

func (s *reportService) DepartmentReport(ctx context.Context, actor models.Actor, departmentID string, scope ReportScope) (*models.DepartmentReport, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	dept, err := loadDepartment(ctx, s.deptRepo, actor, departmentID)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.List(ctx, models.ResultFilter{
		DepartmentID: departmentID,
		Level:        scope.Level,
		Semester:     scope.Semester,
		AcademicYear: scope.AcademicYear,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	byStudent := make(map[string][]models.CourseLine)
	for _, r := range results {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], courseLine(r))
	}

	gpas, err := s.gpaRepo.List(ctx, models.GPAFilter{
		DepartmentID: departmentID,
		Level:        scope.Level,
		Semester:     scope.Semester,
		AcademicYear: scope.AcademicYear,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list semester GPAs: %w", err)
	}

	report := &models.DepartmentReport{
		Department:   *dept,
		Level:        scope.Level,
		Semester:     scope.Semester,
		AcademicYear: scope.AcademicYear,
		Students:     []models.StudentSemesterResult{},
	}

	var sum float64
	passed := 0
	stats := models.DepartmentStats{
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		TotalStudents:  len(gpas),
	}

	for i, g := range gpas {
		history, err := s.gpaRepo.ListByStudent(ctx, g.StudentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load semester GPAs: %w", err)
		}
		cumulative := grading.ComputeCGPA(totalsOf(history, nil))

		lines := byStudent[g.StudentID]
		if lines == nil {
			lines = []models.CourseLine{}
		}
		for _, l := range lines {
			if l.IsCarryOver {
				stats.CarryOverCount++
			}
		}

		report.Students = append(report.Students, models.StudentSemesterResult{
			StudentID:    g.StudentID,
			MatricNumber: g.MatricNumber,
			StudentName:  g.FirstName + " " + g.LastName,
			Level:        scope.Level,
			Semester:     scope.Semester,
			AcademicYear: scope.AcademicYear,
			Results:      lines,
			GPA:          g.GPA,
			CGPA:         cumulative.CGPA,
		})

		sum += g.GPA
		if g.GPA >= 1.0 {
			passed++
		}
		if i == 0 || g.GPA > stats.HighestGPA {
			stats.HighestGPA = g.GPA
		}
		if i == 0 || g.GPA < stats.LowestGPA {
			stats.LowestGPA = g.GPA
		}
	}
	if n := len(gpas); n > 0 {
		stats.AverageGPA = grading.Round2(sum / float64(n))
		stats.PassRate = int(math.Floor(float64(passed)*100/float64(n) + 0.5))
	}
	report.Stats = stats

	return report, nil
}

func (s *reportService) ExportDepartmentReport(ctx context.Context, actor models.Actor, departmentID string, scope ReportScope) ([]byte, string, error) {
	report, err := s.DepartmentReport(ctx, actor, departmentID, scope)
	if err != nil {
		return nil, "", err
	}

	data, err := renderDepartmentReport(report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render report: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s_%s.xlsx",
		report.Department.Code, scope.Level, scope.Semester, sanitizeYear(scope.AcademicYear))

	s.logger.Info().
		Str("department_id", departmentID).
		Int("students", len(report.Students)).
		Msg("Department report exported")

	return data, filename, nil
}

func (s *reportService) FacultyStats(ctx context.Context, actor models.Actor, academicYear string) (*models.FacultyStats, error) {
	if actor.Role != models.RoleDEAN || actor.FacultyID == "" {
		return nil, fmt.Errorf("%w: only a dean can view faculty statistics", ErrForbidden)
	}

	faculty, err := s.facultyRepo.GetByID(ctx, actor.FacultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}
	if faculty == nil {
		return nil, fmt.Errorf("%w: faculty not found", ErrNotFound)
	}

	departments, err := s.deptRepo.List(ctx, faculty.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	stats := &models.FacultyStats{
		Faculty:         faculty.Faculty,
		DepartmentCount: len(departments),
		Departments:     []models.FacultyDepartmentStats{},
	}

	for _, d := range departments {
		gpas, err := s.gpaRepo.List(ctx, models.GPAFilter{DepartmentID: d.ID, AcademicYear: academicYear})
		if err != nil {
			return nil, fmt.Errorf("failed to list semester GPAs: %w", err)
		}
		carryOvers, err := s.resultRepo.CountCarryOvers(ctx, d.ID, academicYear)
		if err != nil {
			return nil, fmt.Errorf("failed to count carry-overs: %w", err)
		}

		entry := models.FacultyDepartmentStats{
			ID:             d.ID,
			Name:           d.Name,
			Code:           d.Code,
			StudentCount:   d.StudentCount,
			CourseCount:    d.CourseCount,
			CarryOverCount: carryOvers,
		}
		if summary := summarizeGPAs(gpas); summary.Count > 0 {
			entry.AverageGPA = summary.AverageGPA
			entry.HighestGPA = &summary.HighestGPA.Value
			entry.LowestGPA = &summary.LowestGPA.Value
		}

		stats.TotalStudents += d.StudentCount
		stats.Departments = append(stats.Departments, entry)
	}

	return stats, nil
}

func (s *reportService) Transcript(ctx context.Context, actor models.Actor, studentID string) (*models.Transcript, error) {
	student, err := loadStudent(ctx, s.studentRepo, actor, studentID)
	if err != nil {
		return nil, err
	}

	transcript := &models.Transcript{
		Student:    *student,
		Semesters:  []models.TranscriptSemester{},
		CarryOvers: []models.CourseLine{},
	}

	if faculty, err := s.facultyRepo.GetByID(ctx, student.FacultyID); err != nil {
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	} else if faculty != nil {
		transcript.FacultyName = faculty.Name
	}

	results, err := s.resultRepo.List(ctx, models.ResultFilter{StudentID: student.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	gpas, err := s.gpaRepo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list semester GPAs: %w", err)
	}
	stored := make(map[models.SemesterKey]models.SemesterGPA, len(gpas))
	for _, g := range gpas {
		stored[g.Key()] = g
	}

	// results arrive ordered by year, level and semester, so groups form
	// in transcript order
	index := make(map[models.SemesterKey]int)
	for _, r := range results {
		key := r.Key()
		i, ok := index[key]
		if !ok {
			g := stored[key]
			transcript.Semesters = append(transcript.Semesters, models.TranscriptSemester{
				Level:        r.Level,
				Semester:     r.Semester,
				AcademicYear: r.AcademicYear,
				Courses:      []models.CourseLine{},
				GPA:          g.GPA,
				TotalUnits:   g.TotalUnits,
				TotalPoints:  g.TotalPoints,
			})
			i = len(transcript.Semesters) - 1
			index[key] = i
		}

		line := courseLine(r)
		transcript.Semesters[i].Courses = append(transcript.Semesters[i].Courses, line)
		if line.IsCarryOver {
			transcript.CarryOvers = append(transcript.CarryOvers, line)
		}
	}

	cumulative := grading.ComputeCGPA(totalsOf(gpas, nil))
	transcript.CGPA = cumulative.CGPA
	transcript.TotalUnits = cumulative.CumulativeUnits
	transcript.TotalPoints = cumulative.CumulativePoints
	transcript.ClassOfDegree = grading.ClassOfDegree(cumulative.CGPA)

	return transcript, nil
}
