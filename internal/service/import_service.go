package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RubachokBoss/academic-records/internal/grading"
	"github.com/RubachokBoss/academic-records/internal/importer"
	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/RubachokBoss/academic-records/internal/service/integration"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	importKindStudents = "students"
	importKindScores   = "scores"
)

// StudentImportResult is the outcome of one student upload. Report is set
// when the batch was rejected and nothing was persisted.
type StudentImportResult struct {
	JobID   string
	Summary models.StudentImportResponse
	Report  *importer.Report
}

func (r *StudentImportResult) Success() bool { return r.Report == nil }

type ScoreImportResult struct {
	JobID   string
	Summary models.ScoreImportResponse
	Report  *importer.Report
}

func (r *ScoreImportResult) Success() bool { return r.Report == nil }

type ImportService interface {
	ImportStudents(ctx context.Context, actor models.Actor, filename string, data []byte) (*StudentImportResult, error)
	ImportScores(ctx context.Context, actor models.Actor, filename string, data []byte) (*ScoreImportResult, error)
	StudentTemplate() ([]byte, error)
	ScoreTemplate() ([]byte, error)
}

type importService struct {
	studentRepo repository.StudentRepository
	courseRepo  repository.CourseRepository
	deptRepo    repository.DepartmentRepository
	resultRepo  repository.ResultRepository
	hook        ResultsChangedHook
	archive     repository.ImportArchive
	publisher   integration.EventPublisher
	validator   *importer.Validator
	chunkSize   int
	logger      zerolog.Logger
}

func NewImportService(
	studentRepo repository.StudentRepository,
	courseRepo repository.CourseRepository,
	deptRepo repository.DepartmentRepository,
	resultRepo repository.ResultRepository,
	hook ResultsChangedHook,
	archive repository.ImportArchive,
	publisher integration.EventPublisher,
	chunkSize int,
	logger zerolog.Logger,
) ImportService {
	return &importService{
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		deptRepo:    deptRepo,
		resultRepo:  resultRepo,
		hook:        hook,
		archive:     archive,
		publisher:   publisher,
		validator:   importer.NewValidator(time.Now),
		chunkSize:   chunkSize,
		logger:      logger,
	}
}

func (s *importService) StudentTemplate() ([]byte, error) { return importer.StudentTemplate() }

func (s *importService) ScoreTemplate() ([]byte, error) { return importer.ScoreTemplate() }

func parseUpload(filename string, data []byte) (*importer.Sheet, error) {
	if !importer.AllowedExtension(filename) {
		return nil, invalid(importer.ErrUnsupportedFormat.Error())
	}
	sheet, err := importer.Parse(filename, data)
	if err != nil {
		return nil, invalid(err.Error())
	}
	return sheet, nil
}

func (s *importService) ImportStudents(ctx context.Context, actor models.Actor, filename string, data []byte) (*StudentImportResult, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	sheet, err := parseUpload(filename, data)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	s.store(ctx, importKindStudents, jobID, filename, data, contentTypeOf(sheet.Format))

	rows := importer.StudentRows(sheet)

	cat, err := s.studentCatalog(ctx, rows)
	if err != nil {
		return nil, err
	}
	batch := importer.ReconcileStudents(rows, s.validator, cat, actor)

	result := &StudentImportResult{
		JobID: jobID,
		Summary: models.StudentImportResponse{
			TotalRows:    batch.TotalRows,
			SkippedCount: batch.Skipped,
		},
	}

	if !batch.Valid() {
		report, err := importer.RejectionReport(sheet.Format, sheet.Headers, batch.Rejected)
		if err != nil {
			return nil, fmt.Errorf("failed to build rejection report: %w", err)
		}
		s.store(ctx, importKindStudents, jobID, "rejections"+report.Extension, report.Data, report.ContentType)

		result.Report = report
		result.Summary.ErrorCount = len(batch.Rejected)

		s.logger.Info().
			Str("job_id", jobID).
			Int("total_rows", batch.TotalRows).
			Int("error_count", result.Summary.ErrorCount).
			Int("skipped_count", batch.Skipped).
			Msg("Student import rejected")
	} else {
		now := time.Now()
		for i := range batch.Students {
			batch.Students[i].ID = uuid.New().String()
			batch.Students[i].CreatedAt = now
			batch.Students[i].UpdatedAt = now
		}

		created, err := s.studentRepo.CreateBatch(ctx, batch.Students, s.chunkSize)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, fmt.Errorf("%w: a matric number in this file was registered concurrently, retry the upload", ErrConflict)
			}
			return nil, fmt.Errorf("failed to save students: %w", err)
		}
		result.Summary.SuccessCount = created
		result.Summary.SkippedCount = len(batch.Students) - created

		s.logger.Info().
			Str("job_id", jobID).
			Int("total_rows", batch.TotalRows).
			Int("success_count", created).
			Msg("Students imported")
	}

	s.announce(ctx, &models.ImportCompletedEvent{
		JobID:        jobID,
		Kind:         importKindStudents,
		ActorID:      actor.UserID,
		Success:      result.Success(),
		TotalRows:    result.Summary.TotalRows,
		SuccessCount: result.Summary.SuccessCount,
		SkippedCount: result.Summary.SkippedCount,
		ErrorCount:   result.Summary.ErrorCount,
	})

	return result, nil
}

func (s *importService) studentCatalog(ctx context.Context, rows []importer.StudentRow) (*importer.Catalog, error) {
	cat := importer.NewCatalog()

	departments, err := s.deptRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	for _, d := range departments {
		cat.AddDepartment(d.Department)
	}

	matrics := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.MatricNumber != "" {
			matrics = append(matrics, r.MatricNumber)
		}
	}
	existing, err := s.studentRepo.GetByMatrics(ctx, matrics)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	for _, st := range existing {
		cat.AddStudent(st.MatricNumber, studentRef(st))
	}

	return cat, nil
}

func studentRef(st models.StudentWithDepartment) importer.StudentRef {
	return importer.StudentRef{
		ID:             st.ID,
		DepartmentID:   st.DepartmentID,
		DepartmentCode: st.DepartmentCode,
		PassMark:       st.PassMark,
	}
}

func (s *importService) ImportScores(ctx context.Context, actor models.Actor, filename string, data []byte) (*ScoreImportResult, error) {
	if err := requireHOD(actor); err != nil {
		return nil, err
	}
	sheet, err := parseUpload(filename, data)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	s.store(ctx, importKindScores, jobID, filename, data, contentTypeOf(sheet.Format))

	rows := importer.ScoreRows(sheet)

	cat, err := s.scoreCatalog(ctx, rows)
	if err != nil {
		return nil, err
	}
	batch := importer.ReconcileScores(rows, s.validator, cat, actor)

	result := &ScoreImportResult{
		JobID:   jobID,
		Summary: models.ScoreImportResponse{TotalRows: batch.TotalRows},
	}

	if !batch.Valid() {
		report, err := importer.RejectionReport(sheet.Format, sheet.Headers, batch.Rejected)
		if err != nil {
			return nil, fmt.Errorf("failed to build rejection report: %w", err)
		}
		s.store(ctx, importKindScores, jobID, "rejections"+report.Extension, report.Data, report.ContentType)

		result.Report = report
		result.Summary.ErrorCount = len(batch.Rejected)

		s.logger.Info().
			Str("job_id", jobID).
			Int("total_rows", batch.TotalRows).
			Int("error_count", result.Summary.ErrorCount).
			Msg("Score import rejected")
	} else {
		if err := s.persistScores(ctx, batch, result); err != nil {
			return nil, err
		}
	}

	s.announce(ctx, &models.ImportCompletedEvent{
		JobID:        jobID,
		Kind:         importKindScores,
		ActorID:      actor.UserID,
		Success:      result.Success(),
		TotalRows:    result.Summary.TotalRows,
		SuccessCount: result.Summary.SuccessCount,
		UpdatedCount: result.Summary.UpdatedCount,
		ErrorCount:   result.Summary.ErrorCount,
	})

	return result, nil
}

func (s *importService) persistScores(ctx context.Context, batch importer.ScoreBatch, result *ScoreImportResult) error {
	now := time.Now()
	records := make([]models.Result, 0, len(batch.Scores))
	for _, rec := range batch.Scores {
		outcome, err := grading.ComputeResult(rec.Score, rec.CreditUnit, rec.PassMark)
		if err != nil {
			return invalid(fmt.Sprintf("Row %d: %v", rec.RowNumber, err))
		}
		records = append(records, models.Result{
			ID:            uuid.New().String(),
			StudentID:     rec.StudentID,
			CourseID:      rec.CourseID,
			Score:         outcome.Score,
			Grade:         outcome.Grade,
			GradePoint:    outcome.GradePoint,
			QualityPoints: outcome.QualityPoints,
			IsCarryOver:   outcome.IsCarryOver,
			Level:         rec.Level,
			Semester:      rec.Semester,
			AcademicYear:  rec.AcademicYear,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	inserted, updated, err := s.resultRepo.UpsertBatch(ctx, records, s.chunkSize)
	if err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}
	result.Summary.SuccessCount = inserted
	result.Summary.UpdatedCount = updated

	students := make(map[string]struct{})
	for _, key := range importer.DistinctKeys(batch.Scores) {
		students[key.StudentID] = struct{}{}
		if _, err := s.hook.OnResultsChanged(ctx, key); err != nil {
			s.logger.Error().Err(err).
				Str("job_id", result.JobID).
				Str("semester_key", key.String()).
				Msg("Failed to recalculate GPA after import")
		}
	}
	result.Summary.AffectedStudents = len(students)

	s.logger.Info().
		Str("job_id", result.JobID).
		Int("total_rows", batch.TotalRows).
		Int("inserted", inserted).
		Int("updated", updated).
		Int("affected_students", len(students)).
		Msg("Scores imported")

	return nil
}

func (s *importService) scoreCatalog(ctx context.Context, rows []importer.ScoreRow) (*importer.Catalog, error) {
	cat := importer.NewCatalog()

	departments, err := s.deptRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	for _, d := range departments {
		cat.AddDepartment(d.Department)
	}

	matrics := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.MatricNumber != "" {
			matrics = append(matrics, r.MatricNumber)
		}
	}
	students, err := s.studentRepo.GetByMatrics(ctx, matrics)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}

	seen := make(map[string]bool)
	var departmentIDs []string
	for _, st := range students {
		cat.AddStudent(st.MatricNumber, studentRef(st))
		if !seen[st.DepartmentID] {
			seen[st.DepartmentID] = true
			departmentIDs = append(departmentIDs, st.DepartmentID)
		}
	}

	courses, err := s.courseRepo.ListByDepartments(ctx, departmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	for _, c := range courses {
		cat.AddCourse(c)
	}

	return cat, nil
}

// store archives an upload or report. Archive failures never fail the import.
func (s *importService) store(ctx context.Context, kind, jobID, name string, data []byte, contentType string) {
	key := fmt.Sprintf("imports/%s/%s/%s", kind, jobID, filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if err := s.archive.Put(ctx, key, data, contentType); err != nil {
		s.logger.Warn().Err(err).Str("job_id", jobID).Str("key", key).Msg("Failed to archive import file")
	}
}

func (s *importService) announce(ctx context.Context, event *models.ImportCompletedEvent) {
	event.Timestamp = time.Now().Unix()
	if err := s.publisher.PublishImportCompleted(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("job_id", event.JobID).Msg("Failed to publish import completed event")
	}
}

func contentTypeOf(format importer.Format) string {
	switch format {
	case importer.FormatCSV:
		return importer.ContentTypeCSV
	case importer.FormatXLS:
		return "application/vnd.ms-excel"
	default:
		return importer.ContentTypeXLSX
	}
}
