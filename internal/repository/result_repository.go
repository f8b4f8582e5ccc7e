package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/rs/zerolog"
)

type ResultRepository interface {
	// Upsert stores a result keyed by (student, course, academic year) and
	// reports whether a new row was inserted.
	Upsert(ctx context.Context, result *models.Result) (bool, error)
	// UpsertBatch upserts results in chunks inside one transaction and
	// returns how many rows were inserted and how many updated.
	UpsertBatch(ctx context.Context, results []models.Result, chunkSize int) (inserted, updated int, err error)
	GetByID(ctx context.Context, id string) (*models.ResultWithCourse, error)
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultWithCourse, error)
	// GradingRows loads what the aggregator needs for one semester key.
	GradingRows(ctx context.Context, key models.SemesterKey) ([]models.GradingRow, error)
	CountCarryOvers(ctx context.Context, departmentID, academicYear string) (int, error)
}

type resultRepository struct {
	*PostgresRepository
}

func NewResultRepository(db *sql.DB, logger zerolog.Logger) ResultRepository {
	return &resultRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const resultColumns = 13

const resultUpsert = `
	INSERT INTO results (
		id, student_id, course_id, score, grade, grade_point, quality_points,
		is_carry_over, level, semester, academic_year, created_at, updated_at
	)
	VALUES %s
	ON CONFLICT (student_id, course_id, academic_year) DO UPDATE SET
		score = EXCLUDED.score,
		grade = EXCLUDED.grade,
		grade_point = EXCLUDED.grade_point,
		quality_points = EXCLUDED.quality_points,
		is_carry_over = EXCLUDED.is_carry_over,
		updated_at = EXCLUDED.updated_at
	RETURNING id, created_at, level, semester, (xmax = 0) AS inserted
`

func resultArgs(r *models.Result) []interface{} {
	return []interface{}{
		r.ID,
		r.StudentID,
		r.CourseID,
		r.Score,
		r.Grade,
		r.GradePoint,
		r.QualityPoints,
		r.IsCarryOver,
		r.Level,
		r.Semester,
		r.AcademicYear,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

func (r *resultRepository) Upsert(ctx context.Context, result *models.Result) (bool, error) {
	query := fmt.Sprintf(resultUpsert, placeholders(1, resultColumns))

	var inserted bool
	err := r.db.QueryRowContext(ctx, query, resultArgs(result)...).Scan(&result.ID, &result.CreatedAt, &result.Level, &result.Semester, &inserted)
	if err != nil {
		return false, mapError(err)
	}

	return inserted, nil
}

func (r *resultRepository) UpsertBatch(ctx context.Context, results []models.Result, chunkSize int) (int, int, error) {
	inserted, updated := 0, 0

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range chunks(len(results), chunkSize) {
			part := results[c[0]:c[1]]
			args := make([]interface{}, 0, len(part)*resultColumns)
			for i := range part {
				args = append(args, resultArgs(&part[i])...)
			}

			query := fmt.Sprintf(resultUpsert, placeholders(len(part), resultColumns))
			rows, err := tx.QueryContext(ctx, query, args...)
			if err != nil {
				return mapError(err)
			}

			for rows.Next() {
				var (
					id        string
					createdAt time.Time
					level     models.Level
					semester  models.Semester
					isNew     bool
				)
				if err := rows.Scan(&id, &createdAt, &level, &semester, &isNew); err != nil {
					rows.Close()
					return err
				}
				if isNew {
					inserted++
				} else {
					updated++
				}
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return mapError(err)
			}
			rows.Close()
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return inserted, updated, nil
}

const resultWithCourseSelect = `
	SELECT
		r.id, r.student_id, r.course_id, r.score, r.grade, r.grade_point, r.quality_points,
		r.is_carry_over, r.level, r.semester, r.academic_year, r.created_at, r.updated_at,
		c.code AS course_code, c.title AS course_title, c.credit_unit,
		s.matric_number, s.first_name || ' ' || s.last_name AS student_name
	FROM results r
	JOIN courses c ON c.id = r.course_id
	JOIN students s ON s.id = r.student_id
`

func (r *resultRepository) GetByID(ctx context.Context, id string) (*models.ResultWithCourse, error) {
	result, err := scanResultWithCourse(r.db.QueryRowContext(ctx, resultWithCourseSelect+` WHERE r.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

func (r *resultRepository) Update(ctx context.Context, result *models.Result) error {
	query := `
		UPDATE results
		SET score = $1, grade = $2, grade_point = $3, quality_points = $4, is_carry_over = $5, updated_at = $6
		WHERE id = $7
	`

	_, err := r.db.ExecContext(ctx, query,
		result.Score,
		result.Grade,
		result.GradePoint,
		result.QualityPoints,
		result.IsCarryOver,
		result.UpdatedAt,
		result.ID,
	)

	return err
}

func (r *resultRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE id = $1`, id)
	return err
}

func (r *resultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultWithCourse, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.StudentID != "" {
		add("r.student_id = $%d", filter.StudentID)
	}
	if filter.DepartmentID != "" {
		add("s.department_id = $%d", filter.DepartmentID)
	}
	if filter.Level != "" {
		add("r.level = $%d", filter.Level)
	}
	if filter.Semester != "" {
		add("r.semester = $%d", filter.Semester)
	}
	if filter.AcademicYear != "" {
		add("r.academic_year = $%d", filter.AcademicYear)
	}
	if filter.CarryOver {
		conds = append(conds, "r.is_carry_over")
	}

	query := resultWithCourseSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.academic_year, " + orderByLevel("r.level") + ", r.semester, s.matric_number, c.code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ResultWithCourse
	for rows.Next() {
		result, err := scanResultWithCourse(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, rows.Err()
}

func (r *resultRepository) GradingRows(ctx context.Context, key models.SemesterKey) ([]models.GradingRow, error) {
	query := `
		SELECT r.id, r.score, c.credit_unit, d.pass_mark
		FROM results r
		JOIN courses c ON c.id = r.course_id
		JOIN students s ON s.id = r.student_id
		JOIN departments d ON d.id = s.department_id
		WHERE r.student_id = $1 AND r.level = $2 AND r.semester = $3 AND r.academic_year = $4
		ORDER BY c.code
	`

	rows, err := r.db.QueryContext(ctx, query, key.StudentID, key.Level, key.Semester, key.AcademicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GradingRow
	for rows.Next() {
		var g models.GradingRow
		if err := rows.Scan(&g.ResultID, &g.Score, &g.CreditUnit, &g.PassMark); err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func (r *resultRepository) CountCarryOvers(ctx context.Context, departmentID, academicYear string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM results r
		JOIN students s ON s.id = r.student_id
		WHERE r.is_carry_over AND s.department_id = $1 AND ($2 = '' OR r.academic_year = $2)
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, departmentID, academicYear).Scan(&count)
	return count, err
}

func scanResultWithCourse(row rowScanner) (*models.ResultWithCourse, error) {
	result := &models.ResultWithCourse{}
	err := row.Scan(
		&result.ID,
		&result.StudentID,
		&result.CourseID,
		&result.Score,
		&result.Grade,
		&result.GradePoint,
		&result.QualityPoints,
		&result.IsCarryOver,
		&result.Level,
		&result.Semester,
		&result.AcademicYear,
		&result.CreatedAt,
		&result.UpdatedAt,
		&result.CourseCode,
		&result.CourseTitle,
		&result.CreditUnit,
		&result.MatricNumber,
		&result.StudentName,
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
