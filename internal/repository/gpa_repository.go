package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/rs/zerolog"
)

type GPARepository interface {
	// Upsert stores the record on its semester key, filling ID and
	// CreatedAt from the stored row.
	Upsert(ctx context.Context, gpa *models.SemesterGPA) error
	// DeleteByKey reports whether a row was removed.
	DeleteByKey(ctx context.Context, key models.SemesterKey) (bool, error)
	GetByKey(ctx context.Context, key models.SemesterKey) (*models.SemesterGPA, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.SemesterGPA, error)
	// List returns records of a department's students ordered by GPA,
	// highest first.
	List(ctx context.Context, filter models.GPAFilter) ([]models.SemesterGPAWithStudent, error)
}

type gpaRepository struct {
	*PostgresRepository
}

func NewGPARepository(db *sql.DB, logger zerolog.Logger) GPARepository {
	return &gpaRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *gpaRepository) Upsert(ctx context.Context, gpa *models.SemesterGPA) error {
	query := `
		INSERT INTO semester_gpas (
			id, student_id, level, semester, academic_year, gpa, total_units, total_points,
			cumulative_gpa, cumulative_units, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (student_id, level, semester, academic_year) DO UPDATE SET
			gpa = EXCLUDED.gpa,
			total_units = EXCLUDED.total_units,
			total_points = EXCLUDED.total_points,
			cumulative_gpa = EXCLUDED.cumulative_gpa,
			cumulative_units = EXCLUDED.cumulative_units,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	return r.db.QueryRowContext(ctx, query,
		gpa.ID,
		gpa.StudentID,
		gpa.Level,
		gpa.Semester,
		gpa.AcademicYear,
		gpa.GPA,
		gpa.TotalUnits,
		gpa.TotalPoints,
		gpa.CumulativeGPA,
		gpa.CumulativeUnits,
		gpa.CreatedAt,
		gpa.UpdatedAt,
	).Scan(&gpa.ID, &gpa.CreatedAt)
}

func (r *gpaRepository) DeleteByKey(ctx context.Context, key models.SemesterKey) (bool, error) {
	query := `
		DELETE FROM semester_gpas
		WHERE student_id = $1 AND level = $2 AND semester = $3 AND academic_year = $4
	`

	res, err := r.db.ExecContext(ctx, query, key.StudentID, key.Level, key.Semester, key.AcademicYear)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const gpaSelect = `
	SELECT
		g.id, g.student_id, g.level, g.semester, g.academic_year, g.gpa, g.total_units, g.total_points,
		g.cumulative_gpa, g.cumulative_units, g.created_at, g.updated_at
	FROM semester_gpas g
`

func (r *gpaRepository) GetByKey(ctx context.Context, key models.SemesterKey) (*models.SemesterGPA, error) {
	query := gpaSelect + `
		WHERE g.student_id = $1 AND g.level = $2 AND g.semester = $3 AND g.academic_year = $4
	`

	gpa := &models.SemesterGPA{}
	err := scanGPA(r.db.QueryRowContext(ctx, query, key.StudentID, key.Level, key.Semester, key.AcademicYear), gpa)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gpa, nil
}

func (r *gpaRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SemesterGPA, error) {
	query := gpaSelect + `
		WHERE g.student_id = $1
		ORDER BY g.academic_year, ` + orderByLevel("g.level") + `, g.semester
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gpas []models.SemesterGPA
	for rows.Next() {
		var gpa models.SemesterGPA
		if err := scanGPA(rows, &gpa); err != nil {
			return nil, err
		}
		gpas = append(gpas, gpa)
	}

	return gpas, rows.Err()
}

func (r *gpaRepository) List(ctx context.Context, filter models.GPAFilter) ([]models.SemesterGPAWithStudent, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.DepartmentID != "" {
		add("s.department_id = $%d", filter.DepartmentID)
	}
	if filter.Level != "" {
		add("g.level = $%d", filter.Level)
	}
	if filter.Semester != "" {
		add("g.semester = $%d", filter.Semester)
	}
	if filter.AcademicYear != "" {
		add("g.academic_year = $%d", filter.AcademicYear)
	}

	query := `
		SELECT
			g.id, g.student_id, g.level, g.semester, g.academic_year, g.gpa, g.total_units, g.total_points,
			g.cumulative_gpa, g.cumulative_units, g.created_at, g.updated_at,
			s.matric_number, s.first_name, s.last_name
		FROM semester_gpas g
		JOIN students s ON s.id = g.student_id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY g.gpa DESC, s.matric_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gpas []models.SemesterGPAWithStudent
	for rows.Next() {
		var g models.SemesterGPAWithStudent
		err := rows.Scan(
			&g.ID, &g.StudentID, &g.Level, &g.Semester, &g.AcademicYear, &g.GPA, &g.TotalUnits, &g.TotalPoints,
			&g.CumulativeGPA, &g.CumulativeUnits, &g.CreatedAt, &g.UpdatedAt,
			&g.MatricNumber, &g.FirstName, &g.LastName,
		)
		if err != nil {
			return nil, err
		}
		gpas = append(gpas, g)
	}

	return gpas, rows.Err()
}

func scanGPA(row rowScanner, gpa *models.SemesterGPA) error {
	return row.Scan(
		&gpa.ID,
		&gpa.StudentID,
		&gpa.Level,
		&gpa.Semester,
		&gpa.AcademicYear,
		&gpa.GPA,
		&gpa.TotalUnits,
		&gpa.TotalPoints,
		&gpa.CumulativeGPA,
		&gpa.CumulativeUnits,
		&gpa.CreatedAt,
		&gpa.UpdatedAt,
	)
}
