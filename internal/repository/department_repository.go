package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/rs/zerolog"
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id string) (*models.DepartmentWithStats, error)
	GetByCode(ctx context.Context, code string) (*models.Department, error)
	// List returns every department, or only those of facultyID when set.
	List(ctx context.Context, facultyID string) ([]models.DepartmentWithStats, error)
}

type departmentRepository struct {
	*PostgresRepository
}

func NewDepartmentRepository(db *sql.DB, logger zerolog.Logger) DepartmentRepository {
	return &departmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	query := `
		INSERT INTO departments (id, name, code, description, pass_mark, faculty_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		department.ID,
		department.Name,
		department.Code,
		department.Description,
		department.PassMark,
		department.FacultyID,
		department.CreatedAt,
		department.UpdatedAt,
	)

	return mapError(err)
}

const departmentWithStatsSelect = `
	SELECT
		d.id, d.name, d.code, d.description, d.pass_mark, d.faculty_id, d.created_at, d.updated_at,
		f.name AS faculty_name, f.code AS faculty_code,
		(SELECT COUNT(*) FROM students s WHERE s.department_id = d.id) AS student_count,
		(SELECT COUNT(*) FROM courses c WHERE c.department_id = d.id) AS course_count
	FROM departments d
	JOIN faculties f ON f.id = d.faculty_id
`

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*models.DepartmentWithStats, error) {
	query := departmentWithStatsSelect + ` WHERE d.id = $1`

	department, err := scanDepartmentWithStats(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return department, err
}

func (r *departmentRepository) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	query := `
		SELECT id, name, code, description, pass_mark, faculty_id, created_at, updated_at
		FROM departments
		WHERE UPPER(code) = UPPER($1)
	`

	department := &models.Department{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.Description,
		&department.PassMark,
		&department.FacultyID,
		&department.CreatedAt,
		&department.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return department, err
}

func (r *departmentRepository) List(ctx context.Context, facultyID string) ([]models.DepartmentWithStats, error) {
	query := departmentWithStatsSelect + `
		WHERE ($1 = '' OR d.faculty_id::text = $1)
		ORDER BY d.name
	`

	rows, err := r.db.QueryContext(ctx, query, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []models.DepartmentWithStats
	for rows.Next() {
		department, err := scanDepartmentWithStats(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *department)
	}

	return departments, rows.Err()
}

func scanDepartmentWithStats(row rowScanner) (*models.DepartmentWithStats, error) {
	department := &models.DepartmentWithStats{}
	err := row.Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.Description,
		&department.PassMark,
		&department.FacultyID,
		&department.CreatedAt,
		&department.UpdatedAt,
		&department.FacultyName,
		&department.FacultyCode,
		&department.StudentCount,
		&department.CourseCount,
	)
	if err != nil {
		return nil, err
	}
	return department, nil
}
