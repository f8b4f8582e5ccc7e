package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/rs/zerolog"
)

type FacultyRepository interface {
	Create(ctx context.Context, faculty *models.Faculty) error
	GetByID(ctx context.Context, id string) (*models.FacultyWithStats, error)
	GetByCode(ctx context.Context, code string) (*models.Faculty, error)
	List(ctx context.Context) ([]models.FacultyWithStats, error)
}

type facultyRepository struct {
	*PostgresRepository
}

func NewFacultyRepository(db *sql.DB, logger zerolog.Logger) FacultyRepository {
	return &facultyRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *facultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	query := `
		INSERT INTO faculties (id, name, code, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		faculty.ID,
		faculty.Name,
		faculty.Code,
		faculty.Description,
		faculty.CreatedAt,
		faculty.UpdatedAt,
	)

	return mapError(err)
}

const facultyWithStatsSelect = `
	SELECT
		f.id, f.name, f.code, f.description, f.created_at, f.updated_at,
		COUNT(d.id) AS department_count
	FROM faculties f
	LEFT JOIN departments d ON d.faculty_id = f.id
`

func (r *facultyRepository) GetByID(ctx context.Context, id string) (*models.FacultyWithStats, error) {
	query := facultyWithStatsSelect + `
		WHERE f.id = $1
		GROUP BY f.id
	`

	faculty, err := scanFacultyWithStats(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return faculty, err
}

func (r *facultyRepository) GetByCode(ctx context.Context, code string) (*models.Faculty, error) {
	query := `
		SELECT id, name, code, description, created_at, updated_at
		FROM faculties
		WHERE UPPER(code) = UPPER($1)
	`

	faculty := &models.Faculty{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&faculty.ID,
		&faculty.Name,
		&faculty.Code,
		&faculty.Description,
		&faculty.CreatedAt,
		&faculty.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return faculty, err
}

func (r *facultyRepository) List(ctx context.Context) ([]models.FacultyWithStats, error) {
	query := facultyWithStatsSelect + `
		GROUP BY f.id
		ORDER BY f.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faculties []models.FacultyWithStats
	for rows.Next() {
		faculty, err := scanFacultyWithStats(rows)
		if err != nil {
			return nil, err
		}
		faculties = append(faculties, *faculty)
	}

	return faculties, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacultyWithStats(row rowScanner) (*models.FacultyWithStats, error) {
	faculty := &models.FacultyWithStats{}
	err := row.Scan(
		&faculty.ID,
		&faculty.Name,
		&faculty.Code,
		&faculty.Description,
		&faculty.CreatedAt,
		&faculty.UpdatedAt,
		&faculty.DepartmentCount,
	)
	if err != nil {
		return nil, err
	}
	return faculty, nil
}
