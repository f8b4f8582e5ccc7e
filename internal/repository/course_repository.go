package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetByCode(ctx context.Context, departmentID, code string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// ListByDepartments returns every course offered by the given departments.
	ListByDepartments(ctx context.Context, departmentIDs []string) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	HasResults(ctx context.Context, id string) (bool, error)
}

type courseRepository struct {
	*PostgresRepository
}

func NewCourseRepository(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (id, code, title, credit_unit, level, semester, department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		course.ID,
		course.Code,
		course.Title,
		course.CreditUnit,
		course.Level,
		course.Semester,
		course.DepartmentID,
		course.CreatedAt,
		course.UpdatedAt,
	)

	return mapError(err)
}

const courseSelect = `
	SELECT id, code, title, credit_unit, level, semester, department_id, created_at, updated_at
	FROM courses
`

func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := scanCourse(r.db.QueryRowContext(ctx, courseSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return course, err
}

func (r *courseRepository) GetByCode(ctx context.Context, departmentID, code string) (*models.Course, error) {
	query := courseSelect + ` WHERE department_id = $1 AND UPPER(code) = UPPER($2)`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, departmentID, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return course, err
}

func (r *courseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var conds []string
	var args []interface{}

	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conds = append(conds, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		conds = append(conds, fmt.Sprintf("department_id IN (SELECT id FROM departments WHERE faculty_id = $%d)", len(args)))
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		conds = append(conds, fmt.Sprintf("level = $%d", len(args)))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		conds = append(conds, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(code ILIKE $%d OR title ILIKE $%d)", len(args), len(args)))
	}

	query := courseSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + orderByLevel("level") + ", semester, code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCourses(rows)
}

func (r *courseRepository) ListByDepartments(ctx context.Context, departmentIDs []string) ([]models.Course, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	query := courseSelect + ` WHERE department_id::text = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(departmentIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCourses(rows)
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET code = $1, title = $2, credit_unit = $3, level = $4, semester = $5, updated_at = $6
		WHERE id = $7
	`

	_, err := r.db.ExecContext(ctx, query,
		course.Code,
		course.Title,
		course.CreditUnit,
		course.Level,
		course.Semester,
		course.UpdatedAt,
		course.ID,
	)

	return mapError(err)
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

func (r *courseRepository) HasResults(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM results WHERE course_id = $1)`, id).Scan(&exists)
	return exists, err
}

func collectCourses(rows *sql.Rows) ([]models.Course, error) {
	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func scanCourse(row rowScanner) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Title,
		&course.CreditUnit,
		&course.Level,
		&course.Semester,
		&course.DepartmentID,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}
