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

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	// CreateBatch inserts students in chunks inside one transaction. Either
	// every student is stored or none is.
	CreateBatch(ctx context.Context, students []models.Student, chunkSize int) (int, error)
	GetByID(ctx context.Context, id string) (*models.StudentWithDepartment, error)
	GetByMatric(ctx context.Context, matric string) (*models.Student, error)
	// GetByMatrics loads the students whose matric numbers are listed,
	// compared case-insensitively.
	GetByMatrics(ctx context.Context, matrics []string) ([]models.StudentWithDepartment, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentWithDepartment, int, error)
	// ListIDsWithResults returns students of a department that have results
	// for the given semester.
	ListIDsWithResults(ctx context.Context, departmentID string, level models.Level, semester models.Semester, academicYear string) ([]string, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const studentColumns = 13

func studentArgs(s *models.Student) []interface{} {
	return []interface{}{
		s.ID,
		s.MatricNumber,
		s.FirstName,
		s.LastName,
		s.MiddleName,
		s.Email,
		s.Phone,
		s.CurrentLevel,
		s.AdmissionYear,
		s.DepartmentID,
		s.IsActive,
		s.CreatedAt,
		s.UpdatedAt,
	}
}

const studentInsert = `
	INSERT INTO students (
		id, matric_number, first_name, last_name, middle_name, email, phone,
		current_level, admission_year, department_id, is_active, created_at, updated_at
	)
	VALUES `

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := studentInsert + placeholders(1, studentColumns)
	_, err := r.db.ExecContext(ctx, query, studentArgs(student)...)
	return mapError(err)
}

func (r *studentRepository) CreateBatch(ctx context.Context, students []models.Student, chunkSize int) (int, error) {
	created := 0

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range chunks(len(students), chunkSize) {
			part := students[c[0]:c[1]]
			args := make([]interface{}, 0, len(part)*studentColumns)
			for i := range part {
				args = append(args, studentArgs(&part[i])...)
			}

			query := studentInsert + placeholders(len(part), studentColumns)
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return mapError(err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			created += int(n)

			r.logger.Debug().
				Int("chunk_start", c[0]).
				Int("chunk_size", len(part)).
				Msg("Inserted student chunk")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

const studentWithDepartmentSelect = `
	SELECT
		s.id, s.matric_number, s.first_name, s.last_name, s.middle_name, s.email, s.phone,
		s.current_level, s.admission_year, s.department_id, s.is_active, s.created_at, s.updated_at,
		d.name AS department_name, d.code AS department_code, d.pass_mark, d.faculty_id
	FROM students s
	JOIN departments d ON d.id = s.department_id
`

func (r *studentRepository) GetByID(ctx context.Context, id string) (*models.StudentWithDepartment, error) {
	query := studentWithDepartmentSelect + ` WHERE s.id = $1`

	student, err := scanStudentWithDepartment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return student, err
}

func (r *studentRepository) GetByMatric(ctx context.Context, matric string) (*models.Student, error) {
	query := studentWithDepartmentSelect + ` WHERE UPPER(s.matric_number) = UPPER($1)`

	student, err := scanStudentWithDepartment(r.db.QueryRowContext(ctx, query, matric))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student.Student, nil
}

func (r *studentRepository) GetByMatrics(ctx context.Context, matrics []string) ([]models.StudentWithDepartment, error) {
	if len(matrics) == 0 {
		return nil, nil
	}

	upper := make([]string, len(matrics))
	for i, m := range matrics {
		upper[i] = strings.ToUpper(m)
	}

	query := studentWithDepartmentSelect + ` WHERE UPPER(s.matric_number) = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(upper))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudents(rows)
}

func (r *studentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentWithDepartment, int, error) {
	where, args := studentFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM students s JOIN departments d ON d.id = s.department_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := studentWithDepartmentSelect + where + ` ORDER BY s.matric_number`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students, err := collectStudents(rows)
	if err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func studentFilterClause(filter models.StudentFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conds = append(conds, fmt.Sprintf("s.department_id = $%d", len(args)))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		conds = append(conds, fmt.Sprintf("d.faculty_id = $%d", len(args)))
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		conds = append(conds, fmt.Sprintf("s.current_level = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(s.matric_number ILIKE $%d OR s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.email ILIKE $%d)",
			n, n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *studentRepository) ListIDsWithResults(ctx context.Context, departmentID string, level models.Level, semester models.Semester, academicYear string) ([]string, error) {
	query := `
		SELECT DISTINCT s.id
		FROM students s
		JOIN results r ON r.student_id = s.id
		WHERE s.department_id = $1 AND r.level = $2 AND r.semester = $3 AND r.academic_year = $4
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, departmentID, level, semester, academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET matric_number = $1, first_name = $2, last_name = $3, middle_name = $4,
			email = $5, phone = $6, current_level = $7, admission_year = $8,
			is_active = $9, updated_at = $10
		WHERE id = $11
	`

	_, err := r.db.ExecContext(ctx, query,
		student.MatricNumber,
		student.FirstName,
		student.LastName,
		student.MiddleName,
		student.Email,
		student.Phone,
		student.CurrentLevel,
		student.AdmissionYear,
		student.IsActive,
		student.UpdatedAt,
		student.ID,
	)

	return mapError(err)
}

func (r *studentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM students WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func collectStudents(rows *sql.Rows) ([]models.StudentWithDepartment, error) {
	var students []models.StudentWithDepartment
	for rows.Next() {
		student, err := scanStudentWithDepartment(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *student)
	}
	return students, rows.Err()
}

func scanStudentWithDepartment(row rowScanner) (*models.StudentWithDepartment, error) {
	student := &models.StudentWithDepartment{}
	err := row.Scan(
		&student.ID,
		&student.MatricNumber,
		&student.FirstName,
		&student.LastName,
		&student.MiddleName,
		&student.Email,
		&student.Phone,
		&student.CurrentLevel,
		&student.AdmissionYear,
		&student.DepartmentID,
		&student.IsActive,
		&student.CreatedAt,
		&student.UpdatedAt,
		&student.DepartmentName,
		&student.DepartmentCode,
		&student.PassMark,
		&student.FacultyID,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}
