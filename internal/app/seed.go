package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/RubachokBoss/academic-records/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SeedData is the layout of a seed file. Departments and users refer to
// their parents by code.
type SeedData struct {
	Faculties []SeedFaculty `yaml:"faculties"`
	Users     []SeedUser    `yaml:"users"`
}

type SeedFaculty struct {
	Code        string           `yaml:"code"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Departments []SeedDepartment `yaml:"departments"`
}

type SeedDepartment struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PassMark    int    `yaml:"pass_mark"`
}

type SeedUser struct {
	Email      string          `yaml:"email"`
	Password   string          `yaml:"password"`
	FirstName  string          `yaml:"first_name"`
	LastName   string          `yaml:"last_name"`
	Role       models.UserRole `yaml:"role"`
	Department string          `yaml:"department"`
	Faculty    string          `yaml:"faculty"`
}

const defaultPassMark = 40

func ParseSeed(r io.Reader) (*SeedData, error) {
	var data SeedData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range data.Faculties {
		f := &data.Faculties[i]
		f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
		if f.Code == "" || f.Name == "" {
			return nil, fmt.Errorf("faculty %d: code and name are required", i+1)
		}
		for j := range f.Departments {
			d := &f.Departments[j]
			d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
			if d.Code == "" || d.Name == "" {
				return nil, fmt.Errorf("faculty %s department %d: code and name are required", f.Code, j+1)
			}
			if d.PassMark == 0 {
				d.PassMark = defaultPassMark
			}
			if d.PassMark < 0 || d.PassMark > 100 {
				return nil, fmt.Errorf("department %s: pass mark %d out of range", d.Code, d.PassMark)
			}
		}
	}
	return &data, nil
}

// Seeder loads reference data. Existing faculties, departments and users
// are left untouched so a seed file can be applied repeatedly.
type Seeder struct {
	faculties   repository.FacultyRepository
	departments repository.DepartmentRepository
	auth        service.AuthService
	logger      zerolog.Logger
}

func NewSeeder(repos Repositories, auth service.AuthService, logger zerolog.Logger) *Seeder {
	return &Seeder{
		faculties:   repos.Faculties,
		departments: repos.Departments,
		auth:        auth,
		logger:      logger,
	}
}

func (s *Seeder) Apply(ctx context.Context, data *SeedData) error {
	facultyIDs := make(map[string]string)
	departmentIDs := make(map[string]string)

	for _, sf := range data.Faculties {
		faculty, err := s.faculties.GetByCode(ctx, sf.Code)
		if err != nil {
			return fmt.Errorf("failed to get faculty %s: %w", sf.Code, err)
		}
		if faculty == nil {
			now := time.Now()
			faculty = &models.Faculty{
				ID:          uuid.New().String(),
				Name:        sf.Name,
				Code:        sf.Code,
				Description: sf.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.faculties.Create(ctx, faculty); err != nil {
				return fmt.Errorf("failed to create faculty %s: %w", sf.Code, err)
			}
			s.logger.Info().Str("code", sf.Code).Msg("Faculty created")
		}
		facultyIDs[sf.Code] = faculty.ID

		for _, sd := range sf.Departments {
			dept, err := s.departments.GetByCode(ctx, sd.Code)
			if err != nil {
				return fmt.Errorf("failed to get department %s: %w", sd.Code, err)
			}
			if dept == nil {
				now := time.Now()
				dept = &models.Department{
					ID:          uuid.New().String(),
					Name:        sd.Name,
					Code:        sd.Code,
					Description: sd.Description,
					PassMark:    sd.PassMark,
					FacultyID:   faculty.ID,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := s.departments.Create(ctx, dept); err != nil {
					return fmt.Errorf("failed to create department %s: %w", sd.Code, err)
				}
				s.logger.Info().Str("code", sd.Code).Int("pass_mark", sd.PassMark).Msg("Department created")
			}
			departmentIDs[sd.Code] = dept.ID
		}
	}

	for _, su := range data.Users {
		req := &models.RegisterRequest{
			Email:     su.Email,
			Password:  su.Password,
			FirstName: su.FirstName,
			LastName:  su.LastName,
			Role:      su.Role,
		}
		switch su.Role {
		case models.RoleHOD:
			id, ok := departmentIDs[strings.ToUpper(su.Department)]
			if !ok {
				return fmt.Errorf("user %s: unknown department %q", su.Email, su.Department)
			}
			req.DepartmentID = id
		case models.RoleDEAN:
			id, ok := facultyIDs[strings.ToUpper(su.Faculty)]
			if !ok {
				return fmt.Errorf("user %s: unknown faculty %q", su.Email, su.Faculty)
			}
			req.FacultyID = id
		}

		_, err := s.auth.Register(ctx, req)
		switch {
		case errors.Is(err, service.ErrConflict):
			s.logger.Info().Str("email", su.Email).Msg("User already exists, skipped")
		case err != nil:
			return fmt.Errorf("failed to register %s: %w", su.Email, err)
		default:
			s.logger.Info().Str("email", su.Email).Str("role", string(su.Role)).Msg("User created")
		}
	}
	return nil
}
