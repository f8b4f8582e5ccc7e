package app

import (
	"context"
	"strings"
	"testing"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/RubachokBoss/academic-records/internal/service"
	"github.com/rs/zerolog"
)

const sampleSeed = `
faculties:
  - code: sci
    name: Faculty of Science
    departments:
      - code: csc
        name: Computer Science
        pass_mark: 45
      - code: MTH
        name: Mathematics
users:
  - email: hod.csc@example.edu
    password: secret123
    first_name: Ada
    last_name: Obi
    role: HOD
    department: CSC
  - email: dean.sci@example.edu
    password: secret123
    first_name: Bola
    last_name: Ade
    role: DEAN
    faculty: sci
`

func TestParseSeed(t *testing.T) {
	data, err := ParseSeed(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Faculties) != 1 || data.Faculties[0].Code != "SCI" {
		t.Fatalf("faculties = %+v", data.Faculties)
	}
	depts := data.Faculties[0].Departments
	if depts[0].Code != "CSC" || depts[0].PassMark != 45 || depts[1].PassMark != defaultPassMark {
		t.Errorf("departments = %+v", depts)
	}
	if len(data.Users) != 2 || data.Users[1].Role != models.RoleDEAN {
		t.Errorf("users = %+v", data.Users)
	}
}

func TestParseSeedRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "faculties:\n  - code: SCI\n    name: Science\n    dean: someone\n"},
		{"missing code", "faculties:\n  - name: Science\n"},
		{"pass mark out of range", "faculties:\n  - code: SCI\n    name: Science\n    departments:\n      - code: CSC\n        name: CS\n        pass_mark: 120\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSeed(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

type memFaculties struct {
	repository.FacultyRepository
	byCode map[string]models.Faculty
}

func (m *memFaculties) GetByCode(_ context.Context, code string) (*models.Faculty, error) {
	f, ok := m.byCode[code]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *memFaculties) Create(_ context.Context, f *models.Faculty) error {
	m.byCode[f.Code] = *f
	return nil
}

type memDepartments struct {
	repository.DepartmentRepository
	byCode map[string]models.Department
}

func (m *memDepartments) GetByCode(_ context.Context, code string) (*models.Department, error) {
	d, ok := m.byCode[code]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memDepartments) Create(_ context.Context, d *models.Department) error {
	m.byCode[d.Code] = *d
	return nil
}

type recordingAuth struct {
	service.AuthService
	registered []models.RegisterRequest
}

func (a *recordingAuth) Register(_ context.Context, req *models.RegisterRequest) (*models.LoginResponse, error) {
	for _, r := range a.registered {
		if r.Email == req.Email {
			return nil, service.ErrConflict
		}
	}
	a.registered = append(a.registered, *req)
	return &models.LoginResponse{}, nil
}

func TestSeederApplyIsRepeatable(t *testing.T) {
	data, err := ParseSeed(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatal(err)
	}

	faculties := &memFaculties{byCode: map[string]models.Faculty{}}
	departments := &memDepartments{byCode: map[string]models.Department{}}
	auth := &recordingAuth{}
	seeder := NewSeeder(Repositories{Faculties: faculties, Departments: departments}, auth, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := seeder.Apply(context.Background(), data); err != nil {
			t.Fatalf("pass %d: %v", i+1, err)
		}
	}

	if len(faculties.byCode) != 1 || len(departments.byCode) != 2 || len(auth.registered) != 2 {
		t.Fatalf("faculties %d departments %d users %d", len(faculties.byCode), len(departments.byCode), len(auth.registered))
	}
	csc := departments.byCode["CSC"]
	if csc.FacultyID != faculties.byCode["SCI"].ID || csc.PassMark != 45 {
		t.Errorf("CSC = %+v", csc)
	}
	if auth.registered[0].DepartmentID != csc.ID || auth.registered[1].FacultyID != faculties.byCode["SCI"].ID {
		t.Errorf("registered = %+v", auth.registered)
	}
}

func TestSeederUnknownDepartment(t *testing.T) {
	data := &SeedData{Users: []SeedUser{{Email: "x@example.edu", Role: models.RoleHOD, Department: "PHY"}}}
	seeder := NewSeeder(Repositories{
		Faculties:   &memFaculties{byCode: map[string]models.Faculty{}},
		Departments: &memDepartments{byCode: map[string]models.Department{}},
	}, &recordingAuth{}, zerolog.Nop())

	if err := seeder.Apply(context.Background(), data); err == nil || !strings.Contains(err.Error(), "unknown department") {
		t.Errorf("err = %v", err)
	}
}
