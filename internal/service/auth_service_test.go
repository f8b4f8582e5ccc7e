package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/pkg/token"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func (f *fixture) authService() AuthService {
	s := f.store
	tokens := token.NewManager("test-secret", time.Hour, "academic-records")
	return NewAuthService(fakeUserRepo{s}, fakeDepartmentRepo{s}, fakeFacultyRepo{s}, tokens, bcrypt.MinCost, zerolog.Nop())
}

func TestRegisterRoleRules(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr error
	}{
		{"hod", models.RegisterRequest{Email: "hod@example.edu", Role: models.RoleHOD, DepartmentID: f.dept.ID}, nil},
		{"dean", models.RegisterRequest{Email: "dean@example.edu", Role: models.RoleDEAN, FacultyID: f.faculty.ID}, nil},
		{"hod without department", models.RegisterRequest{Email: "a@example.edu", Role: models.RoleHOD}, ErrValidation},
		{"dean without faculty", models.RegisterRequest{Email: "b@example.edu", Role: models.RoleDEAN}, ErrValidation},
		{"unknown department", models.RegisterRequest{Email: "c@example.edu", Role: models.RoleHOD, DepartmentID: f.faculty.ID}, ErrNotFound},
		{"duplicate email", models.RegisterRequest{Email: "HOD@example.edu", Role: models.RoleHOD, DepartmentID: f.dept.ID}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Password, req.FirstName, req.LastName = "secret123", "Ada", "Obi"

			resp, err := svc.Register(ctx, &req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if resp.Token == "" || resp.User.PasswordHash == "" || resp.User.Role != req.Role {
				t.Errorf("resp = %+v", resp)
			}
		})
	}

	hod, _ := fakeUserRepo{f.store}.GetByEmail(ctx, "hod@example.edu")
	if hod == nil || *hod.FacultyID != f.faculty.ID {
		t.Errorf("hod faculty = %+v", hod)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "hod@example.edu", Password: "secret123", FirstName: "Ada", LastName: "Obi",
		Role: models.RoleHOD, DepartmentID: f.dept.ID,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, &models.LoginRequest{Email: "hod@example.edu", Password: "wrong"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.edu", Password: "secret123"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown email err = %v", err)
	}

	resp, err := svc.Login(ctx, &models.LoginRequest{Email: "hod@example.edu", Password: "secret123"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.User.LastLogin == nil || resp.User.Department == nil || resp.User.Department.Code != "CSC" {
		t.Errorf("profile = %+v", resp.User)
	}

	actor, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatal(err)
	}
	if actor.Role != models.RoleHOD || actor.DepartmentID != f.dept.ID || actor.FacultyID != f.faculty.ID {
		t.Errorf("actor = %+v", actor)
	}

	if _, err := svc.Authenticate(ctx, resp.Token+"x"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("tampered token err = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "dean@example.edu", Password: "secret123", FirstName: "Bola", LastName: "Ade",
		Role: models.RoleDEAN, FacultyID: f.faculty.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = svc.ChangePassword(ctx, resp.User.ID, &models.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another1"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("wrong current password err = %v", err)
	}
	if err := svc.ChangePassword(ctx, resp.User.ID, &models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, &models.LoginRequest{Email: "dean@example.edu", Password: "another1"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
