package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/RubachokBoss/academic-records/pkg/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type TokenManager interface {
	Issue(claims token.Claims) (string, error)
	Verify(raw string) (*token.Claims, error)
}

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error)
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
	ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error
	// Authenticate resolves a bearer token to the acting user. The user is
	// reloaded so deactivation and scope changes apply immediately.
	Authenticate(ctx context.Context, raw string) (*models.Actor, error)
}

type authService struct {
	userRepo    repository.UserRepository
	deptRepo    repository.DepartmentRepository
	facultyRepo repository.FacultyRepository
	tokens      TokenManager
	bcryptCost  int
	logger      zerolog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	deptRepo repository.DepartmentRepository,
	facultyRepo repository.FacultyRepository,
	tokens TokenManager,
	bcryptCost int,
	logger zerolog.Logger,
) AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:    userRepo,
		deptRepo:    deptRepo,
		facultyRepo: facultyRepo,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: your account has been deactivated", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	} else {
		user.LastLogin = &now
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("User logged in")

	return s.session(ctx, user)
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
		IsActive:  true,
	}

	switch req.Role {
	case models.RoleHOD:
		if req.DepartmentID == "" {
			return nil, invalid("Department ID is required for HOD role")
		}
		dept, err := s.department(ctx, req.DepartmentID)
		if err != nil {
			return nil, err
		}
		user.DepartmentID = &dept.ID
		user.FacultyID = &dept.FacultyID
	case models.RoleDEAN:
		if req.FacultyID == "" {
			return nil, invalid("Faculty ID is required for DEAN role")
		}
		faculty, err := s.faculty(ctx, req.FacultyID)
		if err != nil {
			return nil, err
		}
		user.FacultyID = &faculty.ID
	default:
		return nil, invalid("Role must be HOD or DEAN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("User registered")

	return s.session(ctx, user)
}

func (s *authService) department(ctx context.Context, id string) (*models.DepartmentWithStats, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: department not found", ErrNotFound)
	}
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	if dept == nil {
		return nil, fmt.Errorf("%w: department not found", ErrNotFound)
	}
	return dept, nil
}

func (s *authService) faculty(ctx context.Context, id string) (*models.FacultyWithStats, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: faculty not found", ErrNotFound)
	}
	faculty, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}
	if faculty == nil {
		return nil, fmt.Errorf("%w: faculty not found", ErrNotFound)
	}
	return faculty, nil
}

func (s *authService) session(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	profile, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}

	claims := token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}
	if user.DepartmentID != nil {
		claims.DepartmentID = *user.DepartmentID
	}
	if user.FacultyID != nil {
		claims.FacultyID = *user.FacultyID
	}

	signed, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{User: *profile, Token: signed}, nil
}

func (s *authService) profile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	profile := &models.UserProfile{User: *user}

	if user.DepartmentID != nil {
		dept, err := s.deptRepo.GetByID(ctx, *user.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get department: %w", err)
		}
		if dept != nil {
			profile.Department = &dept.Department
		}
	}
	if user.FacultyID != nil {
		faculty, err := s.facultyRepo.GetByID(ctx, *user.FacultyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get faculty: %w", err)
		}
		if faculty != nil {
			profile.Faculty = &faculty.Faculty
		}
	}

	return profile, nil
}

func (s *authService) loadUser(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return user, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return invalid("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password changed")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, raw string) (*models.Actor, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil || !validID(claims.UserID) {
		return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("%w: user not found or inactive", ErrUnauthorized)
	}

	actor := &models.Actor{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	if user.DepartmentID != nil {
		actor.DepartmentID = *user.DepartmentID
	}
	if user.FacultyID != nil {
		actor.FacultyID = *user.FacultyID
	}
	return actor, nil
}
