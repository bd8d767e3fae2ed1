package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Common errors
var (
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user not found")
	ErrUsernameTaken      = apperror.New(apperror.KindConflict, "username already exists")
	ErrEmailAlreadyInUse  = apperror.New(apperror.KindConflict, "email already in use")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid username or password")
)

// Store is the persistence the user service needs
type Store interface {
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Service handles user business logic
type Service struct {
	repo Store
	cost int
}

// NewService creates a new user service with repository dependency injected
func NewService(repo Store) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a hashed password
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := NormalizeEmail(req.Email)

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, username, email, hash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(database.ConstraintName(err), "email") {
				return nil, ErrEmailAlreadyInUse
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate checks a username and password pair
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByEmail retrieves a user by their email
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetPassword hashes and stores a new password
func (s *Service) SetPassword(ctx context.Context, id int64, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.Validation("Validation failed", map[string]string{"password": "must be at most 72 bytes"})
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
