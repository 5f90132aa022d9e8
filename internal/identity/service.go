package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates a failed login attempt. The same error is
// returned for an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages the account-holder lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures the data required to open an account.
type RegisterInput struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new account holder with a hashed login password. The
// transaction PIN is not set at registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errors.New("a valid email is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return User{}, errors.New("a phone number is required")
	}
	if len(input.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies login credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get fetches an account holder by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
