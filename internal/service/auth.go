package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/glasses-shop/internal/domain"
)

// LoginInput is the submitted login form.
type LoginInput struct {
	Email    string
	Password string
}

// Validate reports missing fields before any store access.
func (in LoginInput) Validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Email) == "" {
		verr.Add("email", "Email is required.")
	}
	if in.Password == "" {
		verr.Add("password", "Password is required.")
	}
	return verr.OrNil()
}

// RegisterInput is the submitted registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate reports missing fields before any store access.
func (in RegisterInput) Validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "Name is required.")
	}
	if strings.TrimSpace(in.Email) == "" {
		verr.Add("email", "Email is required.")
	}
	if in.Password == "" {
		verr.Add("password", "Password is required.")
	}
	return verr.OrNil()
}

// AuthService handles user registration and credential checks.
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
	}
}

// Register creates a new user account. An email that is already present
// yields domain.ErrDuplicateEmail and creates nothing.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)

	// The unique index decides; this lookup only avoids hashing for a known email.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			verr := &domain.ValidationError{}
			verr.Add("password", "Password must be at most 72 bytes.")
			return nil, verr
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login checks credentials and returns the matching user. It fails with
// domain.ErrUnknownEmail or domain.ErrPasswordMismatch, both of which match
// domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownEmail
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		return nil, domain.ErrPasswordMismatch
	}

	return user, nil
}
