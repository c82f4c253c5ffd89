package repository

import (
	"context"
	"errors"
	"time"

	"mfa-service/internal/domain"
)

var (
	// ErrNotFound indicates no record exists for the given email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail indicates a record with the given email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines persistence operations for User records.
// Each call is atomic with respect to concurrent calls on the same email.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateCodeFields overwrites the pending verification code and its
	// expiry in a single write, replacing any prior pending code.
	UpdateCodeFields(ctx context.Context, email, code string, expiresAt time.Time) error
}
