package repository

import (
	"context"
	"errors"

	"github.com/asadamin236/login-system-backend/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when an insert or update would violate the
	// username or email uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNoFields is returned when an update names no fields.
	ErrNoFields = errors.New("no fields to update")
)

// UserRepository defines persistence operations for User entities.
// FindByID and ListAll never include the password hash in their projections.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateByID(ctx context.Context, id int64, update domain.UserUpdate) (bool, error)
	ListAll(ctx context.Context) ([]domain.User, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
