package repositories

import (
	"context"
	"errors"

	"tcw1/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already taken")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves the full user record, credentials included, from the database
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetCachedByID retrieves a user by their ID, consulting the cache first.
	// The result never carries the password hash or two-factor secrets, so it
	// must not be passed to Update.
	GetCachedByID(ctx context.Context, id uint) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update saves every field of the user and drops its cache entries
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user from the database
	Delete(ctx context.Context, id uint) error

	// IncrementTokenVersion revokes every token issued to the user
	IncrementTokenVersion(ctx context.Context, userID uint) error

	// List retrieves users with pagination
	List(ctx context.Context, offset, limit int) ([]models.User, int64, error)

	// CountByRole counts users with the given role, or all users when role is empty
	CountByRole(ctx context.Context, role string) (int64, error)
}
