package repository

import (
	"context"

	"ridebook/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetAll retrieves users with paging.
	GetAll(ctx context.Context, limit, offset int) ([]*domain.User, int, error)

	// UpdateRole changes a user's authorization role.
	UpdateRole(ctx context.Context, id string, role domain.Role) error

	// UpdateContact sets the user's phone and address.
	UpdateContact(ctx context.Context, id, phone, address string) error
}
