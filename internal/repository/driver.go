package repository

import (
	"context"

	"ridebook/internal/domain"
)

// DriverRepository defines the persistence operations for driver profiles.
type DriverRepository interface {
	// Create adds a new driver profile. Returns ErrDuplicate when the user,
	// plate number or driving license is already registered.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by profile ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByUserID retrieves the driver profile owned by a user.
	GetByUserID(ctx context.Context, userID string) (*domain.Driver, error)

	// GetAll retrieves drivers with paging.
	GetAll(ctx context.Context, limit, offset int) ([]*domain.Driver, int, error)

	// Update persists the mutable profile fields.
	Update(ctx context.Context, driver *domain.Driver) error

	// SetOnline persists the driver's online flag.
	SetOnline(ctx context.Context, id string, online bool) error

	// CreditCompletedRide increments the driver's completed-ride counter and
	// earnings in one statement.
	CreditCompletedRide(ctx context.Context, id string, fare float64) error

	// UpdateRating persists the recomputed aggregate rating.
	UpdateRating(ctx context.Context, id string, rating float64) error
}
