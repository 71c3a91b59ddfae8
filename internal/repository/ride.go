package repository

import (
	"context"

	"ridebook/internal/domain"
)

// RideRepository defines the persistence operations for published ride
// listings.
type RideRepository interface {
	// Create persists a new ride. Returns ErrDuplicate on a title or slug
	// collision.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetBySlug retrieves a ride by its slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Ride, error)

	// SlugExists reports whether a slug is already taken.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// TitleExists reports whether a title is already taken by a ride other
	// than excludeID (pass "" for inserts).
	TitleExists(ctx context.Context, title, excludeID string) (bool, error)

	// Update persists the mutable fields of an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// AssignDriverIfUnassigned atomically assigns a driver and moves the
	// ride to Accepted, conditioned on the ride being Active with no driver.
	// Returns false when the condition did not hold.
	AssignDriverIfUnassigned(ctx context.Context, rideID, driverID string) (bool, error)

	// AddDeclinedDriver appends the driver to the ride's exclusion list if
	// not already present.
	AddDeclinedDriver(ctx context.Context, rideID, driverID string) error

	// ListAvailableForDriver returns Active, unassigned rides for the given
	// vehicle type that the driver has not declined.
	ListAvailableForDriver(ctx context.Context, driverID string, vehicle domain.VehicleType, limit, offset int) ([]*domain.Ride, int, error)

	// ListByStatus returns rides in the given status, newest first.
	ListByStatus(ctx context.Context, status domain.RideStatus, limit, offset int) ([]*domain.Ride, int, error)

	// ListAll returns all rides, newest first.
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Ride, int, error)
}
