package repository

import (
	"context"
	"time"

	"ridebook/internal/domain"
)

// RideRequestRepository defines the persistence operations for on-demand
// ride requests.
type RideRequestRepository interface {
	// Create persists a new ride request.
	Create(ctx context.Context, req *domain.RideRequest) error

	// GetByID retrieves a ride request by ID.
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)

	// GetActiveByRider returns the rider's non-terminal request, or nil.
	GetActiveByRider(ctx context.Context, riderID string) (*domain.RideRequest, error)

	// GetActiveByDriver returns the driver's non-terminal assigned request,
	// or nil.
	GetActiveByDriver(ctx context.Context, driverID string) (*domain.RideRequest, error)

	// AcceptIfRequested atomically assigns the driver and moves the request
	// to ACCEPTED, conditioned on the request still being REQUESTED. Returns
	// false when the condition did not hold (another driver won the race or
	// the request moved on).
	AcceptIfRequested(ctx context.Context, id, driverID string, at time.Time) (bool, error)

	// AssignIfOpen atomically assigns the driver and moves the request to
	// ACCEPTED, conditioned on the request being REQUESTED or ACCEPTED. An
	// already-assigned driver is replaced. Returns false when the request has
	// reached any later state.
	AssignIfOpen(ctx context.Context, id, driverID string, at time.Time) (bool, error)

	// Update persists all mutable fields of an existing request.
	Update(ctx context.Context, req *domain.RideRequest) error

	// ListByRider returns the rider's requests, newest first.
	ListByRider(ctx context.Context, riderID string, limit, offset int) ([]*domain.RideRequest, int, error)

	// ListByDriver returns the driver's assigned requests, newest first.
	ListByDriver(ctx context.Context, driverID string, limit, offset int) ([]*domain.RideRequest, int, error)

	// ListAll returns all requests, newest first.
	ListAll(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error)

	// ListRequested returns requests still open for acceptance.
	ListRequested(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error)

	// CountActiveSince counts REQUESTED/ACCEPTED requests for a vehicle type
	// requested at or after the cutoff. Used for surge demand.
	CountActiveSince(ctx context.Context, vehicleType domain.VehicleType, since time.Time) (int, error)

	// SumCompletedFares returns the fare total and trip count the driver
	// completed at or after the cutoff.
	SumCompletedFares(ctx context.Context, driverID string, since time.Time) (float64, int, error)

	// ListCompletedByDriver returns the driver's most recently completed
	// requests, newest first.
	ListCompletedByDriver(ctx context.Context, driverID string, limit int) ([]*domain.RideRequest, error)
}
