package repository

import (
	"context"

	"ridebook/internal/domain"
)

// FareConfigRepository defines the persistence operations for fare
// configurations.
type FareConfigRepository interface {
	// GetByVehicleType retrieves the stored config for a vehicle type.
	// Returns ErrNotFound when no override exists.
	GetByVehicleType(ctx context.Context, vehicleType domain.VehicleType) (*domain.FareConfig, error)

	// GetAll retrieves every stored config.
	GetAll(ctx context.Context) ([]*domain.FareConfig, error)

	// Upsert inserts or replaces the config for its vehicle type.
	Upsert(ctx context.Context, cfg *domain.FareConfig) error
}
