package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// FareConfigRepository is a PostgreSQL implementation of
// repository.FareConfigRepository.
type FareConfigRepository struct {
	q Querier
}

// NewFareConfigRepository creates a new PostgreSQL fare config repository.
func NewFareConfigRepository(db *sql.DB) *FareConfigRepository {
	return &FareConfigRepository{q: db}
}

const fareConfigColumns = `vehicle_type, base_fare, per_km_rate, per_minute_rate, minimum_fare, platform_fee_percentage, tax_percentage`

// GetByVehicleType retrieves the stored config for a vehicle type.
func (r *FareConfigRepository) GetByVehicleType(ctx context.Context, vehicleType domain.VehicleType) (*domain.FareConfig, error) {
	query := `SELECT ` + fareConfigColumns + ` FROM fare_configs WHERE vehicle_type = $1`

	var cfg domain.FareConfig
	err := r.q.QueryRowContext(ctx, query, vehicleType).Scan(
		&cfg.VehicleType,
		&cfg.BaseFare,
		&cfg.PerKmRate,
		&cfg.PerMinuteRate,
		&cfg.MinimumFare,
		&cfg.PlatformFeePercentage,
		&cfg.TaxPercentage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// GetAll retrieves every stored config.
func (r *FareConfigRepository) GetAll(ctx context.Context) ([]*domain.FareConfig, error) {
	query := `SELECT ` + fareConfigColumns + ` FROM fare_configs ORDER BY vehicle_type`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.FareConfig
	for rows.Next() {
		var cfg domain.FareConfig
		if err := rows.Scan(
			&cfg.VehicleType,
			&cfg.BaseFare,
			&cfg.PerKmRate,
			&cfg.PerMinuteRate,
			&cfg.MinimumFare,
			&cfg.PlatformFeePercentage,
			&cfg.TaxPercentage,
		); err != nil {
			return nil, err
		}
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// Upsert inserts or replaces the config for its vehicle type.
func (r *FareConfigRepository) Upsert(ctx context.Context, cfg *domain.FareConfig) error {
	query := `
		INSERT INTO fare_configs (` + fareConfigColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (vehicle_type) DO UPDATE
		SET base_fare = EXCLUDED.base_fare,
		    per_km_rate = EXCLUDED.per_km_rate,
		    per_minute_rate = EXCLUDED.per_minute_rate,
		    minimum_fare = EXCLUDED.minimum_fare,
		    platform_fee_percentage = EXCLUDED.platform_fee_percentage,
		    tax_percentage = EXCLUDED.tax_percentage
	`

	_, err := r.q.ExecContext(ctx, query,
		cfg.VehicleType,
		cfg.BaseFare,
		cfg.PerKmRate,
		cfg.PerMinuteRate,
		cfg.MinimumFare,
		cfg.PlatformFeePercentage,
		cfg.TaxPercentage,
	)
	return err
}
