package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of
// repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, user_id, vehicle_type, vehicle_model, vehicle_plate_number, driving_license, status, is_online, is_active, rating, total_completed_rides, earnings, created_at`

// Create adds a new driver profile.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (` + driverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.UserID,
		driver.VehicleType,
		driver.VehicleModel,
		driver.VehiclePlateNumber,
		driver.DrivingLicense,
		driver.Status,
		driver.IsOnline,
		driver.IsActive,
		driver.Rating,
		driver.TotalCompletedRides,
		driver.Earnings,
		driver.CreatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a driver by profile ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves the driver profile owned by a user.
func (r *DriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE user_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, userID))
}

// GetAll retrieves drivers with paging.
func (r *DriverRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.Driver, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM drivers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + driverColumns + `
		FROM drivers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := scanDriver(rows, &driver); err != nil {
			return nil, 0, err
		}
		drivers = append(drivers, &driver)
	}

	return drivers, total, rows.Err()
}

// Update persists the mutable profile fields.
func (r *DriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	query := `
		UPDATE drivers
		SET vehicle_type = $1, vehicle_model = $2, vehicle_plate_number = $3,
		    driving_license = $4, status = $5, is_online = $6, is_active = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		driver.VehicleType,
		driver.VehicleModel,
		driver.VehiclePlateNumber,
		driver.DrivingLicense,
		driver.Status,
		driver.IsOnline,
		driver.IsActive,
		driver.ID,
	)
	if err != nil {
		return translateError(err)
	}

	return requireAffected(result)
}

// SetOnline persists the driver's online flag.
func (r *DriverRepository) SetOnline(ctx context.Context, id string, online bool) error {
	query := `UPDATE drivers SET is_online = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, online, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// CreditCompletedRide increments the driver's completed-ride counter and
// earnings in one statement.
func (r *DriverRepository) CreditCompletedRide(ctx context.Context, id string, fare float64) error {
	query := `
		UPDATE drivers
		SET total_completed_rides = total_completed_rides + 1,
		    earnings = earnings + $1
		WHERE id = $2
	`

	result, err := r.q.ExecContext(ctx, query, fare, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// UpdateRating persists the recomputed aggregate rating.
func (r *DriverRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	query := `UPDATE drivers SET rating = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, rating, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(
		&driver.ID,
		&driver.UserID,
		&driver.VehicleType,
		&driver.VehicleModel,
		&driver.VehiclePlateNumber,
		&driver.DrivingLicense,
		&driver.Status,
		&driver.IsOnline,
		&driver.IsActive,
		&driver.Rating,
		&driver.TotalCompletedRides,
		&driver.Earnings,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func scanDriver(rows *sql.Rows, driver *domain.Driver) error {
	return rows.Scan(
		&driver.ID,
		&driver.UserID,
		&driver.VehicleType,
		&driver.VehicleModel,
		&driver.VehiclePlateNumber,
		&driver.DrivingLicense,
		&driver.Status,
		&driver.IsOnline,
		&driver.IsActive,
		&driver.Rating,
		&driver.TotalCompletedRides,
		&driver.Earnings,
		&driver.CreatedAt,
	)
}
