package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, title, slug, description, images, pick_up_address, drop_off_address, division_id, district_id, ride_type_id, cost, available_seats, max_guests, vehicle, driver_id, declined_drivers, user_id, status, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.Title,
		ride.Slug,
		nullString(ride.Description),
		pq.Array(ride.Images),
		ride.PickUpAddress,
		ride.DropOffAddress,
		ride.DivisionID,
		ride.DistrictID,
		ride.RideTypeID,
		ride.Cost,
		ride.AvailableSeats,
		ride.MaxGuests,
		ride.Vehicle,
		nullString(ride.DriverID),
		pq.Array(ride.DeclinedDrivers),
		ride.UserID,
		ride.Status,
		ride.CreatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a ride by its slug.
func (r *RideRepository) GetBySlug(ctx context.Context, slug string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE slug = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, slug))
}

// SlugExists reports whether a slug is already taken.
func (r *RideRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// TitleExists reports whether a title is already taken by another ride.
func (r *RideRepository) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rides WHERE title = $1 AND id <> $2)`,
		title, excludeID,
	).Scan(&exists)
	return exists, err
}

// Update persists the mutable fields of an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET title = $1, slug = $2, description = $3, images = $4,
		    pick_up_address = $5, drop_off_address = $6, division_id = $7,
		    district_id = $8, ride_type_id = $9, cost = $10,
		    available_seats = $11, max_guests = $12, vehicle = $13,
		    driver_id = $14, status = $15
		WHERE id = $16
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Title,
		ride.Slug,
		nullString(ride.Description),
		pq.Array(ride.Images),
		ride.PickUpAddress,
		ride.DropOffAddress,
		ride.DivisionID,
		ride.DistrictID,
		ride.RideTypeID,
		ride.Cost,
		ride.AvailableSeats,
		ride.MaxGuests,
		ride.Vehicle,
		nullString(ride.DriverID),
		ride.Status,
		ride.ID,
	)
	if err != nil {
		return translateError(err)
	}

	return requireAffected(result)
}

// AssignDriverIfUnassigned atomically assigns a driver and moves the ride to
// Accepted. Returns false when another driver already took it or the ride
// left the Active state.
func (r *RideRepository) AssignDriverIfUnassigned(ctx context.Context, rideID, driverID string) (bool, error) {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2
		WHERE id = $3 AND status = $4 AND driver_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, driverID, domain.RideStatusAccepted, rideID, domain.RideStatusActive)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AddDeclinedDriver appends the driver to the ride's exclusion list if not
// already present.
func (r *RideRepository) AddDeclinedDriver(ctx context.Context, rideID, driverID string) error {
	query := `
		UPDATE rides
		SET declined_drivers = array_append(declined_drivers, $1)
		WHERE id = $2 AND NOT ($1 = ANY(declined_drivers))
	`

	_, err := r.q.ExecContext(ctx, query, driverID, rideID)
	return err
}

// ListAvailableForDriver returns Active, unassigned rides for the given
// vehicle type that the driver has not declined.
func (r *RideRepository) ListAvailableForDriver(ctx context.Context, driverID string, vehicle domain.VehicleType, limit, offset int) ([]*domain.Ride, int, error) {
	where := `status = $1 AND driver_id IS NULL AND vehicle = $2 AND NOT ($3 = ANY(declined_drivers))`
	return r.list(ctx, where, []any{domain.RideStatusActive, vehicle, driverID}, limit, offset)
}

// ListByStatus returns rides in the given status, newest first.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus, limit, offset int) ([]*domain.Ride, int, error) {
	return r.list(ctx, `status = $1`, []any{status}, limit, offset)
}

// ListAll returns all rides, newest first.
func (r *RideRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Ride, int, error) {
	return r.list(ctx, `TRUE`, nil, limit, offset)
}

func (r *RideRepository) list(ctx context.Context, where string, args []any, limit, offset int) ([]*domain.Ride, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM rides WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + itoa(n+1) + ` OFFSET $` + itoa(n+2)

	rows, err := r.q.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, 0, err
		}
		rides = append(rides, ride)
	}

	return rides, total, rows.Err()
}

func (r *RideRepository) scanOne(row *sql.Row) (*domain.Ride, error) {
	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var description, driverID sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.Title,
		&ride.Slug,
		&description,
		pq.Array(&ride.Images),
		&ride.PickUpAddress,
		&ride.DropOffAddress,
		&ride.DivisionID,
		&ride.DistrictID,
		&ride.RideTypeID,
		&ride.Cost,
		&ride.AvailableSeats,
		&ride.MaxGuests,
		&ride.Vehicle,
		&driverID,
		pq.Array(&ride.DeclinedDrivers),
		&ride.UserID,
		&ride.Status,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.Description = description.String
	ride.DriverID = driverID.String
	return &ride, nil
}
