package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// RideRequestRepository is a PostgreSQL implementation of
// repository.RideRequestRepository.
type RideRequestRepository struct {
	q Querier
}

// NewRideRequestRepository creates a new PostgreSQL ride request repository.
func NewRideRequestRepository(db *sql.DB) *RideRequestRepository {
	return &RideRequestRepository{q: db}
}

// NewRideRequestRepositoryWithTx creates a ride request repository using a
// transaction.
func NewRideRequestRepositoryWithTx(tx *sql.Tx) *RideRequestRepository {
	return &RideRequestRepository{q: tx}
}

const rideRequestColumns = `id, rider_id, driver_id, pickup_address, pickup_lat, pickup_lng, dropoff_address, dropoff_lat, dropoff_lng, vehicle_type, fare, status, requested_at, accepted_at, picked_up_at, completed_at, cancelled_at, cancelled_by, cancellation_reason`

// Create persists a new ride request.
func (r *RideRequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	query := `
		INSERT INTO ride_requests (` + rideRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.RiderID,
		nullString(req.DriverID),
		req.Pickup.Address,
		req.Pickup.Lat,
		req.Pickup.Lng,
		req.Dropoff.Address,
		req.Dropoff.Lat,
		req.Dropoff.Lng,
		req.VehicleType,
		req.Fare,
		req.Status,
		req.RequestedAt,
		nullTime(req.AcceptedAt),
		nullTime(req.PickedUpAt),
		nullTime(req.CompletedAt),
		nullTime(req.CancelledAt),
		nullString(string(req.CancelledBy)),
		nullString(req.CancellationReason),
	)

	return err
}

// GetByID retrieves a ride request by ID.
func (r *RideRequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + rideRequestColumns + ` FROM ride_requests WHERE id = $1`

	req, err := scanRideRequest(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// GetActiveByRider returns the rider's non-terminal request, or nil.
func (r *RideRequestRepository) GetActiveByRider(ctx context.Context, riderID string) (*domain.RideRequest, error) {
	query := `
		SELECT ` + rideRequestColumns + `
		FROM ride_requests
		WHERE rider_id = $1 AND status = ANY($2)
		ORDER BY requested_at DESC
		LIMIT 1
	`

	req, err := scanRideRequest(r.q.QueryRowContext(ctx, query, riderID, pq.Array(activeStatusStrings())))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// GetActiveByDriver returns the driver's non-terminal assigned request, or
// nil.
func (r *RideRequestRepository) GetActiveByDriver(ctx context.Context, driverID string) (*domain.RideRequest, error) {
	query := `
		SELECT ` + rideRequestColumns + `
		FROM ride_requests
		WHERE driver_id = $1 AND status = ANY($2)
		ORDER BY requested_at DESC
		LIMIT 1
	`

	req, err := scanRideRequest(r.q.QueryRowContext(ctx, query, driverID, pq.Array(activeStatusStrings())))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// AcceptIfRequested atomically assigns the driver and moves the request to
// ACCEPTED. The WHERE clause carries the race: of two concurrent drivers,
// exactly one update matches a row.
func (r *RideRequestRepository) AcceptIfRequested(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	query := `
		UPDATE ride_requests
		SET driver_id = $1, status = $2, accepted_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.ExecContext(ctx, query, driverID, domain.RideRequestAccepted, at, id, domain.RideRequestRequested)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AssignIfOpen atomically assigns the driver and moves the request to
// ACCEPTED, replacing any previously assigned driver. Requests past ACCEPTED
// never match.
func (r *RideRequestRepository) AssignIfOpen(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	query := `
		UPDATE ride_requests
		SET driver_id = $1, status = $2, accepted_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`

	result, err := r.q.ExecContext(ctx, query, driverID, domain.RideRequestAccepted, at, id, domain.RideRequestRequested, domain.RideRequestAccepted)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Update persists all mutable fields of an existing request.
func (r *RideRequestRepository) Update(ctx context.Context, req *domain.RideRequest) error {
	query := `
		UPDATE ride_requests
		SET driver_id = $1, fare = $2, status = $3, accepted_at = $4,
		    picked_up_at = $5, completed_at = $6, cancelled_at = $7,
		    cancelled_by = $8, cancellation_reason = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(req.DriverID),
		req.Fare,
		req.Status,
		nullTime(req.AcceptedAt),
		nullTime(req.PickedUpAt),
		nullTime(req.CompletedAt),
		nullTime(req.CancelledAt),
		nullString(string(req.CancelledBy)),
		nullString(req.CancellationReason),
		req.ID,
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// ListByRider returns the rider's requests, newest first.
func (r *RideRequestRepository) ListByRider(ctx context.Context, riderID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	return r.list(ctx, `rider_id = $1`, []any{riderID}, limit, offset)
}

// ListByDriver returns the driver's assigned requests, newest first.
func (r *RideRequestRepository) ListByDriver(ctx context.Context, driverID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	return r.list(ctx, `driver_id = $1`, []any{driverID}, limit, offset)
}

// ListAll returns all requests, newest first.
func (r *RideRequestRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error) {
	return r.list(ctx, `TRUE`, nil, limit, offset)
}

// ListRequested returns requests still open for acceptance.
func (r *RideRequestRepository) ListRequested(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error) {
	return r.list(ctx, `status = $1`, []any{domain.RideRequestRequested}, limit, offset)
}

// CountActiveSince counts REQUESTED/ACCEPTED requests for a vehicle type
// requested at or after the cutoff.
func (r *RideRequestRepository) CountActiveSince(ctx context.Context, vehicleType domain.VehicleType, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM ride_requests
		WHERE vehicle_type = $1 AND requested_at >= $2 AND status IN ($3, $4)
	`

	var count int
	err := r.q.QueryRowContext(ctx, query, vehicleType, since, domain.RideRequestRequested, domain.RideRequestAccepted).Scan(&count)
	return count, err
}

// SumCompletedFares returns the fare total and trip count the driver
// completed at or after the cutoff.
func (r *RideRequestRepository) SumCompletedFares(ctx context.Context, driverID string, since time.Time) (float64, int, error) {
	query := `
		SELECT COALESCE(SUM(fare), 0), COUNT(*)
		FROM ride_requests
		WHERE driver_id = $1 AND status = $2 AND completed_at >= $3
	`

	var total float64
	var count int
	err := r.q.QueryRowContext(ctx, query, driverID, domain.RideRequestCompleted, since).Scan(&total, &count)
	return total, count, err
}

// ListCompletedByDriver returns the driver's most recently completed
// requests, newest first.
func (r *RideRequestRepository) ListCompletedByDriver(ctx context.Context, driverID string, limit int) ([]*domain.RideRequest, error) {
	query := `
		SELECT ` + rideRequestColumns + `
		FROM ride_requests
		WHERE driver_id = $1 AND status = $2
		ORDER BY completed_at DESC
		LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, driverID, domain.RideRequestCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.RideRequest
	for rows.Next() {
		req, err := scanRideRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

func (r *RideRequestRepository) list(ctx context.Context, where string, args []any, limit, offset int) ([]*domain.RideRequest, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM ride_requests WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `
		SELECT ` + rideRequestColumns + `
		FROM ride_requests
		WHERE ` + where + `
		ORDER BY requested_at DESC
		LIMIT $` + itoa(n+1) + ` OFFSET $` + itoa(n+2)

	rows, err := r.q.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []*domain.RideRequest
	for rows.Next() {
		req, err := scanRideRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, req)
	}

	return reqs, total, rows.Err()
}

func activeStatusStrings() []string {
	out := make([]string, 0, len(domain.ActiveRequestStatuses))
	for _, s := range domain.ActiveRequestStatuses {
		out = append(out, string(s))
	}
	return out
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRideRequest(row rowScanner) (*domain.RideRequest, error) {
	var req domain.RideRequest
	var driverID, cancelledBy, cancelReason sql.NullString
	var acceptedAt, pickedUpAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.RiderID,
		&driverID,
		&req.Pickup.Address,
		&req.Pickup.Lat,
		&req.Pickup.Lng,
		&req.Dropoff.Address,
		&req.Dropoff.Lat,
		&req.Dropoff.Lng,
		&req.VehicleType,
		&req.Fare,
		&req.Status,
		&req.RequestedAt,
		&acceptedAt,
		&pickedUpAt,
		&completedAt,
		&cancelledAt,
		&cancelledBy,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	req.DriverID = driverID.String
	req.AcceptedAt = acceptedAt.Time
	req.PickedUpAt = pickedUpAt.Time
	req.CompletedAt = completedAt.Time
	req.CancelledAt = cancelledAt.Time
	req.CancelledBy = domain.CancelActor(cancelledBy.String)
	req.CancellationReason = cancelReason.String
	return &req, nil
}
