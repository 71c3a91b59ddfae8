package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of
// repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a
// transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, ride_id, payment_id, guest_count, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.RideID,
		nullString(booking.PaymentID),
		booking.GuestCount,
		booking.Status,
		booking.CreatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, ride_id, payment_id, guest_count, status, created_at
		FROM bookings WHERE id = $1
	`

	var booking domain.Booking
	var paymentID sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.RideID,
		&paymentID,
		&booking.GuestCount,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	booking.PaymentID = paymentID.String
	return &booking, nil
}

// SetPayment links the created payment record to the booking.
func (r *BookingRepository) SetPayment(ctx context.Context, bookingID, paymentID string) error {
	query := `UPDATE bookings SET payment_id = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, paymentID, bookingID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// UpdateStatus changes the booking status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, ride_id, payment_id, guest_count, status, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var booking domain.Booking
		var paymentID sql.NullString
		if err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.RideID,
			&paymentID,
			&booking.GuestCount,
			&booking.Status,
			&booking.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		booking.PaymentID = paymentID.String
		bookings = append(bookings, &booking)
	}

	return bookings, total, rows.Err()
}
