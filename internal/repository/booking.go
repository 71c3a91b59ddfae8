package repository

import (
	"context"

	"ridebook/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// SetPayment links the created payment record to the booking.
	SetPayment(ctx context.Context, bookingID, paymentID string) error

	// UpdateStatus changes the booking status.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error

	// ListByUser returns the user's bookings, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, int, error)
}
