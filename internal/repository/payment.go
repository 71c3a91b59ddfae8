package repository

import (
	"context"
	"encoding/json"

	"ridebook/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment. Returns ErrDuplicate on a transaction
	// id collision.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByTransactionID retrieves a payment by its gateway transaction id.
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)

	// GetByBookingID retrieves the payment linked to a booking, or nil.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)

	// GetByRideID retrieves the direct-flow payment linked to a ride, or
	// nil.
	GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error)

	// UpdateStatus changes the payment status.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// ResetForRetry rewrites the transaction id and returns the payment to
	// Unpaid ahead of a fresh gateway init. Returns ErrDuplicate if the new
	// transaction id collides.
	ResetForRetry(ctx context.Context, id, transactionID string) error

	// SetInvoiceURL records the uploaded invoice location.
	SetInvoiceURL(ctx context.Context, id, url string) error

	// SetGatewayData stores the raw gateway validation record.
	SetGatewayData(ctx context.Context, id string, data json.RawMessage) error
}
