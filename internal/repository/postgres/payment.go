package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of
// repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a
// transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, transaction_id, amount, status, booking_id, ride_id, invoice_url, gateway_data, created_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var gatewayData any
	if len(payment.GatewayData) > 0 {
		gatewayData = []byte(payment.GatewayData)
	}

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TransactionID,
		payment.Amount,
		payment.Status,
		nullString(payment.BookingID),
		nullString(payment.RideID),
		nullString(payment.InvoiceURL),
		gatewayData,
		payment.CreatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByTransactionID retrieves a payment by its gateway transaction id.
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByBookingID retrieves the payment linked to a booking, or nil.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// GetByRideID retrieves the direct-flow payment linked to a ride, or nil.
func (r *PaymentRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ride_id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, rideID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// UpdateStatus changes the payment status.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ResetForRetry rewrites the transaction id and returns the payment to
// Unpaid ahead of a fresh gateway init.
func (r *PaymentRepository) ResetForRetry(ctx context.Context, id, transactionID string) error {
	query := `UPDATE payments SET transaction_id = $1, status = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, transactionID, domain.PaymentStatusUnpaid, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(result)
}

// SetInvoiceURL records the uploaded invoice location.
func (r *PaymentRepository) SetInvoiceURL(ctx context.Context, id, url string) error {
	query := `UPDATE payments SET invoice_url = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, url, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetGatewayData stores the raw gateway validation record.
func (r *PaymentRepository) SetGatewayData(ctx context.Context, id string, data json.RawMessage) error {
	query := `UPDATE payments SET gateway_data = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, []byte(data), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var bookingID, rideID, invoiceURL sql.NullString
	var gatewayData []byte

	err := row.Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.Amount,
		&payment.Status,
		&bookingID,
		&rideID,
		&invoiceURL,
		&gatewayData,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.BookingID = bookingID.String
	payment.RideID = rideID.String
	payment.InvoiceURL = invoiceURL.String
	if len(gatewayData) > 0 {
		payment.GatewayData = json.RawMessage(gatewayData)
	}
	return &payment, nil
}
