package postgres

import (
	"context"
	"database/sql"

	"ridebook/internal/repository"
)

// TxRunner runs functions inside a PostgreSQL transaction, handing them
// transaction-scoped repositories.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner over the database handle.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

var _ repository.TxRunner = (*TxRunner)(nil)

// RunInTx begins a transaction, runs fn, and commits on success. Any error
// (including a panic unwinding through fn) rolls the transaction back before
// control leaves this function.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	done := false
	defer func() {
		if !done {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&tx{q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return err
	}
	done = true
	return nil
}

// tx bundles transaction-scoped repositories over one *sql.Tx.
type tx struct {
	q *sql.Tx
}

var _ repository.Tx = (*tx)(nil)

func (t *tx) Users() repository.UserRepository               { return &UserRepository{q: t.q} }
func (t *tx) Drivers() repository.DriverRepository           { return &DriverRepository{q: t.q} }
func (t *tx) RideRequests() repository.RideRequestRepository { return &RideRequestRepository{q: t.q} }
func (t *tx) Rides() repository.RideRepository               { return &RideRepository{q: t.q} }
func (t *tx) Bookings() repository.BookingRepository         { return &BookingRepository{q: t.q} }
func (t *tx) Payments() repository.PaymentRepository         { return &PaymentRepository{q: t.q} }
