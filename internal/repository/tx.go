package repository

import "context"

// Tx exposes transaction-scoped repositories. Every repository obtained from
// the same Tx shares one database transaction.
type Tx interface {
	Users() UserRepository
	Drivers() DriverRepository
	RideRequests() RideRequestRepository
	Rides() RideRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
}

// TxRunner runs a function inside a database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise; the rollback
// always completes before RunInTx returns.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
