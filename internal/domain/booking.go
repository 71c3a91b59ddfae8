package domain

import "time"

// BookingStatus represents the state of a rider's reservation.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusFailed    BookingStatus = "FAILED"
)

// Booking is a rider's reservation against a Ride listing, tied 1:1 to a
// Payment once payment is initialised.
type Booking struct {
	ID         string
	UserID     string
	RideID     string
	PaymentID  string // empty until the payment record is created
	GuestCount int
	Status     BookingStatus
	CreatedAt  time.Time
}
