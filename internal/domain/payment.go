package domain

import (
	"encoding/json"
	"time"
)

// PaymentStatus represents the current status of a gateway payment.
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "Unpaid"
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// Terminal reports whether the status is final. Terminal payments never
// revert; gateway callbacks on them are rejected.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentTargetKind tags which flow a payment serves.
type PaymentTargetKind string

const (
	PaymentTargetBooking PaymentTargetKind = "booking"
	PaymentTargetRide    PaymentTargetKind = "ride"
)

// PaymentTarget is the tagged union over the two payment flows: a payment
// settles either a Booking or a direct Ride payment, never both.
type PaymentTarget struct {
	Kind      PaymentTargetKind
	BookingID string
	RideID    string
}

// BookingTarget builds a booking-flow target.
func BookingTarget(bookingID string) PaymentTarget {
	return PaymentTarget{Kind: PaymentTargetBooking, BookingID: bookingID}
}

// RideTarget builds a direct ride-payment target.
func RideTarget(rideID string) PaymentTarget {
	return PaymentTarget{Kind: PaymentTargetRide, RideID: rideID}
}

// Payment is a gateway transaction record.
type Payment struct {
	ID            string
	TransactionID string // globally unique
	Amount        float64
	Status        PaymentStatus
	BookingID     string // set for the booking flow
	RideID        string // set for the direct ride flow
	InvoiceURL    string
	GatewayData   json.RawMessage // raw validation record from the gateway
	CreatedAt     time.Time
}

// Target resolves the payment's tagged target from its links.
func (p *Payment) Target() PaymentTarget {
	if p.BookingID != "" {
		return BookingTarget(p.BookingID)
	}
	return RideTarget(p.RideID)
}
