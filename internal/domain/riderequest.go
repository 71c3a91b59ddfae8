package domain

import "time"

// RideRequestStatus represents the lifecycle state of an on-demand ride
// request.
type RideRequestStatus string

const (
	RideRequestRequested RideRequestStatus = "REQUESTED"
	RideRequestAccepted  RideRequestStatus = "ACCEPTED"
	RideRequestPickedUp  RideRequestStatus = "PICKED_UP"
	RideRequestInTransit RideRequestStatus = "IN_TRANSIT"
	RideRequestCompleted RideRequestStatus = "COMPLETED"
	RideRequestCancelled RideRequestStatus = "CANCELLED"
)

// validRequestTransitions is the allow-list of legal status transitions.
// Everything not listed here is rejected.
var validRequestTransitions = map[RideRequestStatus][]RideRequestStatus{
	RideRequestRequested: {RideRequestAccepted, RideRequestCancelled},
	RideRequestAccepted:  {RideRequestPickedUp, RideRequestCancelled},
	RideRequestPickedUp:  {RideRequestInTransit, RideRequestCancelled},
	RideRequestInTransit: {RideRequestCompleted},
	RideRequestCompleted: {},
	RideRequestCancelled: {},
}

// CanTransitionTo reports whether the transition from s to target is legal.
func (s RideRequestStatus) CanTransitionTo(target RideRequestStatus) bool {
	for _, next := range validRequestTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s RideRequestStatus) Terminal() bool {
	return s == RideRequestCompleted || s == RideRequestCancelled
}

// Valid reports whether the status is a known lifecycle state.
func (s RideRequestStatus) Valid() bool {
	_, ok := validRequestTransitions[s]
	return ok
}

// ActiveRequestStatuses are the non-terminal states. A rider or driver may
// hold at most one request in any of these states at a time.
var ActiveRequestStatuses = []RideRequestStatus{
	RideRequestRequested,
	RideRequestAccepted,
	RideRequestPickedUp,
	RideRequestInTransit,
}

// CancelActor identifies who cancelled a ride request.
type CancelActor string

const (
	CancelledByRider  CancelActor = "rider"
	CancelledByDriver CancelActor = "driver"
	CancelledByAdmin  CancelActor = "admin"
)

// Location is a pickup or dropoff point.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// RideRequest represents an on-demand point-to-point trip matched to exactly
// one driver. Requests are never physically deleted.
type RideRequest struct {
	ID          string
	RiderID     string
	DriverID    string // empty until a driver accepts or is assigned
	Pickup      Location
	Dropoff     Location
	VehicleType VehicleType
	Fare        float64
	Status      RideRequestStatus

	RequestedAt time.Time
	AcceptedAt  time.Time
	PickedUpAt  time.Time
	CompletedAt time.Time
	CancelledAt time.Time

	CancelledBy        CancelActor
	CancellationReason string
}
