package domain

import "time"

// RideStatus represents the state of a published ride listing.
type RideStatus string

const (
	RideStatusActive    RideStatus = "Active"
	RideStatusAccepted  RideStatus = "Accepted"
	RideStatusCompleted RideStatus = "Completed"
	RideStatusCancelled RideStatus = "Cancelled"
)

// Ride is a published trip listing with fixed seats and cost, bookable by
// multiple riders. It is distinct from the on-demand RideRequest.
type Ride struct {
	ID             string
	Title          string
	Slug           string
	Description    string
	Images         []string
	PickUpAddress  string
	DropOffAddress string
	DivisionID     string
	DistrictID     string
	RideTypeID     string
	Cost           float64
	AvailableSeats int
	MaxGuests      int
	Vehicle        VehicleType
	DriverID       string // empty until a driver accepts the listing
	// DeclinedDrivers holds ids of drivers who passed on this ride so it is
	// never re-offered to them.
	DeclinedDrivers []string
	UserID          string
	Status          RideStatus
	CreatedAt       time.Time
}

// DeclinedBy reports whether the given driver has already declined the ride.
func (r *Ride) DeclinedBy(driverID string) bool {
	for _, id := range r.DeclinedDrivers {
		if id == driverID {
			return true
		}
	}
	return false
}

// RideType categorises listings by vehicle and place kind.
type RideType struct {
	ID          string
	RideVehicle VehicleType
	PlaceType   string
	TotalGuest  int
}
