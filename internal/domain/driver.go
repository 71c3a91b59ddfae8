package domain

import "time"

// VehicleType represents the vehicle category a driver operates.
type VehicleType string

const (
	VehicleCar  VehicleType = "Car"
	VehicleBike VehicleType = "Bike"
)

// Valid reports whether the vehicle type is a known category.
func (v VehicleType) Valid() bool {
	return v == VehicleCar || v == VehicleBike
}

// DriverStatus represents the approval state of a driver profile.
type DriverStatus string

const (
	DriverStatusPending   DriverStatus = "pending"
	DriverStatusApproved  DriverStatus = "approved"
	DriverStatusRejected  DriverStatus = "rejected"
	DriverStatusSuspended DriverStatus = "suspended"
)

// Driver represents a driver profile owned by a User.
type Driver struct {
	ID                  string
	UserID              string
	VehicleType         VehicleType
	VehicleModel        string
	VehiclePlateNumber  string
	DrivingLicense      string
	Status              DriverStatus
	IsOnline            bool
	IsActive            bool
	Rating              float64
	TotalCompletedRides int
	Earnings            float64
	CreatedAt           time.Time
}

// Eligible reports whether the driver may accept or be offered rides.
// Only approved drivers that are currently online are dispatchable.
func (d *Driver) Eligible() bool {
	return d.Status == DriverStatusApproved && d.IsOnline
}
