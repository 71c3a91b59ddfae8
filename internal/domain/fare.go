package domain

// FareConfig holds the tunable pricing parameters for one vehicle type.
// Configs live in the database with code defaults used on a miss.
type FareConfig struct {
	VehicleType           VehicleType
	BaseFare              float64
	PerKmRate             float64
	PerMinuteRate         float64
	MinimumFare           float64
	PlatformFeePercentage float64
	TaxPercentage         float64
}
