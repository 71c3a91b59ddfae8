package fare

import (
	"math"

	"ridebook/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// roadFactor corrects the great-circle distance for the fact that roads
	// are not straight.
	roadFactor = 1.2

	// Currency for all fares.
	Currency = "BDT"
)

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLng := deg2rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// RoadDistanceKm is the haversine distance inflated by the road-distance
// correction factor and rounded to one decimal.
func RoadDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return math.Round(HaversineKm(lat1, lng1, lat2, lng2)*roadFactor*10) / 10
}

// requestRates are the flat per-vehicle rates for on-demand ride request
// estimation. This formula is intentionally separate from the scheduled-ride
// breakdown in Calculate; the two feed different flows.
var requestRates = map[domain.VehicleType]struct {
	Base  float64
	PerKm float64
}{
	domain.VehicleCar:  {Base: 50, PerKm: 25},
	domain.VehicleBike: {Base: 30, PerKm: 15},
}

// RequestFare estimates the fare for an on-demand ride request:
// base + perKm * distance, rounded to whole currency units. No surge, no
// fees. Callers pass the direct great-circle distance; the road-distance
// correction belongs to the scheduled breakdown only.
func RequestFare(distanceKm float64, vehicleType domain.VehicleType) float64 {
	rate, ok := requestRates[vehicleType]
	if !ok {
		rate = requestRates[domain.VehicleCar]
	}
	return math.Round(rate.Base + distanceKm*rate.PerKm)
}

// DefaultConfig returns the built-in fare configuration for a vehicle type,
// used when no override exists in the database.
func DefaultConfig(vehicleType domain.VehicleType) domain.FareConfig {
	switch vehicleType {
	case domain.VehicleBike:
		return domain.FareConfig{
			VehicleType:           domain.VehicleBike,
			BaseFare:              25,
			PerKmRate:             8,
			PerMinuteRate:         1,
			MinimumFare:           50,
			PlatformFeePercentage: 10,
			TaxPercentage:         5,
		}
	default:
		return domain.FareConfig{
			VehicleType:           domain.VehicleCar,
			BaseFare:              50,
			PerKmRate:             15,
			PerMinuteRate:         2,
			MinimumFare:           100,
			PlatformFeePercentage: 10,
			TaxPercentage:         5,
		}
	}
}

// Breakdown is the itemised result of a scheduled-ride fare estimate. All
// monetary components are rounded to whole currency units.
type Breakdown struct {
	BaseFare                 float64 `json:"base_fare"`
	DistanceFare             float64 `json:"distance_fare"`
	TimeFare                 float64 `json:"time_fare"`
	SurgePricing             float64 `json:"surge_pricing"`
	SurgeMultiplier          float64 `json:"surge_multiplier"`
	PlatformFee              float64 `json:"platform_fee"`
	Tax                      float64 `json:"tax"`
	TotalFare                float64 `json:"total_fare"`
	Currency                 string  `json:"currency"`
	EstimatedDistanceKm      float64 `json:"estimated_distance_km"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	VehicleType              string  `json:"vehicle_type"`
}

// Calculate produces the full fare breakdown for a scheduled ride. It is
// pure: distance, duration and surge are inputs, not side effects.
func Calculate(cfg domain.FareConfig, distanceKm float64, durationMinutes int, surgeMultiplier float64) Breakdown {
	baseFare := cfg.BaseFare
	distanceFare := distanceKm * cfg.PerKmRate
	timeFare := float64(durationMinutes) * cfg.PerMinuteRate

	subtotal := baseFare + distanceFare + timeFare

	surgePricing := subtotal * (surgeMultiplier - 1)
	fareAfterSurge := subtotal + surgePricing

	platformFee := fareAfterSurge * cfg.PlatformFeePercentage / 100
	tax := (fareAfterSurge + platformFee) * cfg.TaxPercentage / 100

	totalFare := fareAfterSurge + platformFee + tax
	totalFare = math.Max(totalFare, cfg.MinimumFare)

	return Breakdown{
		BaseFare:                 math.Round(baseFare),
		DistanceFare:             math.Round(distanceFare),
		TimeFare:                 math.Round(timeFare),
		SurgePricing:             math.Round(surgePricing),
		SurgeMultiplier:          surgeMultiplier,
		PlatformFee:              math.Round(platformFee),
		Tax:                      math.Round(tax),
		TotalFare:                math.Round(totalFare),
		Currency:                 Currency,
		EstimatedDistanceKm:      distanceKm,
		EstimatedDurationMinutes: durationMinutes,
		VehicleType:              string(cfg.VehicleType),
	}
}
