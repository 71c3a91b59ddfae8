package fare

import (
	"math"
	"time"

	"ridebook/internal/domain"
)

// Demand thresholds: active requests for a vehicle type in the demand window
// mapped to a surge multiplier.
const (
	lowDemandMultiplier      = 1.0
	moderateDemandMultiplier = 1.25
	highDemandMultiplier     = 1.5
	peakDemandMultiplier     = 2.0

	moderateDemandThreshold = 15
	highDemandThreshold     = 30
	peakDemandThreshold     = 50

	peakHourFactor = 1.2
)

// DemandWindow is how far back active requests are counted for surge.
const DemandWindow = 30 * time.Minute

// PeakHours defines the daily windows (24h clock, [start, end)) during which
// an extra surge factor applies and travel is slower.
type PeakHours struct {
	MorningStart int
	MorningEnd   int
	EveningStart int
	EveningEnd   int
}

// DefaultPeakHours returns the standard commute windows.
func DefaultPeakHours() PeakHours {
	return PeakHours{MorningStart: 7, MorningEnd: 10, EveningStart: 17, EveningEnd: 21}
}

// Contains reports whether t falls inside a peak window.
func (p PeakHours) Contains(t time.Time) bool {
	h := t.Hour()
	return (h >= p.MorningStart && h < p.MorningEnd) ||
		(h >= p.EveningStart && h < p.EveningEnd)
}

// SurgeMultiplier maps the active-request count for a vehicle type to a
// multiplier, applying the peak-hour factor capped at the maximum surge.
// Rounded to two decimals.
func SurgeMultiplier(activeRequests int, now time.Time, peak PeakHours) float64 {
	multiplier := lowDemandMultiplier
	switch {
	case activeRequests > peakDemandThreshold:
		multiplier = peakDemandMultiplier
	case activeRequests > highDemandThreshold:
		multiplier = highDemandMultiplier
	case activeRequests > moderateDemandThreshold:
		multiplier = moderateDemandMultiplier
	}

	if peak.Contains(now) {
		multiplier = math.Min(multiplier*peakHourFactor, peakDemandMultiplier)
	}

	return math.Round(multiplier*100) / 100
}

// averageSpeedsKmh per vehicle type, normal vs peak traffic.
var averageSpeedsKmh = map[domain.VehicleType]struct {
	Normal float64
	Peak   float64
}{
	domain.VehicleCar:  {Normal: 30, Peak: 15},
	domain.VehicleBike: {Normal: 25, Peak: 20},
}

// EstimateTravelMinutes estimates trip duration from distance and the
// vehicle's average speed for the time of day.
func EstimateTravelMinutes(distanceKm float64, vehicleType domain.VehicleType, now time.Time, peak PeakHours) int {
	speeds, ok := averageSpeedsKmh[vehicleType]
	if !ok {
		speeds = averageSpeedsKmh[domain.VehicleCar]
	}
	speed := speeds.Normal
	if peak.Contains(now) {
		speed = speeds.Peak
	}
	return int(math.Round(distanceKm / speed * 60))
}
