package fare

import (
	"testing"
	"time"

	"ridebook/internal/domain"
)

// Uttara to Mohammadpur, a route with a known road distance.
const (
	uttaraLat      = 23.8103
	uttaraLng      = 90.4125
	mohammadpurLat = 23.7809
	mohammadpurLng = 90.2792
)

func TestRoadDistanceKm(t *testing.T) {
	t.Parallel()

	got := RoadDistanceKm(uttaraLat, uttaraLng, mohammadpurLat, mohammadpurLng)
	if got != 16.7 {
		t.Errorf("RoadDistanceKm = %v, want 16.7", got)
	}

	if got := RoadDistanceKm(uttaraLat, uttaraLng, uttaraLat, uttaraLng); got != 0 {
		t.Errorf("zero-length route = %v, want 0", got)
	}
}

func TestHaversineKm_CarriesNoRoadFactor(t *testing.T) {
	t.Parallel()

	got := HaversineKm(uttaraLat, uttaraLng, mohammadpurLat, mohammadpurLng)
	if got < 13.94 || got > 13.96 {
		t.Errorf("HaversineKm = %v, want ~13.95", got)
	}

	road := RoadDistanceKm(uttaraLat, uttaraLng, mohammadpurLat, mohammadpurLng)
	if road <= got {
		t.Errorf("road distance %v not above great-circle %v", road, got)
	}
}

func TestRequestFare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		distanceKm float64
		vehicle    domain.VehicleType
		want       float64
	}{
		{"car base only", 0, domain.VehicleCar, 50},
		{"car 10km", 10, domain.VehicleCar, 300},
		{"bike 10km", 10, domain.VehicleBike, 180},
		{"car half unit rounds up", 16.7, domain.VehicleCar, 468},
		{"bike half unit rounds up", 16.7, domain.VehicleBike, 281},
		{"car dhaka great-circle", 13.950693578328591, domain.VehicleCar, 399},
		{"bike dhaka great-circle", 13.950693578328591, domain.VehicleBike, 239},
		{"unknown vehicle uses car rates", 10, "Truck", 300},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequestFare(tc.distanceKm, tc.vehicle); got != tc.want {
				t.Errorf("RequestFare(%v, %s) = %v, want %v", tc.distanceKm, tc.vehicle, got, tc.want)
			}
		})
	}
}

func TestCalculate_Breakdown(t *testing.T) {
	t.Parallel()

	carCfg := DefaultConfig(domain.VehicleCar)

	t.Run("no surge", func(t *testing.T) {
		b := Calculate(carCfg, 10, 20, 1.0)
		// subtotal 50 + 150 + 40 = 240; fee 24; tax 13.2.
		if b.BaseFare != 50 || b.DistanceFare != 150 || b.TimeFare != 40 {
			t.Errorf("components = %v/%v/%v", b.BaseFare, b.DistanceFare, b.TimeFare)
		}
		if b.SurgePricing != 0 {
			t.Errorf("surge pricing = %v, want 0", b.SurgePricing)
		}
		if b.PlatformFee != 24 {
			t.Errorf("platform fee = %v, want 24", b.PlatformFee)
		}
		if b.Tax != 13 {
			t.Errorf("tax = %v, want 13", b.Tax)
		}
		if b.TotalFare != 277 {
			t.Errorf("total = %v, want 277", b.TotalFare)
		}
		if b.Currency != "BDT" {
			t.Errorf("currency = %q, want BDT", b.Currency)
		}
	})

	t.Run("surge on the subtotal", func(t *testing.T) {
		b := Calculate(carCfg, 10, 20, 1.5)
		// surge 120 on subtotal 240; fee 36; tax 19.8.
		if b.SurgePricing != 120 {
			t.Errorf("surge pricing = %v, want 120", b.SurgePricing)
		}
		if b.PlatformFee != 36 {
			t.Errorf("platform fee = %v, want 36", b.PlatformFee)
		}
		if b.Tax != 20 {
			t.Errorf("tax = %v, want 20", b.Tax)
		}
		if b.TotalFare != 416 {
			t.Errorf("total = %v, want 416", b.TotalFare)
		}
	})

	t.Run("minimum fare floor", func(t *testing.T) {
		b := Calculate(DefaultConfig(domain.VehicleBike), 0.5, 2, 1.0)
		if b.TotalFare != 50 {
			t.Errorf("total = %v, want the 50 minimum", b.TotalFare)
		}
	})
}

func TestSurgeMultiplier(t *testing.T) {
	t.Parallel()

	offPeak := time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC)
	morningPeak := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	peak := DefaultPeakHours()

	cases := []struct {
		name    string
		demand  int
		at      time.Time
		want    float64
	}{
		{"quiet", 10, offPeak, 1.0},
		{"at moderate threshold", 15, offPeak, 1.0},
		{"moderate", 16, offPeak, 1.25},
		{"high", 31, offPeak, 1.5},
		{"peak demand", 51, offPeak, 2.0},
		{"quiet at rush hour", 10, morningPeak, 1.2},
		{"moderate at rush hour", 16, morningPeak, 1.5},
		{"peak demand capped at rush hour", 51, morningPeak, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SurgeMultiplier(tc.demand, tc.at, peak); got != tc.want {
				t.Errorf("SurgeMultiplier(%d) = %v, want %v", tc.demand, got, tc.want)
			}
		})
	}
}

func TestEstimateTravelMinutes(t *testing.T) {
	t.Parallel()

	offPeak := time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC)
	eveningPeak := time.Date(2026, 8, 28, 18, 30, 0, 0, time.UTC)
	peak := DefaultPeakHours()

	cases := []struct {
		name       string
		distanceKm float64
		vehicle    domain.VehicleType
		at         time.Time
		want       int
	}{
		{"car normal traffic", 30, domain.VehicleCar, offPeak, 60},
		{"car rush hour halves the speed", 30, domain.VehicleCar, eveningPeak, 120},
		{"bike normal traffic", 25, domain.VehicleBike, offPeak, 60},
		{"bike rush hour", 20, domain.VehicleBike, eveningPeak, 60},
		{"unknown vehicle uses car speeds", 30, "Truck", offPeak, 60},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateTravelMinutes(tc.distanceKm, tc.vehicle, tc.at, peak); got != tc.want {
				t.Errorf("EstimateTravelMinutes(%v, %s) = %d, want %d", tc.distanceKm, tc.vehicle, got, tc.want)
			}
		})
	}
}

func TestPeakHours_Contains(t *testing.T) {
	t.Parallel()

	peak := DefaultPeakHours()
	day := func(hour int) time.Time {
		return time.Date(2026, 8, 28, hour, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		hour int
		want bool
	}{
		{6, false},
		{7, true},
		{9, true},
		{10, false},
		{13, false},
		{17, true},
		{20, true},
		{21, false},
	}

	for _, tc := range cases {
		if got := peak.Contains(day(tc.hour)); got != tc.want {
			t.Errorf("Contains(%02d:00) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}
