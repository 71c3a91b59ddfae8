package tests

import (
	"context"
	"testing"

	"ridebook/internal/domain"
	"ridebook/internal/fare"
	"ridebook/internal/service"
)

// ──────────────────────────────────────────────
// FARE CONFIGURATION
// ──────────────────────────────────────────────

type fareFixture struct {
	service    *service.FareService
	configRepo *MockFareConfigRepository
	cache      *MockCacheStore
}

func newFareFixture() *fareFixture {
	configRepo := NewMockFareConfigRepository()
	cache := NewMockCacheStore()
	return &fareFixture{
		service: service.NewFareService(
			configRepo, NewMockRideRequestRepository(), cache,
			fare.DefaultPeakHours(), newTestLogger(),
		),
		configRepo: configRepo,
		cache:      cache,
	}
}

func TestConfig_FallsBackToDefaults(t *testing.T) {
	t.Parallel()
	f := newFareFixture()

	cfg, err := f.service.Config(context.Background(), domain.VehicleBike)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := fare.DefaultConfig(domain.VehicleBike)
	if *cfg != want {
		t.Errorf("config = %+v, want built-in defaults %+v", cfg, want)
	}
}

func TestUpdateConfig_InvalidatesCache(t *testing.T) {
	t.Parallel()
	f := newFareFixture()

	first := fare.DefaultConfig(domain.VehicleCar)
	first.PerKmRate = 18
	if err := f.service.UpdateConfig(context.Background(), &first); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Read once so the config lands in the cache.
	cfg, err := f.service.Config(context.Background(), domain.VehicleCar)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.PerKmRate != 18 {
		t.Fatalf("per-km rate = %v, want 18", cfg.PerKmRate)
	}

	second := first
	second.PerKmRate = 22
	if err := f.service.UpdateConfig(context.Background(), &second); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	cfg, err = f.service.Config(context.Background(), domain.VehicleCar)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.PerKmRate != 22 {
		t.Errorf("per-km rate = %v, want 22 after cache invalidation", cfg.PerKmRate)
	}
}

func TestUpdateConfig_RejectsUnknownVehicleType(t *testing.T) {
	t.Parallel()
	f := newFareFixture()

	cfg := fare.DefaultConfig(domain.VehicleCar)
	cfg.VehicleType = "Truck"
	if err := f.service.UpdateConfig(context.Background(), &cfg); err != service.ErrInvalidVehicleType {
		t.Errorf("err = %v, want ErrInvalidVehicleType", err)
	}
}

func TestSeed_InstallsDefaultsAndPreservesOverrides(t *testing.T) {
	t.Parallel()
	f := newFareFixture()

	custom := fare.DefaultConfig(domain.VehicleCar)
	custom.BaseFare = 80
	if err := f.configRepo.Upsert(context.Background(), &custom); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := f.service.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	configs, err := f.service.Configs(context.Background())
	if err != nil {
		t.Fatalf("configs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("configs = %d, want 2", len(configs))
	}

	car, _ := f.configRepo.GetByVehicleType(context.Background(), domain.VehicleCar)
	if car.BaseFare != 80 {
		t.Errorf("seed overwrote the custom car config: base fare = %v", car.BaseFare)
	}
	bike, _ := f.configRepo.GetByVehicleType(context.Background(), domain.VehicleBike)
	if *bike != fare.DefaultConfig(domain.VehicleBike) {
		t.Errorf("bike config = %+v, want defaults", bike)
	}

	// Running it again changes nothing.
	if err := f.service.Seed(context.Background()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	configs, _ = f.service.Configs(context.Background())
	if len(configs) != 2 {
		t.Errorf("configs after reseed = %d, want 2", len(configs))
	}
}
