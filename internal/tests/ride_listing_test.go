package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"ridebook/internal/domain"
	"ridebook/internal/service"
)

// ──────────────────────────────────────────────
// PUBLISHED RIDE LISTINGS
// ──────────────────────────────────────────────

type rideFixture struct {
	service    *service.RideService
	rideRepo   *MockRideRepository
	driverRepo *MockDriverRepository
	locks      *MockLockStore
}

func newRideFixture() *rideFixture {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	locks := NewMockLockStore()
	return &rideFixture{
		service:    service.NewRideService(rideRepo, driverRepo, locks, newTestLogger()),
		rideRepo:   rideRepo,
		driverRepo: driverRepo,
		locks:      locks,
	}
}

func listingParams(title string) service.CreateRideParams {
	return service.CreateRideParams{
		Title:          title,
		PickUpAddress:  "Dhaka",
		DropOffAddress: "Chittagong",
		Cost:           500,
		AvailableSeats: 4,
		MaxGuests:      4,
		Vehicle:        domain.VehicleCar,
		UserID:         "user-owner",
	}
}

func TestCreateRide_SlugDerivedFromTitle(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	ride, err := f.service.Create(context.Background(), listingParams("Dhaka Tour"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Slug != "dhaka-tour-ride" {
		t.Errorf("slug = %q, want dhaka-tour-ride", ride.Slug)
	}
	if ride.Status != domain.RideStatusActive {
		t.Errorf("status = %s, want Active", ride.Status)
	}
}

func TestCreateRide_SlugCollisionProbesSuffixes(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	first, err := f.service.Create(context.Background(), listingParams("Dhaka Tour"))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// A different title that slugifies to the same base.
	second, err := f.service.Create(context.Background(), listingParams("Dhaka  Tour!!"))
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.Slug != "dhaka-tour-ride" {
		t.Errorf("first slug = %q, want dhaka-tour-ride", first.Slug)
	}
	if second.Slug != "dhaka-tour-ride-0" {
		t.Errorf("second slug = %q, want dhaka-tour-ride-0", second.Slug)
	}

	third, err := f.service.Create(context.Background(), listingParams("dhaka tour"))
	if err != nil {
		t.Fatalf("third create failed: %v", err)
	}
	if third.Slug != "dhaka-tour-ride-1" {
		t.Errorf("third slug = %q, want dhaka-tour-ride-1", third.Slug)
	}
}

func TestCreateRide_DuplicateTitleRejected(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	if _, err := f.service.Create(context.Background(), listingParams("Coastal Run")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := f.service.Create(context.Background(), listingParams("Coastal Run")); !errors.Is(err, service.ErrTitleTaken) {
		t.Errorf("err = %v, want ErrTitleTaken", err)
	}
}

func TestAcceptByDriver_ConcurrentExactlyOneWins(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	f.rideRepo.AddRide(&domain.Ride{
		ID:      "ride-1",
		Title:   "Dhaka Tour",
		Slug:    "dhaka-tour-ride",
		Vehicle: domain.VehicleCar,
		Status:  domain.RideStatusActive,
		UserID:  "user-owner",
	})

	const drivers = 4
	for i := 0; i < drivers; i++ {
		f.driverRepo.AddDriver(approvedDriver(
			"drv-"+string(rune('a'+i)),
			"user-"+string(rune('a'+i)),
			domain.VehicleCar,
		))
	}

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.AcceptByDriver(context.Background(), "ride-1", "user-"+string(rune('a'+i)))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, service.ErrRideNotAvailable):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}

	stored := f.rideRepo.GetStored("ride-1")
	if stored.Status != domain.RideStatusAccepted {
		t.Errorf("status = %s, want Accepted", stored.Status)
	}
	if stored.DriverID == "" {
		t.Errorf("winning driver not recorded")
	}
}

func TestAcceptByDriver_Checks(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	f.rideRepo.AddRide(&domain.Ride{
		ID:      "ride-1",
		Title:   "Dhaka Tour",
		Vehicle: domain.VehicleCar,
		Status:  domain.RideStatusActive,
	})

	pending := approvedDriver("drv-p", "user-p", domain.VehicleCar)
	pending.Status = domain.DriverStatusPending
	f.driverRepo.AddDriver(pending)
	offline := approvedDriver("drv-o", "user-o", domain.VehicleCar)
	offline.IsOnline = false
	f.driverRepo.AddDriver(offline)
	f.driverRepo.AddDriver(approvedDriver("drv-b", "user-b", domain.VehicleBike))

	if _, err := f.service.AcceptByDriver(context.Background(), "ride-1", "user-p"); !errors.Is(err, service.ErrDriverNotApproved) {
		t.Errorf("pending driver: err = %v, want ErrDriverNotApproved", err)
	}
	if _, err := f.service.AcceptByDriver(context.Background(), "ride-1", "user-o"); !errors.Is(err, service.ErrDriverNotEligible) {
		t.Errorf("offline driver: err = %v, want ErrDriverNotEligible", err)
	}
	if _, err := f.service.AcceptByDriver(context.Background(), "ride-1", "user-b"); !errors.Is(err, service.ErrRideNotAvailable) {
		t.Errorf("vehicle mismatch: err = %v, want ErrRideNotAvailable", err)
	}
}

func TestDeclineByDriver_ExcludesListing(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	f.rideRepo.AddRide(&domain.Ride{
		ID:      "ride-1",
		Title:   "Dhaka Tour",
		Vehicle: domain.VehicleCar,
		Status:  domain.RideStatusActive,
	})
	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))

	if err := f.service.DeclineByDriver(context.Background(), "ride-1", "user-1"); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	available, _, err := f.service.AvailableForDriver(context.Background(), "user-1", 20, 0)
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	for _, r := range available {
		if r.ID == "ride-1" {
			t.Errorf("declined ride still offered")
		}
	}

	if _, err := f.service.AcceptByDriver(context.Background(), "ride-1", "user-1"); !errors.Is(err, service.ErrRideAlreadyDeclined) {
		t.Errorf("err = %v, want ErrRideAlreadyDeclined", err)
	}

	// Declining twice is harmless.
	if err := f.service.DeclineByDriver(context.Background(), "ride-1", "user-1"); err != nil {
		t.Errorf("second decline failed: %v", err)
	}
}

func TestAvailableForDriver_MatchesVehicleType(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	f.rideRepo.AddRide(&domain.Ride{
		ID: "ride-car", Title: "Car Trip", Vehicle: domain.VehicleCar, Status: domain.RideStatusActive,
	})
	f.rideRepo.AddRide(&domain.Ride{
		ID: "ride-bike", Title: "Bike Trip", Vehicle: domain.VehicleBike, Status: domain.RideStatusActive,
	})
	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleBike))

	available, total, err := f.service.AvailableForDriver(context.Background(), "user-1", 20, 0)
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	if len(available) != 1 || available[0].ID != "ride-bike" {
		t.Errorf("expected only the bike listing, got %d rides", len(available))
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestAvailableForDriver_RequiresOnlineDriver(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	f.rideRepo.AddRide(&domain.Ride{
		ID: "ride-1", Title: "Car Trip", Vehicle: domain.VehicleCar, Status: domain.RideStatusActive,
	})
	offline := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	offline.IsOnline = false
	f.driverRepo.AddDriver(offline)

	if _, _, err := f.service.AvailableForDriver(context.Background(), "user-1", 20, 0); !errors.Is(err, service.ErrDriverNotEligible) {
		t.Errorf("err = %v, want ErrDriverNotEligible", err)
	}
}

func TestUpdateRide_TitleChangeRegeneratesSlug(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	ride, err := f.service.Create(context.Background(), listingParams("Dhaka Tour"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.service.Update(context.Background(), service.UpdateRideParams{
		RideID: ride.ID,
		Title:  "Greater Dhaka Tour",
		Cost:   750,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != "greater-dhaka-tour-ride" {
		t.Errorf("slug = %q, want greater-dhaka-tour-ride", updated.Slug)
	}
	if updated.Title != "Greater Dhaka Tour" {
		t.Errorf("title not updated")
	}
	if updated.Cost != 750 {
		t.Errorf("cost = %v, want 750", updated.Cost)
	}

	// An update that omits the title leaves the slug alone.
	same, err := f.service.Update(context.Background(), service.UpdateRideParams{
		RideID: ride.ID,
		Cost:   800,
	})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if same.Slug != "greater-dhaka-tour-ride" {
		t.Errorf("slug = %q, want unchanged greater-dhaka-tour-ride", same.Slug)
	}
}

func TestUpdateRide_RegeneratedSlugProbesSuffixes(t *testing.T) {
	t.Parallel()
	f := newRideFixture()

	if _, err := f.service.Create(context.Background(), listingParams("Coastal Run")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	ride, err := f.service.Create(context.Background(), listingParams("Dhaka Tour"))
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	// The new title slugifies onto the occupied coastal-run base.
	updated, err := f.service.Update(context.Background(), service.UpdateRideParams{
		RideID: ride.ID,
		Title:  "Coastal Run!",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != "coastal-run-ride-0" {
		t.Errorf("slug = %q, want coastal-run-ride-0", updated.Slug)
	}
}
