package tests

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ridebook/internal/domain"
	"ridebook/internal/service"
)

// ──────────────────────────────────────────────
// RIDE REQUEST LIFECYCLE
// ──────────────────────────────────────────────

type requestFixture struct {
	service     *service.RideRequestService
	requestRepo *MockRideRequestRepository
	driverRepo  *MockDriverRepository
	locks       *MockLockStore
	notifier    *RecordingNotifier
	txRunner    *MockTxRunner
}

func newRequestFixture() *requestFixture {
	requestRepo := NewMockRideRequestRepository()
	driverRepo := NewMockDriverRepository()
	locks := NewMockLockStore()
	cache := NewMockCacheStore()
	notifier := NewRecordingNotifier()
	txRunner := &MockTxRunner{Tx: &MockTx{
		DriverRepo:  driverRepo,
		RequestRepo: requestRepo,
	}}

	svc := service.NewRideRequestService(
		requestRepo,
		driverRepo,
		txRunner,
		locks,
		cache,
		service.NewNotificationService(notifier),
		newTestLogger(),
	)

	return &requestFixture{
		service:     svc,
		requestRepo: requestRepo,
		driverRepo:  driverRepo,
		locks:       locks,
		notifier:    notifier,
		txRunner:    txRunner,
	}
}

func approvedDriver(id, userID string, vehicle domain.VehicleType) *domain.Driver {
	return &domain.Driver{
		ID:          id,
		UserID:      userID,
		VehicleType: vehicle,
		Status:      domain.DriverStatusApproved,
		IsOnline:    true,
		IsActive:    true,
	}
}

var (
	dhakaPickup  = domain.Location{Address: "Uttara, Dhaka", Lat: 23.8103, Lng: 90.4125}
	dhakaDropoff = domain.Location{Address: "Mohammadpur, Dhaka", Lat: 23.7809, Lng: 90.2792}
)

func TestRequestRide_CreatesRequestedWithLockedFare(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	req, err := f.service.RequestRide(context.Background(), service.RequestRideParams{
		RiderID:     "rider-1",
		Pickup:      dhakaPickup,
		Dropoff:     dhakaDropoff,
		VehicleType: domain.VehicleCar,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Status != domain.RideRequestRequested {
		t.Errorf("status = %s, want REQUESTED", req.Status)
	}
	// 13.95 km great-circle; 50 base + 13.95 * 25 per km = 398.77,
	// rounded to 399. The flat quote carries no road-factor correction.
	if req.Fare != 399 {
		t.Errorf("fare = %v, want 399", req.Fare)
	}
	if req.DriverID != "" {
		t.Errorf("new request must not carry a driver")
	}
	if req.RequestedAt.IsZero() {
		t.Errorf("requested_at not set")
	}
}

func TestRequestRide_RejectsSecondActiveRequest(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	params := service.RequestRideParams{
		RiderID:     "rider-1",
		Pickup:      dhakaPickup,
		Dropoff:     dhakaDropoff,
		VehicleType: domain.VehicleCar,
	}
	if _, err := f.service.RequestRide(context.Background(), params); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	if _, err := f.service.RequestRide(context.Background(), params); !errors.Is(err, service.ErrRiderHasActiveRequest) {
		t.Errorf("second request: err = %v, want ErrRiderHasActiveRequest", err)
	}
}

func TestRequestRide_ValidatesInput(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	cases := []struct {
		name    string
		params  service.RequestRideParams
		wantErr error
	}{
		{
			name: "missing rider",
			params: service.RequestRideParams{
				Pickup: dhakaPickup, Dropoff: dhakaDropoff, VehicleType: domain.VehicleCar,
			},
			wantErr: service.ErrInvalidRiderID,
		},
		{
			name: "unknown vehicle type",
			params: service.RequestRideParams{
				RiderID: "rider-1", Pickup: dhakaPickup, Dropoff: dhakaDropoff, VehicleType: "Truck",
			},
			wantErr: service.ErrInvalidVehicleType,
		},
		{
			name: "latitude out of range",
			params: service.RequestRideParams{
				RiderID:     "rider-1",
				Pickup:      domain.Location{Address: "nowhere", Lat: 95, Lng: 0},
				Dropoff:     dhakaDropoff,
				VehicleType: domain.VehicleCar,
			},
			wantErr: service.ErrInvalidLocation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.RequestRide(context.Background(), tc.params); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEstimateFare_Deterministic(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	fareAmount, distanceKm, err := f.service.EstimateFare(dhakaPickup, dhakaDropoff, domain.VehicleCar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(distanceKm-13.95) > 0.01 {
		t.Errorf("distance = %v, want ~13.95 great-circle km", distanceKm)
	}
	if fareAmount != 399 {
		t.Errorf("fare = %v, want 399", fareAmount)
	}

	bikeFare, _, err := f.service.EstimateFare(dhakaPickup, dhakaDropoff, domain.VehicleBike)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bikeFare != 239 {
		t.Errorf("bike fare = %v, want 239", bikeFare)
	}
}

func TestAcceptRide_ConcurrentDriversExactlyOneWins(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	req := &domain.RideRequest{
		ID:          "req-1",
		RiderID:     "rider-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestRequested,
		RequestedAt: time.Now(),
	}
	f.requestRepo.AddRequest(req)

	const drivers = 5
	for i := 0; i < drivers; i++ {
		f.driverRepo.AddDriver(approvedDriver(
			"drv-"+string(rune('a'+i)),
			"user-"+string(rune('a'+i)),
			domain.VehicleCar,
		))
	}

	var wins, losses int32
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.AcceptRide(context.Background(), "req-1", "user-"+string(rune('a'+i)))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, service.ErrRequestNotAvailable):
				atomic.AddInt32(&losses, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
	if losses != drivers-1 {
		t.Errorf("losses = %d, want %d", losses, drivers-1)
	}

	stored := f.requestRepo.GetStored("req-1")
	if stored.Status != domain.RideRequestAccepted {
		t.Errorf("status = %s, want ACCEPTED", stored.Status)
	}
	if stored.DriverID == "" {
		t.Errorf("winning driver not recorded")
	}
}

func TestAcceptRide_IneligibleDriverRejected(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestRequested,
	})

	offline := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	offline.IsOnline = false
	f.driverRepo.AddDriver(offline)

	pending := approvedDriver("drv-2", "user-2", domain.VehicleCar)
	pending.Status = domain.DriverStatusPending
	f.driverRepo.AddDriver(pending)

	if _, err := f.service.AcceptRide(context.Background(), "req-1", "user-1"); !errors.Is(err, service.ErrDriverNotEligible) {
		t.Errorf("offline driver: err = %v, want ErrDriverNotEligible", err)
	}
	if _, err := f.service.AcceptRide(context.Background(), "req-1", "user-2"); !errors.Is(err, service.ErrDriverNotEligible) {
		t.Errorf("pending driver: err = %v, want ErrDriverNotEligible", err)
	}
}

func TestAcceptRide_VehicleTypeMustMatch(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1",
		VehicleType: domain.VehicleBike,
		Status:      domain.RideRequestRequested,
	})
	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))

	if _, err := f.service.AcceptRide(context.Background(), "req-1", "user-1"); !errors.Is(err, service.ErrRequestNotAvailable) {
		t.Errorf("err = %v, want ErrRequestNotAvailable", err)
	}
}

func TestAcceptRide_DriverWithActiveRequestRejected(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-busy", RiderID: "rider-9", DriverID: "drv-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestPickedUp,
	})
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-open", RiderID: "rider-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestRequested,
	})

	if _, err := f.service.AcceptRide(context.Background(), "req-open", "user-1"); !errors.Is(err, service.ErrDriverHasActiveRequest) {
		t.Errorf("err = %v, want ErrDriverHasActiveRequest", err)
	}
}

func TestUpdateStatus_TransitionMatrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    domain.RideRequestStatus
		to      domain.RideRequestStatus
		wantErr bool
	}{
		{domain.RideRequestAccepted, domain.RideRequestPickedUp, false},
		{domain.RideRequestAccepted, domain.RideRequestInTransit, true},
		{domain.RideRequestAccepted, domain.RideRequestCompleted, true},
		{domain.RideRequestPickedUp, domain.RideRequestInTransit, false},
		{domain.RideRequestPickedUp, domain.RideRequestCompleted, true},
		{domain.RideRequestInTransit, domain.RideRequestCompleted, false},
		{domain.RideRequestInTransit, domain.RideRequestPickedUp, true},
		{domain.RideRequestRequested, domain.RideRequestPickedUp, true},
		{domain.RideRequestCompleted, domain.RideRequestPickedUp, true},
		{domain.RideRequestCancelled, domain.RideRequestPickedUp, true},
		// Direct jumps to REQUESTED or CANCELLED are never allowed here.
		{domain.RideRequestAccepted, domain.RideRequestRequested, true},
		{domain.RideRequestAccepted, domain.RideRequestCancelled, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			f := newRequestFixture()
			f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
			f.requestRepo.AddRequest(&domain.RideRequest{
				ID: "req-1", RiderID: "rider-1", DriverID: "drv-1",
				VehicleType: domain.VehicleCar,
				Status:      tc.from,
			})

			_, err := f.service.UpdateStatus(context.Background(), "req-1", "user-1", tc.to)
			if tc.wantErr {
				if !errors.Is(err, service.ErrInvalidTransition) {
					t.Errorf("err = %v, want ErrInvalidTransition", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateStatus_OnlyAssignedDriver(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
	f.driverRepo.AddDriver(approvedDriver("drv-2", "user-2", domain.VehicleCar))
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1", DriverID: "drv-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestAccepted,
	})

	if _, err := f.service.UpdateStatus(context.Background(), "req-1", "user-2", domain.RideRequestPickedUp); !errors.Is(err, service.ErrDriverNotAssigned) {
		t.Errorf("err = %v, want ErrDriverNotAssigned", err)
	}
}

func TestCompleteRide_CreditsDriverAtomically(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	driver := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	driver.Earnings = 100
	driver.TotalCompletedRides = 3
	f.driverRepo.AddDriver(driver)

	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1", DriverID: "drv-1",
		VehicleType: domain.VehicleCar,
		Fare:        468,
		Status:      domain.RideRequestInTransit,
	})

	req, err := f.service.UpdateStatus(context.Background(), "req-1", "user-1", domain.RideRequestCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.CompletedAt.IsZero() {
		t.Errorf("completed_at not set")
	}

	if f.txRunner.CallCount != 1 {
		t.Errorf("transaction runs = %d, want 1", f.txRunner.CallCount)
	}

	updated, _ := f.driverRepo.GetByID(context.Background(), "drv-1")
	if updated.TotalCompletedRides != 4 {
		t.Errorf("completed rides = %d, want 4", updated.TotalCompletedRides)
	}
	if updated.Earnings != 568 {
		t.Errorf("earnings = %v, want 568", updated.Earnings)
	}

	if f.notifier.SentCount(service.NotificationRideCompleted) != 1 {
		t.Errorf("expected a completion notification")
	}
}

func TestCancelRide_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  domain.RideRequestStatus
		actor   domain.CancelActor
		actorID string
		wantErr error
	}{
		{"rider cancels own requested", domain.RideRequestRequested, domain.CancelledByRider, "rider-1", nil},
		{"rider cancels own accepted", domain.RideRequestAccepted, domain.CancelledByRider, "rider-1", nil},
		{"rider cancels picked up", domain.RideRequestPickedUp, domain.CancelledByRider, "rider-1", nil},
		{"stranger cannot cancel", domain.RideRequestRequested, domain.CancelledByRider, "rider-2", service.ErrNotRequestOwner},
		{"driver cancels assigned", domain.RideRequestAccepted, domain.CancelledByDriver, "user-1", nil},
		{"admin cancels any", domain.RideRequestPickedUp, domain.CancelledByAdmin, "admin-1", nil},
		{"in transit cannot cancel", domain.RideRequestInTransit, domain.CancelledByAdmin, "admin-1", service.ErrCancelNotAllowed},
		{"completed cannot cancel", domain.RideRequestCompleted, domain.CancelledByRider, "rider-1", service.ErrCancelNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRequestFixture()
			f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
			f.requestRepo.AddRequest(&domain.RideRequest{
				ID: "req-1", RiderID: "rider-1", DriverID: "drv-1",
				VehicleType: domain.VehicleCar,
				Status:      tc.status,
			})

			req, err := f.service.CancelRide(context.Background(), service.CancelRideParams{
				RequestID: "req-1",
				ActorID:   tc.actorID,
				Actor:     tc.actor,
				Reason:    "changed plans",
			})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Status != domain.RideRequestCancelled {
				t.Errorf("status = %s, want CANCELLED", req.Status)
			}
			if req.CancelledBy != tc.actor {
				t.Errorf("cancelled_by = %s, want %s", req.CancelledBy, tc.actor)
			}
			if req.CancelledAt.IsZero() {
				t.Errorf("cancelled_at not set")
			}
		})
	}
}

func TestAssignDriver_LockHeldRejected(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestRequested,
	})

	if ok, _ := f.locks.AcquireRequestLock(context.Background(), "req-1", time.Second); !ok {
		t.Fatal("could not pre-acquire lock")
	}

	if _, err := f.service.AssignDriver(context.Background(), "req-1", "drv-1"); !errors.Is(err, service.ErrRequestLocked) {
		t.Errorf("err = %v, want ErrRequestLocked", err)
	}
}

func TestAssignDriver_RequiresApprovedDriver(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	pending := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	pending.Status = domain.DriverStatusPending
	f.driverRepo.AddDriver(pending)
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestRequested,
	})

	if _, err := f.service.AssignDriver(context.Background(), "req-1", "drv-1"); !errors.Is(err, service.ErrDriverNotApproved) {
		t.Errorf("err = %v, want ErrDriverNotApproved", err)
	}
}

func TestAssignDriver_ReplacesDriverOnAcceptedRequest(t *testing.T) {
	t.Parallel()
	f := newRequestFixture()

	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", RiderID: "rider-1", DriverID: "drv-9",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestAccepted,
		AcceptedAt:  time.Now().Add(-time.Minute),
	})

	req, err := f.service.AssignDriver(context.Background(), "req-1", "drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.DriverID != "drv-1" {
		t.Errorf("driver = %q, want replacement drv-1", req.DriverID)
	}
	if req.Status != domain.RideRequestAccepted {
		t.Errorf("status = %s, want ACCEPTED", req.Status)
	}
}

func TestAssignDriver_RejectsRequestPastAcceptance(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.RideRequestStatus{
		domain.RideRequestPickedUp,
		domain.RideRequestInTransit,
		domain.RideRequestCompleted,
		domain.RideRequestCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newRequestFixture()
			f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
			f.requestRepo.AddRequest(&domain.RideRequest{
				ID: "req-1", RiderID: "rider-1", DriverID: "drv-9",
				VehicleType: domain.VehicleCar,
				Status:      status,
			})

			if _, err := f.service.AssignDriver(context.Background(), "req-1", "drv-1"); !errors.Is(err, service.ErrRequestNotAvailable) {
				t.Errorf("err = %v, want ErrRequestNotAvailable", err)
			}
		})
	}
}
