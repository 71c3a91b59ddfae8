package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridebook/internal/domain"
	"ridebook/internal/events"
	"ridebook/internal/service"
)

// ──────────────────────────────────────────────
// DRIVER REGISTRY AND APPROVAL
// ──────────────────────────────────────────────

type driverFixture struct {
	service     *service.DriverService
	driverRepo  *MockDriverRepository
	userRepo    *MockUserRepository
	requestRepo *MockRideRequestRepository
	cache       *MockCacheStore
	publisher   *MockPublisher
	notifier    *RecordingNotifier
}

func newDriverFixture() *driverFixture {
	driverRepo := NewMockDriverRepository()
	userRepo := NewMockUserRepository()
	requestRepo := NewMockRideRequestRepository()
	cache := NewMockCacheStore()
	publisher := NewMockPublisher()
	notifier := NewRecordingNotifier()

	return &driverFixture{
		service: service.NewDriverService(
			driverRepo, userRepo, requestRepo, cache, publisher,
			service.NewNotificationService(notifier), newTestLogger(),
		),
		driverRepo:  driverRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		cache:       cache,
		publisher:   publisher,
		notifier:    notifier,
	}
}

func registrationParams(userID, plate string) service.RegisterDriverParams {
	return service.RegisterDriverParams{
		UserID:             userID,
		VehicleType:        domain.VehicleCar,
		VehicleModel:       "Toyota Axio",
		VehiclePlateNumber: plate,
		DrivingLicense:     "DL-" + plate,
	}
}

func TestRegister_CreatesPendingProfile(t *testing.T) {
	t.Parallel()
	f := newDriverFixture()
	f.userRepo.AddUser(&domain.User{ID: "user-1", Role: domain.RoleRider})

	driver, err := f.service.Register(context.Background(), registrationParams("user-1", "DHA-1234"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusPending {
		t.Errorf("status = %s, want Pending", driver.Status)
	}
	if driver.IsOnline {
		t.Errorf("new profile should start offline")
	}
}

func TestRegister_Rejections(t *testing.T) {
	t.Parallel()
	f := newDriverFixture()
	f.userRepo.AddUser(&domain.User{ID: "user-1", Role: domain.RoleRider})
	f.userRepo.AddUser(&domain.User{ID: "user-2", Role: domain.RoleRider})

	if _, err := f.service.Register(context.Background(), registrationParams("user-1", "DHA-1234")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	// Second profile for the same user.
	if _, err := f.service.Register(context.Background(), registrationParams("user-1", "DHA-9999")); !errors.Is(err, service.ErrDriverAlreadyRegistered) {
		t.Errorf("same user: err = %v, want ErrDriverAlreadyRegistered", err)
	}
	// Plate already registered by someone else.
	if _, err := f.service.Register(context.Background(), registrationParams("user-2", "DHA-1234")); !errors.Is(err, service.ErrDriverAlreadyRegistered) {
		t.Errorf("duplicate plate: err = %v, want ErrDriverAlreadyRegistered", err)
	}

	params := registrationParams("user-2", "DHA-5678")
	params.VehicleType = "Truck"
	if _, err := f.service.Register(context.Background(), params); !errors.Is(err, service.ErrInvalidVehicleType) {
		t.Errorf("bad vehicle: err = %v, want ErrInvalidVehicleType", err)
	}
}

func TestApprove_PublishesEventAndNotifies(t *testing.T) {
	t.Parallel()
	f := newDriverFixture()
	pending := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	pending.Status = domain.DriverStatusPending
	pending.IsOnline = false
	f.driverRepo.AddDriver(pending)

	driver, err := f.service.Approve(context.Background(), "drv-1", "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusApproved {
		t.Errorf("status = %s, want Approved", driver.Status)
	}

	if f.publisher.PublishedCount() != 1 {
		t.Fatalf("published events = %d, want 1", f.publisher.PublishedCount())
	}
	event := f.publisher.Published[0]
	if event.DriverID != "drv-1" || event.UserID != "user-1" || event.ApprovedBy != "admin-1" {
		t.Errorf("event = %+v", event)
	}
	if f.notifier.SentCount(service.NotificationDriverApproved) != 1 {
		t.Errorf("expected an approval notification")
	}
}

func TestApprove_PublishFailureDoesNotFailApproval(t *testing.T) {
	t.Parallel()
	f := newDriverFixture()
	pending := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	pending.Status = domain.DriverStatusPending
	f.driverRepo.AddDriver(pending)
	f.publisher.PublishError = errors.New("nsqd unreachable")

	driver, err := f.service.Approve(context.Background(), "drv-1", "admin-1")
	if err != nil {
		t.Fatalf("approval must stand on publish failure, got %v", err)
	}
	if driver.Status != domain.DriverStatusApproved {
		t.Errorf("status = %s, want Approved", driver.Status)
	}
}

func TestPromoteUserRole_FromEvent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		role     domain.Role
		wantRole domain.Role
	}{
		{"rider is promoted", domain.RoleRider, domain.RoleDriver},
		{"driver is a no-op", domain.RoleDriver, domain.RoleDriver},
		{"admin is untouched", domain.RoleAdmin, domain.RoleAdmin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newDriverFixture()
			f.userRepo.AddUser(&domain.User{ID: "user-1", Role: tc.role})

			err := f.service.PromoteUserRole(context.Background(), events.DriverApproved{
				DriverID: "drv-1", UserID: "user-1", ApprovedBy: "admin-1",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			user, _ := f.userRepo.GetByID(context.Background(), "user-1")
			if user.Role != tc.wantRole {
				t.Errorf("role = %s, want %s", user.Role, tc.wantRole)
			}
		})
	}
}

func TestSetOnline_Rules(t *testing.T) {
	t.Parallel()

	t.Run("pending driver cannot go online", func(t *testing.T) {
		f := newDriverFixture()
		pending := approvedDriver("drv-1", "user-1", domain.VehicleCar)
		pending.Status = domain.DriverStatusPending
		pending.IsOnline = false
		f.driverRepo.AddDriver(pending)

		if _, err := f.service.SetOnline(context.Background(), "user-1", true); !errors.Is(err, service.ErrDriverNotApproved) {
			t.Errorf("err = %v, want ErrDriverNotApproved", err)
		}
	})

	t.Run("suspended driver cannot go online", func(t *testing.T) {
		f := newDriverFixture()
		suspended := approvedDriver("drv-1", "user-1", domain.VehicleCar)
		suspended.Status = domain.DriverStatusSuspended
		suspended.IsOnline = false
		f.driverRepo.AddDriver(suspended)

		if _, err := f.service.SetOnline(context.Background(), "user-1", true); !errors.Is(err, service.ErrDriverSuspended) {
			t.Errorf("err = %v, want ErrDriverSuspended", err)
		}
	})

	t.Run("approved driver toggles", func(t *testing.T) {
		f := newDriverFixture()
		driver := approvedDriver("drv-1", "user-1", domain.VehicleCar)
		driver.IsOnline = false
		f.driverRepo.AddDriver(driver)

		updated, err := f.service.SetOnline(context.Background(), "user-1", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.IsOnline {
			t.Errorf("driver should be online")
		}

		updated, err = f.service.SetOnline(context.Background(), "user-1", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.IsOnline {
			t.Errorf("driver should be offline")
		}
	})

	t.Run("driver on an active trip cannot go offline", func(t *testing.T) {
		f := newDriverFixture()
		f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))
		f.requestRepo.AddRequest(&domain.RideRequest{
			ID:       "req-1",
			RiderID:  "user-r",
			DriverID: "drv-1",
			Status:   domain.RideRequestInTransit,
		})

		if _, err := f.service.SetOnline(context.Background(), "user-1", false); !errors.Is(err, service.ErrDriverHasActiveRequest) {
			t.Errorf("err = %v, want ErrDriverHasActiveRequest", err)
		}
	})
}

func TestSuspend_ForcesOffline(t *testing.T) {
	t.Parallel()
	f := newDriverFixture()
	f.driverRepo.AddDriver(approvedDriver("drv-1", "user-1", domain.VehicleCar))

	driver, err := f.service.Suspend(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusSuspended {
		t.Errorf("status = %s, want Suspended", driver.Status)
	}
	if driver.IsOnline {
		t.Errorf("suspension must force the driver offline")
	}

	// Reactivation restores approved but leaves the driver offline.
	driver, err = f.service.Reactivate(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusApproved {
		t.Errorf("status = %s, want Approved", driver.Status)
	}
	if driver.IsOnline {
		t.Errorf("reactivation must not put the driver back online")
	}
}

func TestEarnings_Summary(t *testing.T) {
	t.Parallel()
	f := newDriverFixture()
	driver := approvedDriver("drv-1", "user-1", domain.VehicleCar)
	driver.TotalCompletedRides = 12
	driver.Earnings = 5610
	driver.Rating = 4.7
	f.driverRepo.AddDriver(driver)

	// Completed trips at staggered ages exercise the rolling windows.
	now := time.Now()
	completed := func(id string, fare float64, ago time.Duration) *domain.RideRequest {
		return &domain.RideRequest{
			ID:          id,
			RiderID:     "user-r",
			DriverID:    "drv-1",
			Fare:        fare,
			Status:      domain.RideRequestCompleted,
			CompletedAt: now.Add(-ago),
		}
	}
	f.requestRepo.AddRequest(completed("req-recent", 468, 2*time.Hour))
	f.requestRepo.AddRequest(completed("req-lastweek", 300, 5*24*time.Hour))
	f.requestRepo.AddRequest(completed("req-lastmonth", 200, 20*24*time.Hour))
	f.requestRepo.AddRequest(completed("req-ancient", 100, 90*24*time.Hour))
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-cancelled", RiderID: "user-r", DriverID: "drv-1", Fare: 999,
		Status: domain.RideRequestCancelled, CancelledAt: now,
	})

	summary, err := f.service.Earnings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalCompletedRides != 12 || summary.TotalEarnings != 5610 || summary.Rating != 4.7 {
		t.Errorf("lifetime totals = %+v", summary)
	}
	if summary.Last24Hours.Rides != 1 || summary.Last24Hours.Earnings != 468 {
		t.Errorf("last 24h = %+v, want 1 ride / 468", summary.Last24Hours)
	}
	if summary.Last7Days.Rides != 2 || summary.Last7Days.Earnings != 768 {
		t.Errorf("last 7 days = %+v, want 2 rides / 768", summary.Last7Days)
	}
	if summary.Last30Days.Rides != 3 || summary.Last30Days.Earnings != 968 {
		t.Errorf("last 30 days = %+v, want 3 rides / 968", summary.Last30Days)
	}
	if len(summary.RecentRides) != 4 {
		t.Errorf("recent rides = %d, want 4 completed trips", len(summary.RecentRides))
	}
}
