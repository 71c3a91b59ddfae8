package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ridebook/internal/domain"
	"ridebook/internal/service"
)

// ──────────────────────────────────────────────
// REVIEWS AND RATING AGGREGATION
// ──────────────────────────────────────────────

type reviewFixture struct {
	service     *service.ReviewService
	reviewRepo  *MockReviewRepository
	requestRepo *MockRideRequestRepository
	driverRepo  *MockDriverRepository
}

// newReviewFixture seeds a completed trip: rider user-r, driver profile
// drv-1 owned by user-d.
func newReviewFixture() *reviewFixture {
	reviewRepo := NewMockReviewRepository()
	requestRepo := NewMockRideRequestRepository()
	driverRepo := NewMockDriverRepository()

	driverRepo.AddDriver(approvedDriver("drv-1", "user-d", domain.VehicleCar))
	requestRepo.AddRequest(&domain.RideRequest{
		ID:          "req-1",
		RiderID:     "user-r",
		DriverID:    "drv-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestCompleted,
	})

	return &reviewFixture{
		service:     service.NewReviewService(reviewRepo, requestRepo, driverRepo, newTestLogger()),
		reviewRepo:  reviewRepo,
		requestRepo: requestRepo,
		driverRepo:  driverRepo,
	}
}

func driverReview(reviewer string, rating int) service.CreateReviewParams {
	return service.CreateReviewParams{
		RideRequestID: "req-1",
		ReviewerID:    reviewer,
		ReviewType:    domain.ReviewTypeDriver,
		Rating:        rating,
	}
}

func TestCreateReview_RiderReviewsDriver(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	review, err := f.service.Create(context.Background(), service.CreateReviewParams{
		RideRequestID: "req-1",
		ReviewerID:    "user-r",
		ReviewType:    domain.ReviewTypeDriver,
		Rating:        5,
		Comment:       "smooth trip",
		Tags:          []string{"polite", "safe_driving"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.RevieweeID != "user-d" {
		t.Errorf("reviewee = %q, want the driver's user id user-d", review.RevieweeID)
	}

	// The driver profile aggregate was recomputed.
	driver, _ := f.driverRepo.GetByID(context.Background(), "drv-1")
	if driver.Rating != 5 {
		t.Errorf("driver rating = %v, want 5", driver.Rating)
	}
}

func TestCreateReview_DriverReviewsRider(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	review, err := f.service.Create(context.Background(), service.CreateReviewParams{
		RideRequestID: "req-1",
		ReviewerID:    "user-d",
		ReviewType:    domain.ReviewTypeRider,
		Rating:        4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.RevieweeID != "user-r" {
		t.Errorf("reviewee = %q, want user-r", review.RevieweeID)
	}

	// Rider aggregates are computed on read; the driver profile is untouched.
	driver, _ := f.driverRepo.GetByID(context.Background(), "drv-1")
	if driver.Rating != 0 {
		t.Errorf("driver rating = %v, want 0", driver.Rating)
	}
}

func TestCreateReview_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		params  service.CreateReviewParams
		wantErr error
	}{
		{
			"rating too low",
			driverReview("user-r", 0),
			service.ErrInvalidRating,
		},
		{
			"rating too high",
			driverReview("user-r", 6),
			service.ErrInvalidRating,
		},
		{
			"unknown review type",
			service.CreateReviewParams{RideRequestID: "req-1", ReviewerID: "user-r", ReviewType: "vehicle_review", Rating: 4},
			service.ErrInvalidReviewType,
		},
		{
			"driver submitting a driver review",
			driverReview("user-d", 4),
			service.ErrReviewRoleMismatch,
		},
		{
			"rider submitting a rider review",
			service.CreateReviewParams{RideRequestID: "req-1", ReviewerID: "user-r", ReviewType: domain.ReviewTypeRider, Rating: 4},
			service.ErrReviewRoleMismatch,
		},
		{
			"outsider",
			driverReview("user-x", 4),
			service.ErrNotRideParticipant,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReviewFixture()
			if _, err := f.service.Create(context.Background(), tc.params); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateReview_RequiresCompletedTrip(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID:          "req-2",
		RiderID:     "user-r",
		DriverID:    "drv-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestInTransit,
	})

	params := driverReview("user-r", 5)
	params.RideRequestID = "req-2"
	if _, err := f.service.Create(context.Background(), params); !errors.Is(err, service.ErrRideNotCompleted) {
		t.Errorf("err = %v, want ErrRideNotCompleted", err)
	}
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	if _, err := f.service.Create(context.Background(), driverReview("user-r", 5)); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := f.service.Create(context.Background(), driverReview("user-r", 3)); !errors.Is(err, service.ErrAlreadyReviewed) {
		t.Errorf("err = %v, want ErrAlreadyReviewed", err)
	}
}

// seedCompletedTrip adds another completed trip for the same driver with a
// distinct rider, so multiple driver reviews can accumulate.
func (f *reviewFixture) seedCompletedTrip(reqID, riderID string) {
	f.requestRepo.AddRequest(&domain.RideRequest{
		ID:          reqID,
		RiderID:     riderID,
		DriverID:    "drv-1",
		VehicleType: domain.VehicleCar,
		Status:      domain.RideRequestCompleted,
	})
}

func TestDriverRating_MeanAcrossTrips(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()
	f.seedCompletedTrip("req-2", "user-r2")

	if _, err := f.service.Create(context.Background(), driverReview("user-r", 5)); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	params := driverReview("user-r2", 4)
	params.RideRequestID = "req-2"
	review, err := f.service.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("second review failed: %v", err)
	}

	driver, _ := f.driverRepo.GetByID(context.Background(), "drv-1")
	if driver.Rating != 4.5 {
		t.Errorf("driver rating = %v, want 4.5", driver.Rating)
	}

	// Deleting one review recomputes the mean from what remains.
	if err := f.service.Delete(context.Background(), review.ID, "user-r2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	driver, _ = f.driverRepo.GetByID(context.Background(), "drv-1")
	if driver.Rating != 5 {
		t.Errorf("driver rating after delete = %v, want 5", driver.Rating)
	}
}

func TestDriverRating_ZeroWithNoReviews(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	review, err := f.service.Create(context.Background(), driverReview("user-r", 3))
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := f.service.Delete(context.Background(), review.ID, "user-r"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	driver, _ := f.driverRepo.GetByID(context.Background(), "drv-1")
	if driver.Rating != 0 {
		t.Errorf("driver rating = %v, want 0 with no reviews left", driver.Rating)
	}
}

func TestUpdateReview_RecomputesAndGuardsOwner(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	review, err := f.service.Create(context.Background(), driverReview("user-r", 2))
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}

	if _, err := f.service.Update(context.Background(), service.UpdateReviewParams{
		ReviewID: review.ID, ReviewerID: "user-x", Rating: 5,
	}); !errors.Is(err, service.ErrNotReviewOwner) {
		t.Errorf("stranger update: err = %v, want ErrNotReviewOwner", err)
	}

	updated, err := f.service.Update(context.Background(), service.UpdateReviewParams{
		ReviewID: review.ID, ReviewerID: "user-r", Rating: 5, Comment: "better than I remembered",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Rating != 5 {
		t.Errorf("rating = %d, want 5", updated.Rating)
	}

	driver, _ := f.driverRepo.GetByID(context.Background(), "drv-1")
	if driver.Rating != 5 {
		t.Errorf("driver rating = %v, want 5 after update", driver.Rating)
	}
}

func TestDeleteReview_OwnerOnly(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	review, err := f.service.Create(context.Background(), driverReview("user-r", 4))
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := f.service.Delete(context.Background(), review.ID, "user-d"); !errors.Is(err, service.ErrNotReviewOwner) {
		t.Errorf("err = %v, want ErrNotReviewOwner", err)
	}
}

func TestReviewStats_DistributionAndRecentCap(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	ratings := []int{5, 5, 4, 3, 5, 4, 5}
	for i, rating := range ratings {
		reqID := fmt.Sprintf("req-s%d", i)
		f.seedCompletedTrip(reqID, fmt.Sprintf("user-s%d", i))
		params := driverReview(fmt.Sprintf("user-s%d", i), rating)
		params.RideRequestID = reqID
		if _, err := f.service.Create(context.Background(), params); err != nil {
			t.Fatalf("review %d failed: %v", i, err)
		}
	}

	stats, err := f.service.Stats(context.Background(), "user-d", domain.ReviewTypeDriver)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != len(ratings) {
		t.Errorf("count = %d, want %d", stats.Count, len(ratings))
	}
	// 31/7 = 4.428... rounds to 4.4.
	if stats.Average != 4.4 {
		t.Errorf("average = %v, want 4.4", stats.Average)
	}
	if stats.Distribution[5] != 4 || stats.Distribution[4] != 2 || stats.Distribution[3] != 1 {
		t.Errorf("distribution = %v", stats.Distribution)
	}
	if stats.Distribution[1] != 0 || stats.Distribution[2] != 0 {
		t.Errorf("distribution missing zero buckets: %v", stats.Distribution)
	}
	if len(stats.RecentReviews) != 5 {
		t.Errorf("recent reviews = %d, want capped at 5", len(stats.RecentReviews))
	}
}

func TestReviewStats_InvalidType(t *testing.T) {
	t.Parallel()
	f := newReviewFixture()

	if _, err := f.service.Stats(context.Background(), "user-d", "vehicle_review"); !errors.Is(err, service.ErrInvalidReviewType) {
		t.Errorf("err = %v, want ErrInvalidReviewType", err)
	}
}
