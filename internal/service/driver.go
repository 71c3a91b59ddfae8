package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/events"
	redisstore "ridebook/internal/redis"
	"ridebook/internal/repository"
)

// DriverService handles driver registration, approval and availability.
type DriverService struct {
	driverRepo  repository.DriverRepository
	userRepo    repository.UserRepository
	requestRepo repository.RideRequestRepository
	cache       redisstore.CacheStoreInterface
	publisher   events.Publisher
	notifier    *NotificationService
	logger      *logrus.Logger
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	userRepo repository.UserRepository,
	requestRepo repository.RideRequestRepository,
	cache redisstore.CacheStoreInterface,
	publisher events.Publisher,
	notifier *NotificationService,
	logger *logrus.Logger,
) *DriverService {
	return &DriverService{
		driverRepo:  driverRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		cache:       cache,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
	}
}

// RegisterDriverParams contains the parameters for a driver application.
type RegisterDriverParams struct {
	UserID             string
	VehicleType        domain.VehicleType
	VehicleModel       string
	VehiclePlateNumber string
	DrivingLicense     string
}

// Register creates a pending driver profile for the user. One profile per
// user; plate and license numbers are unique.
func (s *DriverService) Register(ctx context.Context, params RegisterDriverParams) (*domain.Driver, error) {
	if params.UserID == "" {
		return nil, ErrInvalidDriverID
	}
	if !params.VehicleType.Valid() {
		return nil, ErrInvalidVehicleType
	}

	if _, err := s.userRepo.GetByID(ctx, params.UserID); err != nil {
		return nil, err
	}

	driver := &domain.Driver{
		ID:                 uuid.New().String(),
		UserID:             params.UserID,
		VehicleType:        params.VehicleType,
		VehicleModel:       params.VehicleModel,
		VehiclePlateNumber: params.VehiclePlateNumber,
		DrivingLicense:     params.DrivingLicense,
		Status:             domain.DriverStatusPending,
		IsActive:           true,
		CreatedAt:          time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDriverAlreadyRegistered
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"driver_id": driver.ID,
		"user_id":   driver.UserID,
	}).Info("driver application submitted")

	return driver, nil
}

// Approve moves the profile to approved and publishes a DriverApproved
// event; the event consumer promotes the user's role.
func (s *DriverService) Approve(ctx context.Context, driverID, approvedBy string) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	driver.Status = domain.DriverStatusApproved
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDriver(ctx, driver.ID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate driver cache")
	}

	event := events.DriverApproved{
		DriverID:   driver.ID,
		UserID:     driver.UserID,
		ApprovedBy: approvedBy,
		ApprovedAt: time.Now(),
	}
	if err := s.publisher.PublishDriverApproved(ctx, event); err != nil {
		// The approval stands; promotion happens when the event is retried
		// or replayed.
		s.logger.WithError(err).WithField("driver_id", driver.ID).Error("failed to publish driver approval")
	}

	if err := s.notifier.NotifyDriverApproved(ctx, driver.UserID, driver.ID); err != nil {
		s.logger.WithError(err).Warn("approval notification failed")
	}

	return driver, nil
}

// Reject marks a pending application as rejected.
func (s *DriverService) Reject(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.setStatus(ctx, driverID, domain.DriverStatusRejected)
}

// Suspend suspends an approved driver and forces them offline.
func (s *DriverService) Suspend(ctx context.Context, driverID string) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	driver.Status = domain.DriverStatusSuspended
	driver.IsOnline = false
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDriver(ctx, driver.ID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate driver cache")
	}
	return driver, nil
}

// Reactivate returns a suspended driver to approved.
func (s *DriverService) Reactivate(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.setStatus(ctx, driverID, domain.DriverStatusApproved)
}

func (s *DriverService) setStatus(ctx context.Context, driverID string, status domain.DriverStatus) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	driver.Status = status
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDriver(ctx, driver.ID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate driver cache")
	}
	return driver, nil
}

// PromoteUserRole grants the DRIVER role after approval. Runs as the
// DriverApproved event consumer; promoting an already promoted (or admin)
// user is a no-op.
func (s *DriverService) PromoteUserRole(ctx context.Context, event events.DriverApproved) error {
	user, err := s.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleRider {
		return nil
	}

	if err := s.userRepo.UpdateRole(ctx, event.UserID, domain.RoleDriver); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   event.UserID,
		"driver_id": event.DriverID,
	}).Info("user promoted to driver")
	return nil
}

// SetOnline toggles availability for the driver owned by userID. Only
// approved drivers can go online; a driver on an active request cannot go
// offline.
func (s *DriverService) SetOnline(ctx context.Context, userID string, online bool) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if online {
		switch driver.Status {
		case domain.DriverStatusApproved:
		case domain.DriverStatusSuspended:
			return nil, ErrDriverSuspended
		default:
			return nil, ErrDriverNotApproved
		}
	} else {
		active, err := s.requestRepo.GetActiveByDriver(ctx, driver.ID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, ErrDriverHasActiveRequest
		}
	}

	if err := s.driverRepo.SetOnline(ctx, driver.ID, online); err != nil {
		return nil, err
	}
	driver.IsOnline = online

	if err := s.cache.InvalidateDriver(ctx, driver.ID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate driver cache")
	}

	return driver, nil
}

// GetByUserID retrieves the driver profile owned by a user.
func (s *DriverService) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	return s.driverRepo.GetByUserID(ctx, userID)
}

// GetByID retrieves a driver by profile ID.
func (s *DriverService) GetByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// List retrieves drivers with paging. Admin only.
func (s *DriverService) List(ctx context.Context, limit, offset int) ([]*domain.Driver, int, error) {
	return s.driverRepo.GetAll(ctx, limit, offset)
}

// PeriodEarnings is a trip count and fare total over a rolling window.
type PeriodEarnings struct {
	Rides    int     `json:"rides"`
	Earnings float64 `json:"earnings"`
}

// EarningsSummary aggregates a driver's performance: lifetime totals from
// the profile counters plus rolling-window sums over completed requests.
type EarningsSummary struct {
	DriverID            string                `json:"driver_id"`
	TotalCompletedRides int                   `json:"total_completed_rides"`
	TotalEarnings       float64               `json:"total_earnings"`
	Rating              float64               `json:"rating"`
	Last24Hours         PeriodEarnings        `json:"last_24_hours"`
	Last7Days           PeriodEarnings        `json:"last_7_days"`
	Last30Days          PeriodEarnings        `json:"last_30_days"`
	RecentRides         []*domain.RideRequest `json:"recent_rides"`
}

// recentRidesLimit bounds the recent list in earnings responses.
const recentRidesLimit = 5

// Earnings returns the summary for the driver owned by userID.
func (s *DriverService) Earnings(ctx context.Context, userID string) (*EarningsSummary, error) {
	driver, err := s.driverRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &EarningsSummary{
		DriverID:            driver.ID,
		TotalCompletedRides: driver.TotalCompletedRides,
		TotalEarnings:       driver.Earnings,
		Rating:              driver.Rating,
	}

	now := time.Now()
	windows := []struct {
		since  time.Time
		target *PeriodEarnings
	}{
		{now.Add(-24 * time.Hour), &summary.Last24Hours},
		{now.AddDate(0, 0, -7), &summary.Last7Days},
		{now.AddDate(0, 0, -30), &summary.Last30Days},
	}
	for _, w := range windows {
		earnings, rides, err := s.requestRepo.SumCompletedFares(ctx, driver.ID, w.since)
		if err != nil {
			return nil, err
		}
		w.target.Earnings = earnings
		w.target.Rides = rides
	}

	recent, err := s.requestRepo.ListCompletedByDriver(ctx, driver.ID, recentRidesLimit)
	if err != nil {
		return nil, err
	}
	summary.RecentRides = recent

	return summary, nil
}
