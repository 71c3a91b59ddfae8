package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/fare"
	redisstore "ridebook/internal/redis"
	"ridebook/internal/repository"
)

// assignLockTTL bounds how long an admin assignment may hold a request lock.
const assignLockTTL = 10 * time.Second

// RideRequestService drives the on-demand ride request lifecycle.
type RideRequestService struct {
	requestRepo repository.RideRequestRepository
	driverRepo  repository.DriverRepository
	txRunner    repository.TxRunner
	locks       redisstore.LockStoreInterface
	cache       redisstore.CacheStoreInterface
	notifier    *NotificationService
	logger      *logrus.Logger
}

// NewRideRequestService creates a new RideRequestService.
func NewRideRequestService(
	requestRepo repository.RideRequestRepository,
	driverRepo repository.DriverRepository,
	txRunner repository.TxRunner,
	locks redisstore.LockStoreInterface,
	cache redisstore.CacheStoreInterface,
	notifier *NotificationService,
	logger *logrus.Logger,
) *RideRequestService {
	return &RideRequestService{
		requestRepo: requestRepo,
		driverRepo:  driverRepo,
		txRunner:    txRunner,
		locks:       locks,
		cache:       cache,
		notifier:    notifier,
		logger:      logger,
	}
}

// RequestRideParams contains the parameters for requesting a ride.
type RequestRideParams struct {
	RiderID     string
	Pickup      domain.Location
	Dropoff     domain.Location
	VehicleType domain.VehicleType
}

// RequestRide creates a new ride request in REQUESTED state. The fare is the
// flat quote on the direct great-circle distance, locked in at request time.
func (s *RideRequestService) RequestRide(ctx context.Context, params RequestRideParams) (*domain.RideRequest, error) {
	if err := validateRequestParams(params); err != nil {
		return nil, err
	}

	active, err := s.requestRepo.GetActiveByRider(ctx, params.RiderID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrRiderHasActiveRequest
	}

	distanceKm := fare.HaversineKm(params.Pickup.Lat, params.Pickup.Lng, params.Dropoff.Lat, params.Dropoff.Lng)
	quote := fare.RequestFare(distanceKm, params.VehicleType)

	req := &domain.RideRequest{
		ID:          uuid.New().String(),
		RiderID:     params.RiderID,
		Pickup:      params.Pickup,
		Dropoff:     params.Dropoff,
		VehicleType: params.VehicleType,
		Fare:        quote,
		Status:      domain.RideRequestRequested,
		RequestedAt: time.Now(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ride_request_id": req.ID,
		"rider_id":        req.RiderID,
		"vehicle_type":    req.VehicleType,
		"fare":            req.Fare,
	}).Info("ride requested")

	return req, nil
}

// EstimateFare quotes the flat fare for a trip without creating a request.
func (s *RideRequestService) EstimateFare(pickup, dropoff domain.Location, vehicleType domain.VehicleType) (float64, float64, error) {
	if !vehicleType.Valid() {
		return 0, 0, ErrInvalidVehicleType
	}
	if !validLocation(pickup) || !validLocation(dropoff) {
		return 0, 0, ErrInvalidLocation
	}

	distanceKm := fare.HaversineKm(pickup.Lat, pickup.Lng, dropoff.Lat, dropoff.Lng)
	return fare.RequestFare(distanceKm, vehicleType), distanceKm, nil
}

// AcceptRide lets the driver owned by driverUserID accept an open request.
// The conditional update in the repository resolves concurrent accepts:
// exactly one driver wins, the rest get ErrRequestNotAvailable.
func (s *RideRequestService) AcceptRide(ctx context.Context, requestID, driverUserID string) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	driver, err := s.eligibleDriver(ctx, driverUserID)
	if err != nil {
		return nil, err
	}

	activeForDriver, err := s.requestRepo.GetActiveByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if activeForDriver != nil {
		return nil, ErrDriverHasActiveRequest
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.VehicleType != driver.VehicleType {
		return nil, ErrRequestNotAvailable
	}

	won, err := s.requestRepo.AcceptIfRequested(ctx, requestID, driver.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrRequestNotAvailable
	}

	req, err = s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyRideAccepted(ctx, req); err != nil {
		s.logger.WithError(err).Warn("accept notification failed")
	}

	s.logger.WithFields(logrus.Fields{
		"ride_request_id": req.ID,
		"driver_id":       driver.ID,
	}).Info("ride accepted")

	return req, nil
}

// AssignDriver is the admin path: it pins a specific driver onto a REQUESTED
// or already-ACCEPTED request, replacing any previously assigned driver. A
// short lock serialises concurrent assignments on one request.
func (s *RideRequestService) AssignDriver(ctx context.Context, requestID, driverID string) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	locked, err := s.locks.AcquireRequestLock(ctx, requestID, assignLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRequestLocked
	}
	defer func() {
		if err := s.locks.ReleaseRequestLock(ctx, requestID); err != nil {
			s.logger.WithError(err).Warn("failed to release request lock")
		}
	}()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Status != domain.DriverStatusApproved {
		return nil, ErrDriverNotApproved
	}

	activeForDriver, err := s.requestRepo.GetActiveByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if activeForDriver != nil && activeForDriver.ID != requestID {
		return nil, ErrDriverHasActiveRequest
	}

	won, err := s.requestRepo.AssignIfOpen(ctx, requestID, driver.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrRequestNotAvailable
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyRideAccepted(ctx, req); err != nil {
		s.logger.WithError(err).Warn("assignment notification failed")
	}

	return req, nil
}

// UpdateStatus advances the request along PICKED_UP, IN_TRANSIT and
// COMPLETED. Only the assigned driver may advance a request. Completion runs
// in one transaction so the request flips and the driver is credited
// atomically.
func (s *RideRequestService) UpdateStatus(ctx context.Context, requestID, driverUserID string, target domain.RideRequestStatus) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}
	if !target.Valid() || target == domain.RideRequestRequested || target == domain.RideRequestCancelled {
		return nil, ErrInvalidTransition
	}

	driver, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.DriverID != driver.ID {
		return nil, ErrDriverNotAssigned
	}
	if !req.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	req.Status = target
	switch target {
	case domain.RideRequestPickedUp:
		req.PickedUpAt = now
	case domain.RideRequestInTransit:
		// No dedicated timestamp; the transition itself is the record.
	case domain.RideRequestCompleted:
		req.CompletedAt = now
	}

	if target == domain.RideRequestCompleted {
		err = s.txRunner.RunInTx(ctx, func(tx repository.Tx) error {
			if err := tx.RideRequests().Update(ctx, req); err != nil {
				return err
			}
			return tx.Drivers().CreditCompletedRide(ctx, driver.ID, req.Fare)
		})
		if err != nil {
			return nil, err
		}

		if err := s.cache.InvalidateDriver(ctx, driver.ID); err != nil {
			s.logger.WithError(err).Warn("failed to invalidate driver cache")
		}
		if err := s.notifier.NotifyRideCompleted(ctx, req); err != nil {
			s.logger.WithError(err).Warn("completion notification failed")
		}
	} else {
		if err := s.requestRepo.Update(ctx, req); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"ride_request_id": req.ID,
		"status":          req.Status,
	}).Info("ride request status updated")

	return req, nil
}

// CancelRideParams contains the parameters for cancelling a request.
type CancelRideParams struct {
	RequestID string
	ActorID   string // user id of the caller
	Actor     domain.CancelActor
	Reason    string
}

// CancelRide cancels a request. Riders may cancel their own request up to
// PICKED_UP, drivers their assigned request after accepting, admins any
// cancellable request. IN_TRANSIT requests can only complete.
func (s *RideRequestService) CancelRide(ctx context.Context, params CancelRideParams) (*domain.RideRequest, error) {
	if params.RequestID == "" {
		return nil, ErrInvalidRequestID
	}

	req, err := s.requestRepo.GetByID(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}

	if !req.Status.CanTransitionTo(domain.RideRequestCancelled) {
		return nil, ErrCancelNotAllowed
	}

	switch params.Actor {
	case domain.CancelledByRider:
		if req.RiderID != params.ActorID {
			return nil, ErrNotRequestOwner
		}
	case domain.CancelledByDriver:
		driver, err := s.driverRepo.GetByUserID(ctx, params.ActorID)
		if err != nil {
			return nil, err
		}
		if req.DriverID != driver.ID {
			return nil, ErrDriverNotAssigned
		}
	case domain.CancelledByAdmin:
		// Admins may cancel any cancellable request.
	default:
		return nil, ErrCancelNotAllowed
	}

	req.Status = domain.RideRequestCancelled
	req.CancelledAt = time.Now()
	req.CancelledBy = params.Actor
	req.CancellationReason = params.Reason

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyRideCancelled(ctx, req); err != nil {
		s.logger.WithError(err).Warn("cancellation notification failed")
	}

	s.logger.WithFields(logrus.Fields{
		"ride_request_id": req.ID,
		"cancelled_by":    params.Actor,
	}).Info("ride request cancelled")

	return req, nil
}

// GetRequest retrieves a single request.
func (s *RideRequestService) GetRequest(ctx context.Context, requestID string) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}
	return s.requestRepo.GetByID(ctx, requestID)
}

// RiderHistory returns the rider's requests, newest first.
func (s *RideRequestService) RiderHistory(ctx context.Context, riderID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	if riderID == "" {
		return nil, 0, ErrInvalidRiderID
	}
	return s.requestRepo.ListByRider(ctx, riderID, limit, offset)
}

// DriverHistory returns the driver's assigned requests, newest first.
func (s *RideRequestService) DriverHistory(ctx context.Context, driverUserID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	driver, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, 0, err
	}
	return s.requestRepo.ListByDriver(ctx, driver.ID, limit, offset)
}

// OpenRequests returns requests still open for acceptance, for eligible
// drivers browsing work.
func (s *RideRequestService) OpenRequests(ctx context.Context, driverUserID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	if _, err := s.eligibleDriver(ctx, driverUserID); err != nil {
		return nil, 0, err
	}
	return s.requestRepo.ListRequested(ctx, limit, offset)
}

// AllRequests returns every request, newest first. Admin only.
func (s *RideRequestService) AllRequests(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error) {
	return s.requestRepo.ListAll(ctx, limit, offset)
}

// eligibleDriver resolves the driver profile for a user and enforces the
// approved-and-online rule, consulting the cache before the database.
func (s *RideRequestService) eligibleDriver(ctx context.Context, driverUserID string) (*domain.Driver, error) {
	if driverUserID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cache.GetDriver(ctx, driver.ID); err == nil && cached != nil {
		if domain.DriverStatus(cached.Status) == domain.DriverStatusApproved && cached.IsOnline {
			return driver, nil
		}
		return nil, ErrDriverNotEligible
	}

	if !driver.Eligible() {
		return nil, ErrDriverNotEligible
	}

	if err := s.cache.SetDriver(ctx, &redisstore.CachedDriver{
		ID:          driver.ID,
		UserID:      driver.UserID,
		VehicleType: string(driver.VehicleType),
		Status:      string(driver.Status),
		IsOnline:    driver.IsOnline,
		Rating:      driver.Rating,
	}); err != nil {
		s.logger.WithError(err).Warn("failed to cache driver")
	}

	return driver, nil
}

func validateRequestParams(params RequestRideParams) error {
	if params.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !params.VehicleType.Valid() {
		return ErrInvalidVehicleType
	}
	if !validLocation(params.Pickup) || !validLocation(params.Dropoff) {
		return ErrInvalidLocation
	}
	return nil
}

func validLocation(loc domain.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lng >= -180 && loc.Lng <= 180
}
