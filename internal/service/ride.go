package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	redisstore "ridebook/internal/redis"
	"ridebook/internal/repository"
)

// rideLockTTL bounds how long one driver's acceptance may hold a listing.
const rideLockTTL = 10 * time.Second

// RideService handles published ride listings.
type RideService struct {
	rideRepo   repository.RideRepository
	driverRepo repository.DriverRepository
	locks      redisstore.LockStoreInterface
	logger     *logrus.Logger
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	locks redisstore.LockStoreInterface,
	logger *logrus.Logger,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		driverRepo: driverRepo,
		locks:      locks,
		logger:     logger,
	}
}

// CreateRideParams contains the parameters for publishing a ride listing.
type CreateRideParams struct {
	Title          string
	Description    string
	Images         []string
	PickUpAddress  string
	DropOffAddress string
	DivisionID     string
	DistrictID     string
	RideTypeID     string
	Cost           float64
	AvailableSeats int
	MaxGuests      int
	Vehicle        domain.VehicleType
	UserID         string
}

// Create publishes a new ride listing. Titles are unique; the slug is
// derived from the title and probed until free.
func (s *RideService) Create(ctx context.Context, params CreateRideParams) (*domain.Ride, error) {
	if params.Title == "" {
		return nil, ErrInvalidRideID
	}
	if !params.Vehicle.Valid() {
		return nil, ErrInvalidVehicleType
	}

	taken, err := s.rideRepo.TitleExists(ctx, params.Title, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTitleTaken
	}

	slug, err := s.uniqueSlug(ctx, params.Title)
	if err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		Title:          params.Title,
		Slug:           slug,
		Description:    params.Description,
		Images:         params.Images,
		PickUpAddress:  params.PickUpAddress,
		DropOffAddress: params.DropOffAddress,
		DivisionID:     params.DivisionID,
		DistrictID:     params.DistrictID,
		RideTypeID:     params.RideTypeID,
		Cost:           params.Cost,
		AvailableSeats: params.AvailableSeats,
		MaxGuests:      params.MaxGuests,
		Vehicle:        params.Vehicle,
		UserID:         params.UserID,
		Status:         domain.RideStatusActive,
		CreatedAt:      time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ride_id": ride.ID,
		"slug":    ride.Slug,
	}).Info("ride published")

	return ride, nil
}

// uniqueSlug derives a slug from the title and probes the suffixed variants
// until one is free: base-ride, base-ride-0, base-ride-1, ...
func (s *RideService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slugify(title) + "-ride"

	slug := base
	for i := 0; ; i++ {
		exists, err := s.rideRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// slugify lowercases the title and collapses runs of non-alphanumerics into
// single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// UpdateRideParams contains the editable fields of a listing.
type UpdateRideParams struct {
	RideID         string
	Title          string
	Description    string
	Images         []string
	Cost           float64
	AvailableSeats int
	MaxGuests      int
}

// Update edits a listing. A changed title regenerates the slug, probing
// suffixed variants until one is free.
func (s *RideService) Update(ctx context.Context, params UpdateRideParams) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, params.RideID)
	if err != nil {
		return nil, err
	}

	if params.Title != "" && params.Title != ride.Title {
		taken, err := s.rideRepo.TitleExists(ctx, params.Title, ride.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrTitleTaken
		}
		slug, err := s.uniqueSlug(ctx, params.Title)
		if err != nil {
			return nil, err
		}
		ride.Title = params.Title
		ride.Slug = slug
	}
	if params.Description != "" {
		ride.Description = params.Description
	}
	if len(params.Images) > 0 {
		ride.Images = params.Images
	}
	if params.Cost > 0 {
		ride.Cost = params.Cost
	}
	if params.AvailableSeats > 0 {
		ride.AvailableSeats = params.AvailableSeats
	}
	if params.MaxGuests > 0 {
		ride.MaxGuests = params.MaxGuests
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// AcceptByDriver assigns the listing to the driver owned by driverUserID.
// The conditional update makes concurrent accepts safe; the lock keeps the
// losing driver from hammering the row.
func (s *RideService) AcceptByDriver(ctx context.Context, rideID, driverUserID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	driver, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, err
	}
	if driver.Status != domain.DriverStatusApproved {
		return nil, ErrDriverNotApproved
	}
	if !driver.Eligible() {
		return nil, ErrDriverNotEligible
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DeclinedBy(driver.ID) {
		return nil, ErrRideAlreadyDeclined
	}
	if ride.Vehicle != driver.VehicleType {
		return nil, ErrRideNotAvailable
	}

	locked, err := s.locks.AcquireRideLock(ctx, rideID, rideLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRideNotAvailable
	}
	defer func() {
		if err := s.locks.ReleaseRideLock(ctx, rideID); err != nil {
			s.logger.WithError(err).Warn("failed to release ride lock")
		}
	}()

	won, err := s.rideRepo.AssignDriverIfUnassigned(ctx, rideID, driver.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrRideNotAvailable
	}

	ride, err = s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ride_id":   ride.ID,
		"driver_id": driver.ID,
	}).Info("ride listing accepted")

	return ride, nil
}

// DeclineByDriver records that the driver passed on the listing so it is
// never offered to them again.
func (s *RideService) DeclineByDriver(ctx context.Context, rideID, driverUserID string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}

	driver, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return err
	}

	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return err
	}

	return s.rideRepo.AddDeclinedDriver(ctx, rideID, driver.ID)
}

// AvailableForDriver lists open listings for the driver's vehicle type that
// the driver has not declined.
func (s *RideService) AvailableForDriver(ctx context.Context, driverUserID string, limit, offset int) ([]*domain.Ride, int, error) {
	driver, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, 0, err
	}
	if driver.Status != domain.DriverStatusApproved {
		return nil, 0, ErrDriverNotApproved
	}
	if !driver.Eligible() {
		return nil, 0, ErrDriverNotEligible
	}

	return s.rideRepo.ListAvailableForDriver(ctx, driver.ID, driver.VehicleType, limit, offset)
}

// GetByID retrieves a listing by ID.
func (s *RideService) GetByID(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// GetBySlug retrieves a listing by slug.
func (s *RideService) GetBySlug(ctx context.Context, slug string) (*domain.Ride, error) {
	if slug == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetBySlug(ctx, slug)
}

// ListActive lists bookable rides.
func (s *RideService) ListActive(ctx context.Context, limit, offset int) ([]*domain.Ride, int, error) {
	return s.rideRepo.ListByStatus(ctx, domain.RideStatusActive, limit, offset)
}

// ListAll lists every ride, newest first. Admin only.
func (s *RideService) ListAll(ctx context.Context, limit, offset int) ([]*domain.Ride, int, error) {
	return s.rideRepo.ListAll(ctx, limit, offset)
}
