package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/fare"
	redisstore "ridebook/internal/redis"
	"ridebook/internal/repository"
)

// FareService produces itemised fare estimates and manages pricing config.
type FareService struct {
	configRepo  repository.FareConfigRepository
	requestRepo repository.RideRequestRepository
	cache       redisstore.CacheStoreInterface
	peak        fare.PeakHours
	logger      *logrus.Logger
	now         func() time.Time
}

// NewFareService creates a new FareService.
func NewFareService(
	configRepo repository.FareConfigRepository,
	requestRepo repository.RideRequestRepository,
	cache redisstore.CacheStoreInterface,
	peak fare.PeakHours,
	logger *logrus.Logger,
) *FareService {
	return &FareService{
		configRepo:  configRepo,
		requestRepo: requestRepo,
		cache:       cache,
		peak:        peak,
		logger:      logger,
		now:         time.Now,
	}
}

// EstimateParams contains the inputs for a full fare estimate.
type EstimateParams struct {
	Pickup      domain.Location
	Dropoff     domain.Location
	VehicleType domain.VehicleType
}

// Estimate produces the full scheduled-ride breakdown: config-driven rates,
// demand-based surge and travel-time estimation.
func (s *FareService) Estimate(ctx context.Context, params EstimateParams) (*fare.Breakdown, error) {
	if !params.VehicleType.Valid() {
		return nil, ErrInvalidVehicleType
	}
	if !validLocation(params.Pickup) || !validLocation(params.Dropoff) {
		return nil, ErrInvalidLocation
	}

	cfg, err := s.Config(ctx, params.VehicleType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	distanceKm := fare.RoadDistanceKm(params.Pickup.Lat, params.Pickup.Lng, params.Dropoff.Lat, params.Dropoff.Lng)
	durationMinutes := fare.EstimateTravelMinutes(distanceKm, params.VehicleType, now, s.peak)

	demand, err := s.demandCount(ctx, params.VehicleType, now)
	if err != nil {
		return nil, err
	}
	surge := fare.SurgeMultiplier(demand, now, s.peak)

	breakdown := fare.Calculate(*cfg, distanceKm, durationMinutes, surge)
	return &breakdown, nil
}

// demandCount counts recent active requests for the vehicle type, consulting
// the short-lived cache first.
func (s *FareService) demandCount(ctx context.Context, vehicleType domain.VehicleType, now time.Time) (int, error) {
	if count, ok, err := s.cache.GetDemandCount(ctx, string(vehicleType)); err == nil && ok {
		return count, nil
	}

	count, err := s.requestRepo.CountActiveSince(ctx, vehicleType, now.Add(-fare.DemandWindow))
	if err != nil {
		return 0, err
	}

	if err := s.cache.SetDemandCount(ctx, string(vehicleType), count); err != nil {
		s.logger.WithError(err).Warn("failed to cache demand count")
	}
	return count, nil
}

// Config returns the stored pricing config for a vehicle type, falling back
// to the code defaults on a miss.
func (s *FareService) Config(ctx context.Context, vehicleType domain.VehicleType) (*domain.FareConfig, error) {
	if cached, err := s.cache.GetFareConfig(ctx, string(vehicleType)); err == nil && cached != nil {
		return &domain.FareConfig{
			VehicleType:           domain.VehicleType(cached.VehicleType),
			BaseFare:              cached.BaseFare,
			PerKmRate:             cached.PerKmRate,
			PerMinuteRate:         cached.PerMinuteRate,
			MinimumFare:           cached.MinimumFare,
			PlatformFeePercentage: cached.PlatformFeePercentage,
			TaxPercentage:         cached.TaxPercentage,
		}, nil
	}

	cfg, err := s.configRepo.GetByVehicleType(ctx, vehicleType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			def := fare.DefaultConfig(vehicleType)
			return &def, nil
		}
		return nil, err
	}

	if err := s.cacheConfig(ctx, cfg); err != nil {
		s.logger.WithError(err).Warn("failed to cache fare config")
	}
	return cfg, nil
}

// Configs returns every stored config.
func (s *FareService) Configs(ctx context.Context) ([]*domain.FareConfig, error) {
	return s.configRepo.GetAll(ctx)
}

// UpdateConfig replaces the pricing parameters for a vehicle type.
func (s *FareService) UpdateConfig(ctx context.Context, cfg *domain.FareConfig) error {
	if !cfg.VehicleType.Valid() {
		return ErrInvalidVehicleType
	}

	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return err
	}

	if err := s.cache.InvalidateFareConfig(ctx, string(cfg.VehicleType)); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate fare config cache")
	}

	s.logger.WithField("vehicle_type", cfg.VehicleType).Info("fare config updated")
	return nil
}

// Seed installs the default configs for any vehicle type without a stored
// override. Safe to run on every startup.
func (s *FareService) Seed(ctx context.Context) error {
	for _, vt := range []domain.VehicleType{domain.VehicleCar, domain.VehicleBike} {
		_, err := s.configRepo.GetByVehicleType(ctx, vt)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		def := fare.DefaultConfig(vt)
		if err := s.configRepo.Upsert(ctx, &def); err != nil {
			return err
		}
		s.logger.WithField("vehicle_type", vt).Info("seeded default fare config")
	}
	return nil
}

func (s *FareService) cacheConfig(ctx context.Context, cfg *domain.FareConfig) error {
	return s.cache.SetFareConfig(ctx, &redisstore.CachedFareConfig{
		VehicleType:           string(cfg.VehicleType),
		BaseFare:              cfg.BaseFare,
		PerKmRate:             cfg.PerKmRate,
		PerMinuteRate:         cfg.PerMinuteRate,
		MinimumFare:           cfg.MinimumFare,
		PlatformFeePercentage: cfg.PlatformFeePercentage,
		TaxPercentage:         cfg.TaxPercentage,
	})
}
