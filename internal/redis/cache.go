package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	DriverCacheTTL     = 30 * time.Second // Online/approval state changes frequently
	FareConfigCacheTTL = 5 * time.Minute  // Admin-tuned, rarely changes
	DemandCacheTTL     = 15 * time.Second // Surge demand count per vehicle type
)

// Key prefixes
const (
	driverCachePrefix     = "cache:driver:"
	fareConfigCachePrefix = "cache:fareconfig:"
	demandCachePrefix     = "cache:demand:"
)

// CachedDriver is the dispatch-relevant slice of a driver profile.
type CachedDriver struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	VehicleType string  `json:"vehicle_type"`
	Status      string  `json:"status"`
	IsOnline    bool    `json:"is_online"`
	Rating      float64 `json:"rating"`
}

// CachedFareConfig mirrors the stored pricing parameters.
type CachedFareConfig struct {
	VehicleType           string  `json:"vehicle_type"`
	BaseFare              float64 `json:"base_fare"`
	PerKmRate             float64 `json:"per_km_rate"`
	PerMinuteRate         float64 `json:"per_minute_rate"`
	MinimumFare           float64 `json:"minimum_fare"`
	PlatformFeePercentage float64 `json:"platform_fee_percentage"`
	TaxPercentage         float64 `json:"tax_percentage"`
}

// GetDriver retrieves a driver from cache.
func (s *CacheStore) GetDriver(ctx context.Context, driverID string) (*CachedDriver, error) {
	key := driverCachePrefix + driverID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var driver CachedDriver
	if err := json.Unmarshal(data, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

// SetDriver stores a driver in cache.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	key := driverCachePrefix + driver.ID
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	key := driverCachePrefix + driverID
	return s.client.Del(ctx, key).Err()
}

// GetFareConfig retrieves a fare config from cache.
func (s *CacheStore) GetFareConfig(ctx context.Context, vehicleType string) (*CachedFareConfig, error) {
	key := fareConfigCachePrefix + vehicleType
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cfg CachedFareConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetFareConfig stores a fare config in cache.
func (s *CacheStore) SetFareConfig(ctx context.Context, cfg *CachedFareConfig) error {
	key := fareConfigCachePrefix + cfg.VehicleType
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, FareConfigCacheTTL).Err()
}

// InvalidateFareConfig removes a fare config from cache.
func (s *CacheStore) InvalidateFareConfig(ctx context.Context, vehicleType string) error {
	key := fareConfigCachePrefix + vehicleType
	return s.client.Del(ctx, key).Err()
}

// GetDemandCount retrieves the cached active-request count for a vehicle
// type. Returns found=false on a miss.
func (s *CacheStore) GetDemandCount(ctx context.Context, vehicleType string) (int, bool, error) {
	key := demandCachePrefix + vehicleType
	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

// SetDemandCount caches the active-request count for a vehicle type.
func (s *CacheStore) SetDemandCount(ctx context.Context, vehicleType string, count int) error {
	key := demandCachePrefix + vehicleType
	return s.client.Set(ctx, key, count, DemandCacheTTL).Err()
}
