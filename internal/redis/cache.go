package redis

import (
	"context"
	"encoding/json"
	"strconv"
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
	DriverCacheTTL    = 30 * time.Second // Driver availability changes frequently
	FuelPriceCacheTTL = 5 * time.Minute  // Driver fuel prices change rarely
)

// Key prefixes
const (
	driverCachePrefix    = "cache:driver:"
	fuelPriceCachePrefix = "cache:fuelprice:"
)

// CachedDriver represents a cached driver entity.
type CachedDriver struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Availability string `json:"availability"`
	Premium      string `json:"premium"`
	Compliance   string `json:"compliance"`
}

// GetDriver retrieves a driver from cache. A nil result means cache miss.
func (s *CacheStore) GetDriver(ctx context.Context, driverID string) (*CachedDriver, error) {
	data, err := s.client.Get(ctx, driverCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
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
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, driverCachePrefix+driver.ID, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, driverCachePrefix+driverID).Err()
}

// GetFuelPriceCents retrieves a cached (driver, fuel type) per-litre
// price. The bool reports whether the cache held a value.
func (s *CacheStore) GetFuelPriceCents(ctx context.Context, driverID, fuelTypeID string) (int64, bool, error) {
	key := fuelPriceCachePrefix + driverID + ":" + fuelTypeID
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}

	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

// SetFuelPriceCents caches a (driver, fuel type) per-litre price.
func (s *CacheStore) SetFuelPriceCents(ctx context.Context, driverID, fuelTypeID string, priceCents int64) error {
	key := fuelPriceCachePrefix + driverID + ":" + fuelTypeID
	return s.client.Set(ctx, key, strconv.FormatInt(priceCents, 10), FuelPriceCacheTTL).Err()
}
