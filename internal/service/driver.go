package service

import (
	"context"
	"errors"

	"fueldash/internal/domain"
	"fueldash/internal/redis"
	"fueldash/internal/repository"
)

// DriverService handles driver operations.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
}

// NewDriverService creates a new DriverService. cacheStore may be nil.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
	}
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation updates a driver's location in the geo index.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}
	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	if err := s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng); err != nil {
		return err
	}

	s.refreshCache(ctx, req.DriverID)
	return nil
}

// SetAvailability updates a driver's availability. Going offline also
// removes the driver from the geo index so dispatch stops seeing them.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, availability domain.DriverAvailability) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	switch availability {
	case domain.DriverAvailable, domain.DriverOnDelivery, domain.DriverOffline:
	default:
		return ErrInvalidAvailability
	}

	if err := s.driverRepo.UpdateAvailability(ctx, driverID, availability); err != nil {
		return err
	}

	if availability == domain.DriverOffline {
		if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
			return err
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	}
	return nil
}

// refreshCache re-caches the driver record after a location update.
func (s *DriverService) refreshCache(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			_ = s.cacheStore.InvalidateDriver(ctx, driverID)
		}
		return
	}

	_ = s.cacheStore.SetDriver(ctx, &redis.CachedDriver{
		ID:           driver.ID,
		Name:         driver.Name,
		Phone:        driver.Phone,
		Availability: string(driver.Availability),
		Premium:      string(driver.Premium),
		Compliance:   string(driver.Compliance),
	})
}
