package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fueldash/internal/domain"
	"fueldash/internal/redis"
	"fueldash/internal/repository"
)

const dispatchLockTTL = 30 * time.Second

// DispatchConfig tunes the offer engine.
type DispatchConfig struct {
	// PremiumWindow is how long premium drivers get first refusal.
	PremiumWindow time.Duration
	// StandardWindow is how long the all-drivers batch stays open.
	StandardWindow time.Duration
	// DefaultRateCents is the per-km delivery rate offers carry until a
	// driver proposes their own.
	DefaultRateCents int64
	// SearchRadiusKm restricts offers to drivers near the drop point.
	// Zero disables the geo filter.
	SearchRadiusKm float64
}

// DefaultDispatchConfig returns the default dispatch configuration.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		PremiumWindow:    5 * time.Minute,
		StandardWindow:   15 * time.Minute,
		DefaultRateCents: 500,
		SearchRadiusKm:   0,
	}
}

// DispatchService creates offers for eligible drivers when an order is
// created and sweeps expired offers.
//
// Priority is encoded entirely in row state and expiry timestamps: the
// premium batch is inserted with the short window first, then the
// all-drivers batch with the long window, relying on the conditional
// insert to skip drivers already offered. Acceptance and sweep logic
// need no knowledge of the tiering.
type DispatchService struct {
	driverRepo          repository.DriverRepository
	offerRepo           repository.OfferRepository
	locationStore       redis.LocationStoreInterface
	lockStore           redis.LockStoreInterface
	notificationService *NotificationService
	cfg                 DispatchConfig
}

// NewDispatchService creates a new DispatchService. locationStore,
// lockStore and notificationService may be nil.
func NewDispatchService(
	driverRepo repository.DriverRepository,
	offerRepo repository.OfferRepository,
	locationStore redis.LocationStoreInterface,
	lockStore redis.LockStoreInterface,
	notificationService *NotificationService,
	cfg DispatchConfig,
) *DispatchService {
	return &DispatchService{
		driverRepo:          driverRepo,
		offerRepo:           offerRepo,
		locationStore:       locationStore,
		lockStore:           lockStore,
		notificationService: notificationService,
		cfg:                 cfg,
	}
}

// CreateOffers writes dispatch offers for every eligible driver.
//
// Zero eligible drivers is a valid terminal condition, not an error: the
// order simply stays in CREATED awaiting a retry or manual dispatch.
// Returns the number of offers actually inserted.
func (s *DispatchService) CreateOffers(ctx context.Context, order *domain.Order) (int64, error) {
	// Best-effort duplicate-work guard for retried order creation. The
	// conditional insert below is what actually keeps offers unique.
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireDispatchLock(ctx, order.ID, dispatchLockTTL)
		if err == nil && !locked {
			log.Printf("dispatch already in progress for order %s, skipping", order.ID)
			return 0, nil
		}
		if locked {
			defer func() { _ = s.lockStore.ReleaseDispatchLock(ctx, order.ID) }()
		}
	}

	drivers, err := s.driverRepo.ListEligible(ctx)
	if err != nil {
		return 0, err
	}

	drivers = s.filterByProximity(ctx, order, drivers)
	if len(drivers) == 0 {
		log.Printf("no eligible drivers for order %s, order stays in %s", order.ID, order.Status)
		return 0, nil
	}

	now := time.Now()

	// Premium drivers get the short first-refusal window.
	var premiumBatch []*domain.DispatchOffer
	for _, driver := range drivers {
		if driver.Premium == domain.PremiumActive {
			premiumBatch = append(premiumBatch, s.newOffer(order, driver, now, now.Add(s.cfg.PremiumWindow)))
		}
	}

	created, err := s.offerRepo.CreateBatch(ctx, premiumBatch)
	if err != nil {
		return 0, err
	}

	// All eligible drivers get the long window. The conflict-ignoring
	// insert skips drivers already holding the premium offer, so premium
	// drivers are never double-offered and non-premium drivers only ever
	// see the long window.
	allBatch := make([]*domain.DispatchOffer, 0, len(drivers))
	for _, driver := range drivers {
		allBatch = append(allBatch, s.newOffer(order, driver, now, now.Add(s.cfg.StandardWindow)))
	}

	n, err := s.offerRepo.CreateBatch(ctx, allBatch)
	if err != nil {
		return created, err
	}
	created += n

	if s.notificationService != nil {
		for _, driver := range drivers {
			s.notificationService.NotifyOfferReceived(ctx, driver.ID, order)
		}
	}

	return created, nil
}

// SweepExpiredOffers transitions every still-open offer whose window has
// passed to TIMEOUT. Safe to run concurrently with acceptance attempts
// and with itself.
func (s *DispatchService) SweepExpiredOffers(ctx context.Context) (int64, error) {
	return s.offerRepo.SweepExpired(ctx, time.Now())
}

// filterByProximity restricts the driver set to those near the drop
// point when the geo filter is configured. On any geo failure it fails
// open and keeps the full set.
func (s *DispatchService) filterByProximity(ctx context.Context, order *domain.Order, drivers []*domain.Driver) []*domain.Driver {
	if s.locationStore == nil || s.cfg.SearchRadiusKm <= 0 {
		return drivers
	}

	nearby, err := s.locationStore.FindNearbyDrivers(ctx, order.DropLat, order.DropLng, s.cfg.SearchRadiusKm)
	if err != nil {
		log.Printf("proximity lookup failed for order %s: %v", order.ID, err)
		return drivers
	}

	near := make(map[string]bool, len(nearby))
	for _, loc := range nearby {
		near[loc.DriverID] = true
	}

	filtered := drivers[:0]
	for _, driver := range drivers {
		if near[driver.ID] {
			filtered = append(filtered, driver)
		}
	}
	return filtered
}

func (s *DispatchService) newOffer(order *domain.Order, driver *domain.Driver, now, expiresAt time.Time) *domain.DispatchOffer {
	return &domain.DispatchOffer{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		DriverID:  driver.ID,
		Status:    domain.OfferStatusOffered,
		ExpiresAt: expiresAt,
		RateCents: s.cfg.DefaultRateCents,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
