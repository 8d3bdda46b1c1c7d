package service

import (
	"context"
	"errors"
	"math"

	"fueldash/internal/redis"
	"fueldash/internal/repository"
)

// PriceBreakdown is the marketplace price for an accepted order, in
// minor currency units.
type PriceBreakdown struct {
	FuelCostCents    int64
	DeliveryFeeCents int64
	ServiceFeeCents  int64
	TotalCents       int64
}

// PricingService computes marketplace pricing at the moment an offer is
// accepted: a driver-set fuel price, the driver's proposed per-km
// delivery rate, and a flat platform service fee.
type PricingService struct {
	fuelPriceRepo   repository.FuelPriceRepository
	cacheStore      *redis.CacheStore
	serviceFeeCents int64
}

// NewPricingService creates a new PricingService. cacheStore may be nil.
func NewPricingService(fuelPriceRepo repository.FuelPriceRepository, cacheStore *redis.CacheStore, serviceFeeCents int64) *PricingService {
	return &PricingService{
		fuelPriceRepo:   fuelPriceRepo,
		cacheStore:      cacheStore,
		serviceFeeCents: serviceFeeCents,
	}
}

// Quote computes the full price for litres of fuel delivered over
// distanceKm at the offer's rateCents per km.
//
// All arithmetic is integer minor units with round-half-up applied at
// each multiplication, so fractional drift never compounds. A driver
// with no active price for the fuel type yields a fuel cost of zero and
// the order proceeds; that is deliberate business policy, not an error.
func (s *PricingService) Quote(ctx context.Context, driverID, fuelTypeID string, litres float64, rateCents int64, distanceKm float64) (PriceBreakdown, error) {
	priceCents, err := s.fuelPriceCents(ctx, driverID, fuelTypeID)
	if err != nil {
		return PriceBreakdown{}, err
	}

	breakdown := PriceBreakdown{
		FuelCostCents:    roundHalfUp(float64(priceCents) * litres),
		DeliveryFeeCents: roundHalfUp(float64(rateCents) * distanceKm),
		ServiceFeeCents:  s.serviceFeeCents,
	}
	breakdown.TotalCents = breakdown.FuelCostCents + breakdown.DeliveryFeeCents + breakdown.ServiceFeeCents

	return breakdown, nil
}

// fuelPriceCents resolves the driver's per-litre price, consulting the
// cache first. A missing active pricing record maps to zero.
func (s *PricingService) fuelPriceCents(ctx context.Context, driverID, fuelTypeID string) (int64, error) {
	if s.cacheStore != nil {
		if price, ok, err := s.cacheStore.GetFuelPriceCents(ctx, driverID, fuelTypeID); err == nil && ok {
			return price, nil
		}
	}

	price, err := s.fuelPriceRepo.GetActivePriceCents(ctx, driverID, fuelTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetFuelPriceCents(ctx, driverID, fuelTypeID, price)
	}
	return price, nil
}

// roundHalfUp rounds to the nearest integer, halves away from zero for
// the positive amounts money math deals in.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
