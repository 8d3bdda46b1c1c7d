package service

import (
	"context"
	"log"
	"time"

	"fueldash/internal/domain"
	"fueldash/internal/geo"
	"fueldash/internal/redis"
	"fueldash/internal/repository"
)

// Actor identifies which party is driving an acceptance-protocol call.
type Actor string

const (
	ActorDriver   Actor = "driver"
	ActorCustomer Actor = "customer"
)

// AcceptOfferRequest contains the parameters for accepting an offer.
type AcceptOfferRequest struct {
	OfferID string
	// OrderID is set on the customer-facing route and cross-checked
	// against the offer. Empty on the driver route.
	OrderID string
	ActorID string
	Actor   Actor
	// ConfirmedDeliveryTime is when the driver commits to deliver.
	ConfirmedDeliveryTime time.Time
	// RateCents optionally overrides the offer's per-km delivery rate.
	RateCents int64
}

// RejectOfferRequest contains the parameters for rejecting an offer.
type RejectOfferRequest struct {
	OfferID string
	OrderID string
	ActorID string
	Actor   Actor
}

// AcceptResult contains the outcome of a successful acceptance.
type AcceptResult struct {
	Order   *domain.Order
	Offer   *domain.DispatchOffer
	Pricing PriceBreakdown
}

// AcceptanceService is the order acceptance state machine. Concurrent
// accept calls, and accepts racing the expiry sweep, are resolved purely
// through the repositories' conditional writes; the service never holds
// a lock across I/O and assumes multiple process instances.
type AcceptanceService struct {
	orderRepo           repository.OrderRepository
	offerRepo           repository.OfferRepository
	driverRepo          repository.DriverRepository
	pricingService      *PricingService
	locationStore       redis.LocationStoreInterface
	notificationService *NotificationService
}

// NewAcceptanceService creates a new AcceptanceService. locationStore
// and notificationService may be nil.
func NewAcceptanceService(
	orderRepo repository.OrderRepository,
	offerRepo repository.OfferRepository,
	driverRepo repository.DriverRepository,
	pricingService *PricingService,
	locationStore redis.LocationStoreInterface,
	notificationService *NotificationService,
) *AcceptanceService {
	return &AcceptanceService{
		orderRepo:           orderRepo,
		offerRepo:           offerRepo,
		driverRepo:          driverRepo,
		pricingService:      pricingService,
		locationStore:       locationStore,
		notificationService: notificationService,
	}
}

// AcceptOffer processes an accept action against one offer.
//
// The order-side conditional update is the single point that decides the
// race: whichever request flips the order out of its open state wins,
// everyone else gets ErrAssignmentConflict and is expected to refresh
// and retry elsewhere. The offer-side update failing after the order
// side succeeded is the one case requiring rollback.
func (s *AcceptanceService) AcceptOffer(ctx context.Context, req AcceptOfferRequest) (*AcceptResult, error) {
	if req.OfferID == "" {
		return nil, ErrInvalidOfferID
	}
	if req.ConfirmedDeliveryTime.IsZero() {
		return nil, ErrMissingDeliveryTime
	}

	offer, err := s.offerRepo.GetByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}
	if req.OrderID != "" && offer.OrderID != req.OrderID {
		return nil, ErrOfferOrderMismatch
	}

	order, err := s.orderRepo.GetByID(ctx, offer.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(req.Actor, req.ActorID, offer, order); err != nil {
		return nil, err
	}

	if offer.Expired(time.Now()) {
		return nil, ErrOfferExpired
	}
	if !offer.Status.IsOpen() {
		return nil, ErrOfferNotOpen
	}
	if !order.Status.IsOpen() {
		return nil, ErrOrderNotOpen
	}

	priorStatus := order.Status

	// Order-side compare-and-swap. Zero rows means another request won.
	won, err := s.orderRepo.AssignDriverIf(ctx, order.ID, offer.DriverID, req.ConfirmedDeliveryTime, priorStatus)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAssignmentConflict
	}

	// Offer-side compare-and-swap. Failure here is rare and means this
	// request is not actually the winner; roll the order back.
	won, err = s.offerRepo.UpdateStatusIf(ctx, offer.ID, domain.OfferStatusOffered, domain.OfferStatusAccepted)
	if err != nil || !won {
		if rbErr := s.orderRepo.RevertAssignment(ctx, order.ID, priorStatus); rbErr != nil {
			// The order looks unassigned to everyone else while this
			// driver believes they accepted. Surface loudly, never panic.
			log.Printf("CRITICAL: rollback failed for order %s after offer %s lost: %v", order.ID, offer.ID, rbErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrAssignmentConflict
	}

	// The rate the customer is charged must be the rate on record; a
	// driver-supplied override is written through to the winning offer.
	if req.RateCents > 0 && req.RateCents != offer.RateCents {
		if err := s.offerRepo.UpdateRate(ctx, offer.ID, req.RateCents); err != nil {
			log.Printf("failed to persist rate %d on offer %s: %v", req.RateCents, offer.ID, err)
		}
		offer.RateCents = req.RateCents
	}

	losers := s.openSiblingDrivers(ctx, order.ID, offer.ID)
	if _, err := s.offerRepo.RejectOpenSiblings(ctx, order.ID, offer.ID); err != nil {
		log.Printf("failed to reject sibling offers for order %s: %v", order.ID, err)
	}

	if err := s.driverRepo.UpdateAvailability(ctx, offer.DriverID, domain.DriverOnDelivery); err != nil {
		log.Printf("failed to mark driver %s on delivery: %v", offer.DriverID, err)
	}

	pricing := s.priceOrder(ctx, order, offer, req.RateCents)

	order.Status = domain.OrderStatusAssigned
	order.AssignedDriverID = offer.DriverID
	order.ConfirmedDeliveryTime = req.ConfirmedDeliveryTime
	order.FuelCostCents = pricing.FuelCostCents
	order.DeliveryFeeCents = pricing.DeliveryFeeCents
	order.ServiceFeeCents = pricing.ServiceFeeCents
	order.TotalCents = pricing.TotalCents
	offer.Status = domain.OfferStatusAccepted

	if s.notificationService != nil {
		s.notificationService.NotifyOrderAssigned(ctx, order, offer)
		s.notificationService.NotifyOffersRejected(losers, order)
	}

	return &AcceptResult{Order: order, Offer: offer, Pricing: pricing}, nil
}

// RejectOffer processes a reject action: the offer-only variant of the
// state machine, with no order mutation.
func (s *AcceptanceService) RejectOffer(ctx context.Context, req RejectOfferRequest) (*domain.DispatchOffer, error) {
	if req.OfferID == "" {
		return nil, ErrInvalidOfferID
	}

	offer, err := s.offerRepo.GetByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}
	if req.OrderID != "" && offer.OrderID != req.OrderID {
		return nil, ErrOfferOrderMismatch
	}

	order, err := s.orderRepo.GetByID(ctx, offer.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(req.Actor, req.ActorID, offer, order); err != nil {
		return nil, err
	}

	if !offer.Status.IsOpen() {
		return nil, ErrOfferNotOpen
	}

	won, err := s.offerRepo.UpdateStatusIf(ctx, offer.ID, domain.OfferStatusOffered, domain.OfferStatusRejected)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrOfferNotOpen
	}

	offer.Status = domain.OfferStatusRejected
	return offer, nil
}

// checkOwnership hides offers and orders from parties they don't belong
// to; a wrong owner sees NotFound rather than a hint the thing exists.
func (s *AcceptanceService) checkOwnership(actor Actor, actorID string, offer *domain.DispatchOffer, order *domain.Order) error {
	switch actor {
	case ActorDriver:
		if offer.DriverID != actorID {
			return repository.ErrNotFound
		}
	case ActorCustomer:
		if order.CustomerID != actorID {
			return repository.ErrNotFound
		}
	}
	return nil
}

// priceOrder computes and persists the final marketplace price. Pricing
// failures never undo an assignment that already won; they are logged
// and the breakdown stays zero until a later reprice.
func (s *AcceptanceService) priceOrder(ctx context.Context, order *domain.Order, offer *domain.DispatchOffer, rateOverride int64) PriceBreakdown {
	if s.pricingService == nil {
		return PriceBreakdown{}
	}

	rate := offer.RateCents
	if rateOverride > 0 {
		rate = rateOverride
	}

	pricing, err := s.pricingService.Quote(ctx, offer.DriverID, order.FuelTypeID, order.Litres, rate, s.deliveryDistanceKm(ctx, order, offer))
	if err != nil {
		log.Printf("pricing failed for order %s: %v", order.ID, err)
		return PriceBreakdown{}
	}

	if err := s.orderRepo.UpdatePricing(ctx, order.ID, repository.OrderPricing{
		FuelCostCents:    pricing.FuelCostCents,
		DeliveryFeeCents: pricing.DeliveryFeeCents,
		ServiceFeeCents:  pricing.ServiceFeeCents,
		TotalCents:       pricing.TotalCents,
	}); err != nil {
		log.Printf("failed to persist pricing for order %s: %v", order.ID, err)
	}

	return pricing
}

// deliveryDistanceKm measures from the driver's last known position to
// the drop point. An unknown position prices the delivery leg at zero.
func (s *AcceptanceService) deliveryDistanceKm(ctx context.Context, order *domain.Order, offer *domain.DispatchOffer) float64 {
	if s.locationStore == nil {
		return 0
	}

	loc, err := s.locationStore.GetLocation(ctx, offer.DriverID)
	if err != nil || loc == nil {
		log.Printf("no location for driver %s, delivery fee distance is zero", offer.DriverID)
		return 0
	}

	km, err := geo.DistanceKm(loc.Lat, loc.Lng, order.DropLat, order.DropLng)
	if err != nil {
		log.Printf("distance computation failed for order %s: %v", order.ID, err)
		return 0
	}
	return km
}

// openSiblingDrivers snapshots the drivers holding still-open sibling
// offers before the bulk rejection, for the losing-side fanout.
func (s *AcceptanceService) openSiblingDrivers(ctx context.Context, orderID, winnerOfferID string) []string {
	offers, err := s.offerRepo.ListByOrder(ctx, orderID)
	if err != nil {
		log.Printf("failed to list offers for order %s: %v", orderID, err)
		return nil
	}

	var drivers []string
	for _, o := range offers {
		if o.ID != winnerOfferID && o.Status.IsOpen() {
			drivers = append(drivers, o.DriverID)
		}
	}
	return drivers
}
