package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
	"fueldash/internal/service"
)

type acceptanceFixture struct {
	orderRepo  *MockOrderRepository
	offerRepo  *MockOfferRepository
	driverRepo *MockDriverRepository
	svc        *service.AcceptanceService
}

func newAcceptanceFixture() *acceptanceFixture {
	orderRepo := NewMockOrderRepository()
	offerRepo := NewMockOfferRepository()
	driverRepo := NewMockDriverRepository()
	return &acceptanceFixture{
		orderRepo:  orderRepo,
		offerRepo:  offerRepo,
		driverRepo: driverRepo,
		svc:        service.NewAcceptanceService(orderRepo, offerRepo, driverRepo, nil, nil, nil),
	}
}

// seedOffer wires an open order, a driver and an open offer together.
func (f *acceptanceFixture) seedOffer(orderID, offerID, driverID string) {
	f.orderRepo.AddOrder(newTestOrder(orderID))
	f.driverRepo.AddDriver(newEligibleDriver(driverID, domain.PremiumInactive))
	f.offerRepo.AddOffer(&domain.DispatchOffer{
		ID:        offerID,
		OrderID:   orderID,
		DriverID:  driverID,
		Status:    domain.OfferStatusOffered,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		RateCents: 500,
	})
}

func driverAccept(offerID, driverID string) service.AcceptOfferRequest {
	return service.AcceptOfferRequest{
		OfferID:               offerID,
		ActorID:               driverID,
		Actor:                 service.ActorDriver,
		ConfirmedDeliveryTime: time.Now().Add(2 * time.Hour),
	}
}

func TestAccept_HappyPath(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	result, err := f.svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-1"))
	if err != nil {
		t.Fatalf("AcceptOffer failed: %v", err)
	}

	if result.Order.Status != domain.OrderStatusAssigned {
		t.Errorf("expected order ASSIGNED, got %s", result.Order.Status)
	}
	if result.Order.AssignedDriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", result.Order.AssignedDriverID)
	}
	if result.Offer.Status != domain.OfferStatusAccepted {
		t.Errorf("expected offer ACCEPTED, got %s", result.Offer.Status)
	}

	// Stored state matches the returned view.
	stored := f.orderRepo.GetOrder("order-1")
	if stored.Status != domain.OrderStatusAssigned || stored.AssignedDriverID != "driver-1" {
		t.Errorf("stored order not assigned: %+v", stored)
	}
	if stored.ConfirmedDeliveryTime.IsZero() {
		t.Error("confirmed delivery time not persisted")
	}

	// The winning driver goes on delivery.
	if got := f.driverRepo.GetDriver("driver-1").Availability; got != domain.DriverOnDelivery {
		t.Errorf("expected driver ON_DELIVERY, got %s", got)
	}
}

func TestAccept_CustomerRoute(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	result, err := f.svc.AcceptOffer(ctx, service.AcceptOfferRequest{
		OfferID:               "offer-1",
		OrderID:               "order-1",
		ActorID:               "customer-1",
		Actor:                 service.ActorCustomer,
		ConfirmedDeliveryTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("customer accept failed: %v", err)
	}
	if result.Order.AssignedDriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", result.Order.AssignedDriverID)
	}
}

func TestAccept_OfferOrderMismatch(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	req := service.AcceptOfferRequest{
		OfferID:               "offer-1",
		OrderID:               "some-other-order",
		ActorID:               "customer-1",
		Actor:                 service.ActorCustomer,
		ConfirmedDeliveryTime: time.Now().Add(time.Hour),
	}
	if _, err := f.svc.AcceptOffer(ctx, req); !errors.Is(err, service.ErrOfferOrderMismatch) {
		t.Errorf("expected ErrOfferOrderMismatch, got %v", err)
	}
}

func TestAccept_WrongOwnerSeesNotFound(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	// Another driver probing someone else's offer must not learn it exists.
	if _, err := f.svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-2")); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong driver, got %v", err)
	}

	// Same for a customer who doesn't own the order.
	req := service.AcceptOfferRequest{
		OfferID:               "offer-1",
		ActorID:               "customer-2",
		Actor:                 service.ActorCustomer,
		ConfirmedDeliveryTime: time.Now().Add(time.Hour),
	}
	if _, err := f.svc.AcceptOffer(ctx, req); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong customer, got %v", err)
	}
}

func TestAccept_ExpiredOffer(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")
	f.offerRepo.GetOffer("offer-1").ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := f.svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-1")); !errors.Is(err, service.ErrOfferExpired) {
		t.Errorf("expected ErrOfferExpired, got %v", err)
	}
	// Nothing moved.
	if got := f.orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusCreated {
		t.Errorf("order must be untouched, got %s", got)
	}
}

func TestAccept_MissingDeliveryTime(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	req := driverAccept("offer-1", "driver-1")
	req.ConfirmedDeliveryTime = time.Time{}
	if _, err := f.svc.AcceptOffer(ctx, req); !errors.Is(err, service.ErrMissingDeliveryTime) {
		t.Errorf("expected ErrMissingDeliveryTime, got %v", err)
	}
}

func TestAccept_ClosedOfferAndClosedOrder(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")
	f.offerRepo.GetOffer("offer-1").Status = domain.OfferStatusTimeout

	if _, err := f.svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-1")); !errors.Is(err, service.ErrOfferNotOpen) {
		t.Errorf("expected ErrOfferNotOpen, got %v", err)
	}

	f.seedOffer("order-2", "offer-2", "driver-2")
	f.orderRepo.GetOrder("order-2").Status = domain.OrderStatusCancelled

	if _, err := f.svc.AcceptOffer(ctx, driverAccept("offer-2", "driver-2")); !errors.Is(err, service.ErrOrderNotOpen) {
		t.Errorf("expected ErrOrderNotOpen, got %v", err)
	}
}

func TestAccept_RejectsOpenSiblings(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	// Two sibling offers: one open, one already timed out.
	f.driverRepo.AddDriver(newEligibleDriver("driver-2", domain.PremiumInactive))
	f.offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-2", OrderID: "order-1", DriverID: "driver-2",
		Status: domain.OfferStatusOffered, ExpiresAt: time.Now().Add(10 * time.Minute),
	})
	f.offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-3", OrderID: "order-1", DriverID: "driver-3",
		Status: domain.OfferStatusTimeout,
	})

	if _, err := f.svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-1")); err != nil {
		t.Fatalf("AcceptOffer failed: %v", err)
	}

	if got := f.offerRepo.GetOffer("offer-2").Status; got != domain.OfferStatusRejected {
		t.Errorf("open sibling should be REJECTED, got %s", got)
	}
	if got := f.offerRepo.GetOffer("offer-3").Status; got != domain.OfferStatusTimeout {
		t.Errorf("timed-out sibling must keep its state, got %s", got)
	}
	if got := f.offerRepo.GetOffer("offer-1").Status; got != domain.OfferStatusAccepted {
		t.Errorf("winner should be ACCEPTED, got %s", got)
	}
}

func TestAccept_ConcurrentAcceptsExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.orderRepo.AddOrder(newTestOrder("order-1"))

	const drivers = 10
	offerIDs := make([]string, drivers)
	for i := 0; i < drivers; i++ {
		driverID := string(rune('a' + i))
		offerIDs[i] = "offer-" + driverID
		f.driverRepo.AddDriver(newEligibleDriver(driverID, domain.PremiumInactive))
		f.offerRepo.AddOffer(&domain.DispatchOffer{
			ID:        offerIDs[i],
			OrderID:   "order-1",
			DriverID:  driverID,
			Status:    domain.OfferStatusOffered,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		})
	}

	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			driverID := string(rune('a' + i))
			_, err := f.svc.AcceptOffer(ctx, driverAccept(offerIDs[i], driverID))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, service.ErrAssignmentConflict),
				errors.Is(err, service.ErrOrderNotOpen),
				errors.Is(err, service.ErrOfferNotOpen):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != drivers-1 {
		t.Errorf("expected %d conflicts, got %d", drivers-1, conflicts)
	}

	// Exactly one offer accepted, the rest rejected or still racing the
	// sibling cleanup; never two accepted.
	if got := f.offerRepo.CountByStatus(domain.OfferStatusAccepted); got != 1 {
		t.Fatalf("expected exactly 1 ACCEPTED offer, got %d", got)
	}

	order := f.orderRepo.GetOrder("order-1")
	if order.Status != domain.OrderStatusAssigned || order.AssignedDriverID == "" {
		t.Errorf("order must be assigned to the single winner: %+v", order)
	}
}

func TestAccept_RollsBackOrderWhenOfferSideLoses(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")
	f.offerRepo.UpdateStatusIfError = ErrMockTimeout

	_, err := f.svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-1"))
	if !errors.Is(err, ErrMockTimeout) {
		t.Fatalf("expected the offer-side error to surface, got %v", err)
	}

	// The order-side write must have been rolled back to its prior state.
	order := f.orderRepo.GetOrder("order-1")
	if order.Status != domain.OrderStatusCreated {
		t.Errorf("expected order rolled back to CREATED, got %s", order.Status)
	}
	if order.AssignedDriverID != "" {
		t.Errorf("expected driver assignment cleared, got %q", order.AssignedDriverID)
	}
	if got := atomic.LoadInt32(&f.orderRepo.RevertCallCount); got != 1 {
		t.Errorf("expected 1 rollback call, got %d", got)
	}

	// The driver must not be marked on delivery.
	if got := f.driverRepo.GetDriver("driver-1").Availability; got != domain.DriverAvailable {
		t.Errorf("losing driver must stay AVAILABLE, got %s", got)
	}
}

func TestAccept_PricesOrderOnAcceptance(t *testing.T) {
	ctx := context.Background()

	orderRepo := NewMockOrderRepository()
	offerRepo := NewMockOfferRepository()
	driverRepo := NewMockDriverRepository()
	fuelPriceRepo := NewMockFuelPriceRepository()
	fuelPriceRepo.SetPrice("driver-1", "diesel", 200)

	pricingService := service.NewPricingService(fuelPriceRepo, nil, 5000)
	svc := service.NewAcceptanceService(orderRepo, offerRepo, driverRepo, pricingService, nil, nil)

	orderRepo.AddOrder(newTestOrder("order-1"))
	driverRepo.AddDriver(newEligibleDriver("driver-1", domain.PremiumInactive))
	offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-1", OrderID: "order-1", DriverID: "driver-1",
		Status: domain.OfferStatusOffered, ExpiresAt: time.Now().Add(10 * time.Minute),
		RateCents: 500,
	})

	result, err := svc.AcceptOffer(ctx, driverAccept("offer-1", "driver-1"))
	if err != nil {
		t.Fatalf("AcceptOffer failed: %v", err)
	}

	// 100 litres at 200 cents; no location store so the delivery leg is
	// priced at zero distance; flat 5000 service fee.
	if result.Pricing.FuelCostCents != 20000 {
		t.Errorf("expected fuel cost 20000, got %d", result.Pricing.FuelCostCents)
	}
	if result.Pricing.DeliveryFeeCents != 0 {
		t.Errorf("expected zero delivery fee without a location, got %d", result.Pricing.DeliveryFeeCents)
	}
	if result.Pricing.TotalCents != 25000 {
		t.Errorf("expected total 25000, got %d", result.Pricing.TotalCents)
	}

	stored := orderRepo.GetOrder("order-1")
	if stored.TotalCents != 25000 {
		t.Errorf("pricing not persisted on the order: %+v", stored)
	}
}

func TestAccept_RateOverridePersistedOnOffer(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	req := driverAccept("offer-1", "driver-1")
	req.RateCents = 750

	result, err := f.svc.AcceptOffer(ctx, req)
	if err != nil {
		t.Fatalf("AcceptOffer failed: %v", err)
	}

	// The rate the order was settled at must be on the offer record, not
	// only in the request that carried it.
	if result.Offer.RateCents != 750 {
		t.Errorf("returned offer rate: expected 750, got %d", result.Offer.RateCents)
	}
	if stored := f.offerRepo.GetOffer("offer-1"); stored.RateCents != 750 {
		t.Errorf("stored offer rate: expected 750, got %d", stored.RateCents)
	}
}

func TestAccept_FansOutToWinnerCustomerAndLosers(t *testing.T) {
	ctx := context.Background()

	orderRepo := NewMockOrderRepository()
	offerRepo := NewMockOfferRepository()
	driverRepo := NewMockDriverRepository()
	notificationRepo := NewMockNotificationRepository()
	live := NewMockLiveChannel(true)

	notificationService := service.NewNotificationService(notificationRepo, NewMockDeviceTokenRepository(), live, nil)
	svc := service.NewAcceptanceService(orderRepo, offerRepo, driverRepo, nil, nil, notificationService)

	orderRepo.AddOrder(newTestOrder("order-1"))
	driverRepo.AddDriver(newEligibleDriver("winner", domain.PremiumInactive))
	driverRepo.AddDriver(newEligibleDriver("loser", domain.PremiumInactive))
	offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-w", OrderID: "order-1", DriverID: "winner",
		Status: domain.OfferStatusOffered, ExpiresAt: time.Now().Add(10 * time.Minute),
	})
	offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-l", OrderID: "order-1", DriverID: "loser",
		Status: domain.OfferStatusOffered, ExpiresAt: time.Now().Add(10 * time.Minute),
	})

	if _, err := svc.AcceptOffer(ctx, driverAccept("offer-w", "winner")); err != nil {
		t.Fatalf("AcceptOffer failed: %v", err)
	}

	// Loser fanout runs on a background goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(notificationRepo.ForUser("loser")) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := notificationRepo.ForUser("customer-1"); len(got) != 1 {
		t.Errorf("expected 1 customer notification, got %d", len(got))
	}
	if got := notificationRepo.ForUser("winner"); len(got) != 1 {
		t.Errorf("expected 1 winner notification, got %d", len(got))
	}
	losers := notificationRepo.ForUser("loser")
	if len(losers) != 1 {
		t.Fatalf("expected 1 loser notification, got %d", len(losers))
	}
	if losers[0].Type != domain.NotificationOfferRejected {
		t.Errorf("expected %s, got %s", domain.NotificationOfferRejected, losers[0].Type)
	}
}

func TestReject_ClosesOfferWithoutTouchingOrder(t *testing.T) {
	ctx := context.Background()
	f := newAcceptanceFixture()
	f.seedOffer("order-1", "offer-1", "driver-1")

	offer, err := f.svc.RejectOffer(ctx, service.RejectOfferRequest{
		OfferID: "offer-1",
		ActorID: "driver-1",
		Actor:   service.ActorDriver,
	})
	if err != nil {
		t.Fatalf("RejectOffer failed: %v", err)
	}
	if offer.Status != domain.OfferStatusRejected {
		t.Errorf("expected REJECTED, got %s", offer.Status)
	}
	if got := f.orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusCreated {
		t.Errorf("reject must not touch the order, got %s", got)
	}

	// Rejecting again fails: the offer is no longer open.
	_, err = f.svc.RejectOffer(ctx, service.RejectOfferRequest{
		OfferID: "offer-1",
		ActorID: "driver-1",
		Actor:   service.ActorDriver,
	})
	if !errors.Is(err, service.ErrOfferNotOpen) {
		t.Errorf("expected ErrOfferNotOpen on double reject, got %v", err)
	}
}
