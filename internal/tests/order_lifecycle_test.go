package tests

import (
	"context"
	"errors"
	"testing"

	"fueldash/internal/domain"
	"fueldash/internal/service"
)

type orderFixture struct {
	orderRepo  *MockOrderRepository
	offerRepo  *MockOfferRepository
	driverRepo *MockDriverRepository
	svc        *service.OrderService
}

func newOrderFixture() *orderFixture {
	orderRepo := NewMockOrderRepository()
	offerRepo := NewMockOfferRepository()
	driverRepo := NewMockDriverRepository()
	dispatch := service.NewDispatchService(driverRepo, offerRepo, nil, nil, nil, service.DefaultDispatchConfig())
	return &orderFixture{
		orderRepo:  orderRepo,
		offerRepo:  offerRepo,
		driverRepo: driverRepo,
		svc:        service.NewOrderService(orderRepo, offerRepo, driverRepo, dispatch, nil),
	}
}

func TestCreateOrder_TriggersDispatch(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.driverRepo.AddDriver(newEligibleDriver("driver-1", domain.PremiumInactive))

	resp, err := f.svc.CreateOrder(ctx, service.CreateOrderRequest{
		CustomerID: "customer-1",
		FuelTypeID: "diesel",
		Litres:     50,
		DropLat:    6.5244,
		DropLng:    3.3792,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if resp.Order.Status != domain.OrderStatusCreated {
		t.Errorf("expected CREATED, got %s", resp.Order.Status)
	}
	if resp.OffersCreated != 1 {
		t.Errorf("expected 1 dispatched offer, got %d", resp.OffersCreated)
	}
	if f.orderRepo.CountOrders() != 1 {
		t.Errorf("expected 1 persisted order")
	}
	offers := f.offerRepo.OffersForOrder(resp.Order.ID)
	if len(offers) != 1 || offers[0].DriverID != "driver-1" {
		t.Errorf("expected offer for driver-1, got %+v", offers)
	}
}

func TestCreateOrder_DispatchFailureDoesNotLoseOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.driverRepo.AddDriver(newEligibleDriver("driver-1", domain.PremiumInactive))
	f.offerRepo.CreateBatchError = ErrMockTimeout

	resp, err := f.svc.CreateOrder(ctx, service.CreateOrderRequest{
		CustomerID: "customer-1",
		FuelTypeID: "diesel",
		Litres:     50,
		DropLat:    6.5244,
		DropLng:    3.3792,
	})
	if err != nil {
		t.Fatalf("order creation must survive dispatch failure: %v", err)
	}
	if resp.OffersCreated != 0 {
		t.Errorf("expected 0 offers, got %d", resp.OffersCreated)
	}
	if f.orderRepo.CountOrders() != 1 {
		t.Error("order must still be persisted")
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	valid := service.CreateOrderRequest{
		CustomerID: "customer-1",
		FuelTypeID: "diesel",
		Litres:     50,
		DropLat:    6.5,
		DropLng:    3.3,
	}

	cases := []struct {
		name    string
		mutate  func(*service.CreateOrderRequest)
		wantErr error
	}{
		{"missing customer", func(r *service.CreateOrderRequest) { r.CustomerID = "" }, service.ErrInvalidCustomerID},
		{"missing fuel type", func(r *service.CreateOrderRequest) { r.FuelTypeID = "" }, service.ErrInvalidFuelType},
		{"zero litres", func(r *service.CreateOrderRequest) { r.Litres = 0 }, service.ErrInvalidLitres},
		{"negative litres", func(r *service.CreateOrderRequest) { r.Litres = -5 }, service.ErrInvalidLitres},
		{"bad latitude", func(r *service.CreateOrderRequest) { r.DropLat = 91 }, service.ErrInvalidDropLocation},
		{"bad longitude", func(r *service.CreateOrderRequest) { r.DropLng = -181 }, service.ErrInvalidDropLocation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if _, err := f.svc.CreateOrder(ctx, req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCancelOrder_OpenOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orderRepo.AddOrder(newTestOrder("order-1"))

	order, err := f.svc.CancelOrder(ctx, service.CancelOrderRequest{
		OrderID:     "order-1",
		CancelledBy: "customer-1",
		Reason:      "changed my mind",
	})
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if order.Status != domain.OrderStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", order.Status)
	}
	if order.CancelReason != "changed my mind" {
		t.Errorf("reason not recorded: %q", order.CancelReason)
	}

	// Double cancel is rejected.
	_, err = f.svc.CancelOrder(ctx, service.CancelOrderRequest{OrderID: "order-1"})
	if !errors.Is(err, service.ErrOrderAlreadyCancelled) {
		t.Errorf("expected ErrOrderAlreadyCancelled, got %v", err)
	}
}

func TestCancelOrder_FreesAssignedDriver(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := newTestOrder("order-1")
	order.Status = domain.OrderStatusAssigned
	order.AssignedDriverID = "driver-1"
	f.orderRepo.AddOrder(order)

	driver := newEligibleDriver("driver-1", domain.PremiumInactive)
	driver.Availability = domain.DriverOnDelivery
	f.driverRepo.AddDriver(driver)

	if _, err := f.svc.CancelOrder(ctx, service.CancelOrderRequest{OrderID: "order-1", Reason: "no longer needed"}); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if got := f.driverRepo.GetDriver("driver-1").Availability; got != domain.DriverAvailable {
		t.Errorf("driver should be freed on cancel, got %s", got)
	}
}

func TestCancelOrder_RejectsOpenOffers(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orderRepo.AddOrder(newTestOrder("order-1"))
	f.offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-1", OrderID: "order-1", DriverID: "driver-1",
		Status: domain.OfferStatusOffered,
	})
	f.offerRepo.AddOffer(&domain.DispatchOffer{
		ID: "offer-2", OrderID: "order-1", DriverID: "driver-2",
		Status: domain.OfferStatusOffered,
	})

	if _, err := f.svc.CancelOrder(ctx, service.CancelOrderRequest{OrderID: "order-1", Reason: "not needed"}); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	// No driver should be left holding an open offer for a dead order.
	for _, offer := range f.offerRepo.OffersForOrder("order-1") {
		if offer.Status != domain.OfferStatusRejected {
			t.Errorf("offer %s: expected REJECTED after cancel, got %s", offer.ID, offer.Status)
		}
	}
}

func TestCancelOrder_ClearsAssignedDriver(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := newTestOrder("order-1")
	order.Status = domain.OrderStatusAssigned
	order.AssignedDriverID = "driver-1"
	f.orderRepo.AddOrder(order)
	f.driverRepo.AddDriver(newEligibleDriver("driver-1", domain.PremiumInactive))

	got, err := f.svc.CancelOrder(ctx, service.CancelOrderRequest{OrderID: "order-1", Reason: "no longer needed"})
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	// A cancelled order must not name a driver, in the returned view or
	// the stored row.
	if got.AssignedDriverID != "" {
		t.Errorf("returned order retains driver %q", got.AssignedDriverID)
	}
	if stored := f.orderRepo.GetOrder("order-1"); stored.AssignedDriverID != "" {
		t.Errorf("stored order retains driver %q", stored.AssignedDriverID)
	}
}

func TestCancelOrder_TooLate(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := newTestOrder("order-1")
	order.Status = domain.OrderStatusPickedUp
	order.AssignedDriverID = "driver-1"
	f.orderRepo.AddOrder(order)

	// Fuel already picked up; cancellation window has closed.
	if _, err := f.svc.CancelOrder(ctx, service.CancelOrderRequest{OrderID: "order-1"}); !errors.Is(err, service.ErrOrderCannotBeCancelled) {
		t.Errorf("expected ErrOrderCannotBeCancelled, got %v", err)
	}
}

func TestDeliveryProgress_FullChain(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := newTestOrder("order-1")
	order.Status = domain.OrderStatusAssigned
	order.AssignedDriverID = "driver-1"
	f.orderRepo.AddOrder(order)

	driver := newEligibleDriver("driver-1", domain.PremiumInactive)
	driver.Availability = domain.DriverOnDelivery
	f.driverRepo.AddDriver(driver)

	got, err := f.svc.StartDelivery(ctx, "order-1", "driver-1")
	if err != nil {
		t.Fatalf("StartDelivery failed: %v", err)
	}
	if got.Status != domain.OrderStatusEnRoute {
		t.Fatalf("expected EN_ROUTE, got %s", got.Status)
	}

	got, err = f.svc.MarkPickedUp(ctx, "order-1", "driver-1")
	if err != nil {
		t.Fatalf("MarkPickedUp failed: %v", err)
	}
	if got.Status != domain.OrderStatusPickedUp {
		t.Fatalf("expected PICKED_UP, got %s", got.Status)
	}

	got, err = f.svc.CompleteDelivery(ctx, "order-1", "driver-1")
	if err != nil {
		t.Fatalf("CompleteDelivery failed: %v", err)
	}
	if got.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", got.Status)
	}

	// Completing delivery frees the driver for new offers.
	if availability := f.driverRepo.GetDriver("driver-1").Availability; availability != domain.DriverAvailable {
		t.Errorf("driver should be AVAILABLE after delivery, got %s", availability)
	}
}

func TestDeliveryProgress_GuardsAssignmentAndOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := newTestOrder("order-1")
	order.Status = domain.OrderStatusAssigned
	order.AssignedDriverID = "driver-1"
	f.orderRepo.AddOrder(order)
	f.driverRepo.AddDriver(newEligibleDriver("driver-1", domain.PremiumInactive))

	// A driver who is not assigned cannot progress the order.
	if _, err := f.svc.StartDelivery(ctx, "order-1", "driver-2"); !errors.Is(err, service.ErrDriverNotAssignedToOrder) {
		t.Errorf("expected ErrDriverNotAssignedToOrder, got %v", err)
	}

	// Skipping a step is an invalid transition.
	if _, err := f.svc.MarkPickedUp(ctx, "order-1", "driver-1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	// Replaying a completed step is also invalid.
	if _, err := f.svc.StartDelivery(ctx, "order-1", "driver-1"); err != nil {
		t.Fatalf("StartDelivery failed: %v", err)
	}
	if _, err := f.svc.StartDelivery(ctx, "order-1", "driver-1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on replay, got %v", err)
	}
}
