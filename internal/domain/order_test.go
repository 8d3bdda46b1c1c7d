package domain

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusCreated, OrderStatusAssigned},
		{OrderStatusCreated, OrderStatusAwaitingPayment},
		{OrderStatusCreated, OrderStatusCancelled},
		{OrderStatusAwaitingPayment, OrderStatusAssigned},
		{OrderStatusAwaitingPayment, OrderStatusCancelled},
		{OrderStatusAssigned, OrderStatusEnRoute},
		{OrderStatusAssigned, OrderStatusCancelled},
		{OrderStatusEnRoute, OrderStatusPickedUp},
		{OrderStatusEnRoute, OrderStatusCancelled},
		{OrderStatusPickedUp, OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderStatusCreated, OrderStatusEnRoute},
		{OrderStatusCreated, OrderStatusDelivered},
		{OrderStatusAssigned, OrderStatusPickedUp},
		{OrderStatusEnRoute, OrderStatusAssigned},
		{OrderStatusPickedUp, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusAssigned},
		{OrderStatusDelivered, OrderStatusCreated},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("EN_ROUTE"); err != nil {
		t.Errorf("expected EN_ROUTE to parse: %v", err)
	}
	if _, err := ParseOrderStatus("IN_TRANSIT"); err == nil {
		t.Error("expected unknown status to be rejected")
	}
	if _, err := ParseOrderStatus(""); err == nil {
		t.Error("expected empty status to be rejected")
	}
}

func TestOrderStatusIsOpen(t *testing.T) {
	open := []OrderStatus{OrderStatusCreated, OrderStatusAwaitingPayment}
	for _, s := range open {
		if !s.IsOpen() {
			t.Errorf("expected %s to be open", s)
		}
	}
	closed := []OrderStatus{OrderStatusAssigned, OrderStatusEnRoute, OrderStatusPickedUp, OrderStatusDelivered, OrderStatusCancelled}
	for _, s := range closed {
		if s.IsOpen() {
			t.Errorf("expected %s to be closed", s)
		}
	}
}
