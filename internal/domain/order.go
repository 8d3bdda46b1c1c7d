package domain

import (
	"fmt"
	"time"
)

// OrderStatus represents the current status of a fuel order.
type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "CREATED"
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusAssigned        OrderStatus = "ASSIGNED"
	OrderStatusEnRoute         OrderStatus = "EN_ROUTE"
	OrderStatusPickedUp        OrderStatus = "PICKED_UP"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// orderTransitions is the closed transition table for the order lifecycle.
// DELIVERED and CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:         {OrderStatusAssigned, OrderStatusAwaitingPayment, OrderStatusCancelled},
	OrderStatusAwaitingPayment: {OrderStatusAssigned, OrderStatusCancelled},
	OrderStatusAssigned:        {OrderStatusEnRoute, OrderStatusCancelled},
	OrderStatusEnRoute:         {OrderStatusPickedUp, OrderStatusCancelled},
	OrderStatusPickedUp:        {OrderStatusDelivered},
}

// CanTransition reports whether the order status machine allows from -> to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseOrderStatus validates a raw status string at the boundary.
// Unknown values are rejected rather than propagated.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(raw); s {
	case OrderStatusCreated, OrderStatusAwaitingPayment, OrderStatusAssigned,
		OrderStatusEnRoute, OrderStatusPickedUp, OrderStatusDelivered, OrderStatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("unknown order status %q", raw)
	}
}

// IsOpen reports whether an order can still be matched to a driver.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusCreated || s == OrderStatusAwaitingPayment
}

// Order represents a customer's fuel request.
// AssignedDriverID is non-empty iff Status is ASSIGNED, EN_ROUTE,
// PICKED_UP or DELIVERED.
type Order struct {
	ID               string
	CustomerID       string
	FuelTypeID       string
	Litres           float64
	DropLat          float64
	DropLng          float64
	Status           OrderStatus
	AssignedDriverID string

	// Pricing, in minor currency units. Zero until an offer is accepted.
	FuelCostCents    int64
	DeliveryFeeCents int64
	ServiceFeeCents  int64
	TotalCents       int64

	ConfirmedDeliveryTime time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CancelledAt           time.Time
	CancelReason          string
}
