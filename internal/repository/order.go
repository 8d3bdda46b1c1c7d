package repository

import (
	"context"
	"time"

	"fueldash/internal/domain"
)

// OrderPricing carries the computed marketplace price persisted on an
// order after an offer is accepted.
type OrderPricing struct {
	FuelCostCents    int64
	DeliveryFeeCents int64
	ServiceFeeCents  int64
	TotalCents       int64
}

// OrderRepository defines the persistence operations for orders.
//
// The conditional methods are the concurrency mechanism for the whole
// dispatch core: they update a row only if its state still matches the
// expected prior state and report whether any row was affected. Callers
// treat a false result as losing a race, never as an I/O failure.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetAll retrieves recent orders.
	GetAll(ctx context.Context) ([]*domain.Order, error)

	// AssignDriverIf transitions the order from the expected prior state
	// to ASSIGNED, setting the driver and confirmed delivery time, in a
	// single conditional write. Returns false if another request won.
	AssignDriverIf(ctx context.Context, id string, driverID string, deliveryTime time.Time, expected domain.OrderStatus) (bool, error)

	// RevertAssignment rolls an ASSIGNED order back to the given prior
	// state, clearing the driver and confirmed delivery time.
	RevertAssignment(ctx context.Context, id string, to domain.OrderStatus) error

	// UpdateStatusIf transitions the order state conditionally on the
	// expected prior state. Returns false on a state-guard mismatch.
	UpdateStatusIf(ctx context.Context, id string, expected, to domain.OrderStatus) (bool, error)

	// Cancel conditionally cancels the order, recording when and why.
	Cancel(ctx context.Context, id string, expected domain.OrderStatus, at time.Time, reason string) (bool, error)

	// UpdatePricing persists the computed pricing fields on the order.
	UpdatePricing(ctx context.Context, id string, pricing OrderPricing) error
}
