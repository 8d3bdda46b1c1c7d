package repository

import (
	"context"
	"time"

	"fueldash/internal/domain"
)

// OfferRepository defines the persistence operations for dispatch offers.
type OfferRepository interface {
	// CreateBatch inserts offers, silently skipping rows that conflict on
	// (order_id, driver_id). Returns the number of rows actually inserted.
	CreateBatch(ctx context.Context, offers []*domain.DispatchOffer) (int64, error)

	// GetByID retrieves an offer by ID.
	GetByID(ctx context.Context, id string) (*domain.DispatchOffer, error)

	// ListByOrder retrieves all offers for an order.
	ListByOrder(ctx context.Context, orderID string) ([]*domain.DispatchOffer, error)

	// ListOpenByDriver retrieves the driver's OFFERED, unexpired offers.
	ListOpenByDriver(ctx context.Context, driverID string, now time.Time) ([]*domain.DispatchOffer, error)

	// UpdateStatusIf transitions the offer state conditionally on the
	// expected prior state. Returns false on a state-guard mismatch.
	UpdateStatusIf(ctx context.Context, id string, expected, to domain.OfferStatus) (bool, error)

	// UpdateRate records the per-km rate the offer was settled at.
	UpdateRate(ctx context.Context, id string, rateCents int64) error

	// RejectOpenSiblings bulk-transitions every other OFFERED offer for
	// the order to REJECTED. An empty winnerOfferID closes every open
	// offer. Returns the number of rows affected.
	RejectOpenSiblings(ctx context.Context, orderID, winnerOfferID string) (int64, error)

	// SweepExpired bulk-transitions every OFFERED offer whose expiry has
	// passed to TIMEOUT. Idempotent: rows already out of OFFERED are not
	// matched. Returns the number of rows affected.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}
