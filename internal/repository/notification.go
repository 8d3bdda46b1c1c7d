package repository

import (
	"context"

	"fueldash/internal/domain"
)

// NotificationRepository defines the persistence operations for
// notifications. The persisted row is the source of truth for whether a
// user was ever told about an event.
type NotificationRepository interface {
	// Create persists a new notification in PENDING state.
	Create(ctx context.Context, n *domain.Notification) error

	// MarkSent records that a live or push channel delivered the
	// notification.
	MarkSent(ctx context.Context, id string) error

	// ListByUser retrieves a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}

// DeviceTokenRepository defines the persistence operations for push
// device endpoints.
type DeviceTokenRepository interface {
	// Save registers a device token for a user. Re-registering the same
	// token is a no-op.
	Save(ctx context.Context, userID, token string) error

	// ListByUser retrieves all device tokens registered for a user.
	ListByUser(ctx context.Context, userID string) ([]string, error)
}
