package domain

import "time"

// NotificationType represents the type of a state-change event.
type NotificationType string

const (
	NotificationOrderUpdate         NotificationType = "order_update"
	NotificationDriverOfferReceived NotificationType = "driver_offer_received"
	NotificationOfferRejected       NotificationType = "offer_rejected"
)

// DeliveryStatus tracks whether a notification reached the user over a
// live channel. The persisted row is the source of truth either way; the
// status only records whether an accelerant channel succeeded.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
)

// Notification is a durable state-change record for one user.
type Notification struct {
	ID             string
	UserID         string
	Type           NotificationType
	Title          string
	Message        string
	Data           map[string]any
	DeliveryStatus DeliveryStatus
	CreatedAt      time.Time
}
