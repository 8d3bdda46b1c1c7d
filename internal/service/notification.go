package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fueldash/internal/domain"
	"fueldash/internal/push"
	"fueldash/internal/repository"
)

// LiveChannel delivers an event to a user's live sessions. Delivery
// succeeded when at least one active connection accepted the write.
type LiveChannel interface {
	Send(userID string, payload any) bool
}

// NotificationService fans a state-change event out to one user: the
// live channel first, an out-of-band push second, and a durable
// persisted record in all cases. The persisted record is the single
// source of truth for "did this user ever get told"; the live and push
// channels are best-effort accelerants.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	deviceRepo       repository.DeviceTokenRepository
	live             LiveChannel
	pushClient       push.Client
}

// NewNotificationService creates a new NotificationService. deviceRepo,
// live and pushClient may be nil.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	deviceRepo repository.DeviceTokenRepository,
	live LiveChannel,
	pushClient push.Client,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		deviceRepo:       deviceRepo,
		live:             live,
		pushClient:       pushClient,
	}
}

// Notify delivers one event to one user. Channel failures are swallowed
// and logged; only the persistence write may surface as an error.
func (s *NotificationService) Notify(ctx context.Context, n *domain.Notification) error {
	n.ID = uuid.New().String()
	n.DeliveryStatus = domain.DeliveryPending
	n.CreatedAt = time.Now()

	persistErr := s.notificationRepo.Create(ctx, n)
	if persistErr != nil {
		log.Printf("failed to persist notification for user %s: %v", n.UserID, persistErr)
	}

	delivered := false
	if s.live != nil {
		delivered = s.live.Send(n.UserID, wireEvent(n))
	}
	if !delivered {
		delivered = s.sendPush(ctx, n)
	}

	if delivered && persistErr == nil {
		if err := s.notificationRepo.MarkSent(ctx, n.ID); err != nil {
			log.Printf("failed to mark notification %s sent: %v", n.ID, err)
		} else {
			n.DeliveryStatus = domain.DeliverySent
		}
	}

	return persistErr
}

// sendPush attempts delivery to every registered device endpoint.
func (s *NotificationService) sendPush(ctx context.Context, n *domain.Notification) bool {
	if s.pushClient == nil || s.deviceRepo == nil {
		return false
	}

	tokens, err := s.deviceRepo.ListByUser(ctx, n.UserID)
	if err != nil {
		log.Printf("failed to list device tokens for user %s: %v", n.UserID, err)
		return false
	}

	delivered := false
	for _, token := range tokens {
		if err := s.pushClient.Send(ctx, token, n); err != nil {
			log.Printf("push to user %s failed: %v", n.UserID, err)
			continue
		}
		delivered = true
	}
	return delivered
}

// NotifyOfferReceived tells a driver a new dispatch offer is waiting.
func (s *NotificationService) NotifyOfferReceived(ctx context.Context, driverID string, order *domain.Order) {
	_ = s.Notify(ctx, &domain.Notification{
		UserID:  driverID,
		Type:    domain.NotificationDriverOfferReceived,
		Title:   "New Delivery Offer",
		Message: fmt.Sprintf("New fuel delivery near (%.4f, %.4f): %.1f litres", order.DropLat, order.DropLng, order.Litres),
		Data: map[string]any{
			"order_id":     order.ID,
			"fuel_type_id": order.FuelTypeID,
			"litres":       order.Litres,
			"drop_lat":     order.DropLat,
			"drop_lng":     order.DropLng,
		},
	})
}

// NotifyOrderAssigned tells the customer and the winning driver that the
// order is assigned.
func (s *NotificationService) NotifyOrderAssigned(ctx context.Context, order *domain.Order, offer *domain.DispatchOffer) {
	_ = s.Notify(ctx, &domain.Notification{
		UserID:  order.CustomerID,
		Type:    domain.NotificationOrderUpdate,
		Title:   "Driver Assigned",
		Message: "A driver has been assigned to your fuel order",
		Data: map[string]any{
			"order_id":    order.ID,
			"driver_id":   order.AssignedDriverID,
			"status":      string(order.Status),
			"total_cents": order.TotalCents,
		},
	})

	_ = s.Notify(ctx, &domain.Notification{
		UserID:  offer.DriverID,
		Type:    domain.NotificationOrderUpdate,
		Title:   "Offer Accepted",
		Message: "Your offer was accepted. The delivery is yours.",
		Data: map[string]any{
			"order_id": order.ID,
			"offer_id": offer.ID,
			"status":   string(order.Status),
		},
	})
}

// rejectedFanoutTimeout bounds the background loser fanout so a stalled
// channel cannot pin a goroutine forever.
const rejectedFanoutTimeout = 30 * time.Second

// NotifyOffersRejected tells every losing driver their offer was closed.
// Best-effort and non-blocking relative to the acceptance that caused
// it; a failure in the fanout never reaches the accepting request.
func (s *NotificationService) NotifyOffersRejected(driverIDs []string, order *domain.Order) {
	if len(driverIDs) == 0 {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("rejected-offer fanout panicked for order %s: %v", order.ID, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), rejectedFanoutTimeout)
		defer cancel()

		for _, driverID := range driverIDs {
			_ = s.Notify(ctx, &domain.Notification{
				UserID:  driverID,
				Type:    domain.NotificationOfferRejected,
				Title:   "Offer Closed",
				Message: "The order was taken by another driver",
				Data:    map[string]any{"order_id": order.ID},
			})
		}
	}()
}

// NotifyOrderProgress tells the customer about a delivery-progress change.
func (s *NotificationService) NotifyOrderProgress(ctx context.Context, order *domain.Order) {
	_ = s.Notify(ctx, &domain.Notification{
		UserID:  order.CustomerID,
		Type:    domain.NotificationOrderUpdate,
		Title:   "Order Update",
		Message: fmt.Sprintf("Your order is now %s", order.Status),
		Data: map[string]any{
			"order_id": order.ID,
			"status":   string(order.Status),
		},
	})
}

// NotifyOrderCancelled tells the counterparty about a cancellation.
func (s *NotificationService) NotifyOrderCancelled(ctx context.Context, order *domain.Order, cancelledBy string) {
	recipientID := order.CustomerID
	message := "The order has been cancelled"
	if cancelledBy == order.CustomerID {
		if order.AssignedDriverID == "" {
			return // no one to notify
		}
		recipientID = order.AssignedDriverID
		message = "The customer has cancelled the order"
	}

	_ = s.Notify(ctx, &domain.Notification{
		UserID:  recipientID,
		Type:    domain.NotificationOrderUpdate,
		Title:   "Order Cancelled",
		Message: message,
		Data: map[string]any{
			"order_id":     order.ID,
			"status":       string(order.Status),
			"cancelled_by": cancelledBy,
			"reason":       order.CancelReason,
		},
	})
}

// wireEvent shapes the payload written to the live channel.
func wireEvent(n *domain.Notification) map[string]any {
	return map[string]any{
		"type":       string(n.Type),
		"title":      n.Title,
		"message":    n.Message,
		"data":       n.Data,
		"created_at": n.CreatedAt,
	}
}
