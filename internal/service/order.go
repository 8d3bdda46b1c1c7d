package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
)

// DispatchServiceInterface defines the offer-engine contract.
// This interface allows for testing with mock implementations.
type DispatchServiceInterface interface {
	CreateOffers(ctx context.Context, order *domain.Order) (int64, error)
	SweepExpiredOffers(ctx context.Context) (int64, error)
}

// Ensure DispatchService implements DispatchServiceInterface.
var _ DispatchServiceInterface = (*DispatchService)(nil)

// OrderService handles order creation, cancellation and the
// delivery-progress transitions that consume the same state field as
// the acceptance protocol.
type OrderService struct {
	orderRepo           repository.OrderRepository
	offerRepo           repository.OfferRepository
	driverRepo          repository.DriverRepository
	dispatchService     DispatchServiceInterface
	notificationService *NotificationService
}

// NewOrderService creates a new OrderService. dispatchService and
// notificationService may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	offerRepo repository.OfferRepository,
	driverRepo repository.DriverRepository,
	dispatchService DispatchServiceInterface,
	notificationService *NotificationService,
) *OrderService {
	return &OrderService{
		orderRepo:           orderRepo,
		offerRepo:           offerRepo,
		driverRepo:          driverRepo,
		dispatchService:     dispatchService,
		notificationService: notificationService,
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	CustomerID string
	FuelTypeID string
	Litres     float64
	DropLat    float64
	DropLng    float64
}

// CreateOrderResponse contains the result of creating an order.
type CreateOrderResponse struct {
	Order         *domain.Order
	OffersCreated int64
}

// CreateOrder creates a new order in CREATED state and triggers the
// dispatch offer engine. An empty driver pool is not an error: the
// order stays in CREATED with zero offers, awaiting a later retry.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &domain.Order{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		FuelTypeID: req.FuelTypeID,
		Litres:     req.Litres,
		DropLat:    req.DropLat,
		DropLng:    req.DropLng,
		Status:     domain.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	var offersCreated int64
	if s.dispatchService != nil {
		n, err := s.dispatchService.CreateOffers(ctx, order)
		if err != nil {
			// The order exists and is retryable; dispatch failure must
			// not lose it.
			log.Printf("dispatch failed for order %s: %v", order.ID, err)
		} else {
			offersCreated = n
		}
	}

	return &CreateOrderResponse{Order: order, OffersCreated: offersCreated}, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

// CancelOrderRequest contains the parameters for cancelling an order.
type CancelOrderRequest struct {
	OrderID     string
	CancelledBy string
	Reason      string
}

// CancelOrder cancels an order that has not progressed past EN_ROUTE.
// The cancellation is a conditional write on the observed state, so a
// racing accept or progress transition turns into a conflict instead of
// a lost update.
func (s *OrderService) CancelOrder(ctx context.Context, req CancelOrderRequest) (*domain.Order, error) {
	if req.OrderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderStatusCancelled {
		return nil, ErrOrderAlreadyCancelled
	}
	if !domain.CanTransition(order.Status, domain.OrderStatusCancelled) {
		return nil, ErrOrderCannotBeCancelled
	}

	now := time.Now()
	won, err := s.orderRepo.Cancel(ctx, order.ID, order.Status, now, req.Reason)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAssignmentConflict
	}

	// A cancelled order must not keep dangling open offers; close them
	// all rather than leaving drivers to act on a dead order.
	if _, err := s.offerRepo.RejectOpenSiblings(ctx, order.ID, ""); err != nil {
		log.Printf("failed to reject open offers for cancelled order %s: %v", order.ID, err)
	}

	if order.AssignedDriverID != "" {
		if err := s.driverRepo.UpdateAvailability(ctx, order.AssignedDriverID, domain.DriverAvailable); err != nil {
			log.Printf("failed to free driver %s after cancel: %v", order.AssignedDriverID, err)
		}
	}

	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = now
	order.CancelReason = req.Reason

	if s.notificationService != nil {
		s.notificationService.NotifyOrderCancelled(ctx, order, req.CancelledBy)
	}

	order.AssignedDriverID = ""
	return order, nil
}

// StartDelivery transitions ASSIGNED -> EN_ROUTE for the assigned driver.
func (s *OrderService) StartDelivery(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	return s.progress(ctx, orderID, driverID, domain.OrderStatusAssigned, domain.OrderStatusEnRoute)
}

// MarkPickedUp transitions EN_ROUTE -> PICKED_UP for the assigned driver.
func (s *OrderService) MarkPickedUp(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	return s.progress(ctx, orderID, driverID, domain.OrderStatusEnRoute, domain.OrderStatusPickedUp)
}

// CompleteDelivery transitions PICKED_UP -> DELIVERED and frees the driver.
func (s *OrderService) CompleteDelivery(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	order, err := s.progress(ctx, orderID, driverID, domain.OrderStatusPickedUp, domain.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}

	if err := s.driverRepo.UpdateAvailability(ctx, driverID, domain.DriverAvailable); err != nil {
		log.Printf("failed to free driver %s after delivery: %v", driverID, err)
	}
	return order, nil
}

// progress performs one delivery-progress transition as a conditional
// write, bounded to the assigned driver.
func (s *OrderService) progress(ctx context.Context, orderID, driverID string, from, to domain.OrderStatus) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.AssignedDriverID != driverID {
		return nil, ErrDriverNotAssignedToOrder
	}
	if order.Status != from {
		return nil, ErrInvalidTransition
	}

	won, err := s.orderRepo.UpdateStatusIf(ctx, orderID, from, to)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAssignmentConflict
	}

	order.Status = to
	if s.notificationService != nil {
		s.notificationService.NotifyOrderProgress(ctx, order)
	}
	return order, nil
}

func (s *OrderService) validateCreateRequest(req CreateOrderRequest) error {
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}
	if req.FuelTypeID == "" {
		return ErrInvalidFuelType
	}
	if req.Litres <= 0 {
		return ErrInvalidLitres
	}
	if !isValidLatitude(req.DropLat) || !isValidLongitude(req.DropLng) {
		return ErrInvalidDropLocation
	}
	return nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
