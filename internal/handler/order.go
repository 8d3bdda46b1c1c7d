package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
	"fueldash/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService      *service.OrderService
	acceptanceService *service.AcceptanceService
	orderRepo         repository.OrderRepository
	offerRepo         repository.OfferRepository
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(
	orderService *service.OrderService,
	acceptanceService *service.AcceptanceService,
	orderRepo repository.OrderRepository,
	offerRepo repository.OfferRepository,
) *OrderHandler {
	return &OrderHandler{
		orderService:      orderService,
		acceptanceService: acceptanceService,
		orderRepo:         orderRepo,
		offerRepo:         offerRepo,
	}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	CustomerID string  `json:"customer_id"`
	FuelTypeID string  `json:"fuel_type_id"`
	Litres     float64 `json:"litres"`
	DropLat    float64 `json:"drop_lat"`
	DropLng    float64 `json:"drop_lng"`
}

// CancelOrderRequest is the HTTP request body for cancelling an order.
type CancelOrderRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

// ProgressRequest is the HTTP request body for delivery-progress calls.
type ProgressRequest struct {
	DriverID string `json:"driver_id"`
}

// OrderResponse is the HTTP response for order data.
type OrderResponse struct {
	ID                    string  `json:"id"`
	CustomerID            string  `json:"customer_id"`
	FuelTypeID            string  `json:"fuel_type_id"`
	Litres                float64 `json:"litres"`
	DropLat               float64 `json:"drop_lat"`
	DropLng               float64 `json:"drop_lng"`
	Status                string  `json:"status"`
	AssignedDriverID      string  `json:"assigned_driver_id,omitempty"`
	FuelCostCents         int64   `json:"fuel_cost_cents"`
	DeliveryFeeCents      int64   `json:"delivery_fee_cents"`
	ServiceFeeCents       int64   `json:"service_fee_cents"`
	TotalCents            int64   `json:"total_cents"`
	ConfirmedDeliveryTime string  `json:"confirmed_delivery_time,omitempty"`
	CreatedAt             string  `json:"created_at"`
	CancelledAt           string  `json:"cancelled_at,omitempty"`
	CancelReason          string  `json:"cancel_reason,omitempty"`
}

// CreateOrderResponse is the HTTP response for creating an order.
type CreateOrderResponse struct {
	OrderResponse
	OffersCreated int64 `json:"offers_created"`
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		CustomerID: req.CustomerID,
		FuelTypeID: req.FuelTypeID,
		Litres:     req.Litres,
		DropLat:    req.DropLat,
		DropLng:    req.DropLng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateOrderResponse{
		OrderResponse: toOrderResponse(result.Order),
		OffersCreated: result.OffersCreated,
	})
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// GetAll handles GET /v1/orders
func (h *OrderHandler) GetAll(c *gin.Context) {
	orders, err := h.orderRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, response)
}

// CancelOrder handles POST /v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), service.CancelOrderRequest{
		OrderID:     c.Param("id"),
		CancelledBy: req.CancelledBy,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// ListOffers handles GET /v1/orders/:id/offers
func (h *OrderHandler) ListOffers(c *gin.Context) {
	offers, err := h.offerRepo.ListByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]OfferResponse, 0, len(offers))
	for _, offer := range offers {
		response = append(response, toOfferResponse(offer))
	}
	c.JSON(http.StatusOK, response)
}

// AcceptOffer handles POST /v1/orders/:id/offers/:offerId/accept, the
// customer-facing variant of the acceptance protocol.
func (h *OrderHandler) AcceptOffer(c *gin.Context) {
	var req AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	deliveryTime, err := parseDeliveryTime(req.ConfirmedDeliveryTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid confirmed_delivery_time"})
		return
	}

	result, err := h.acceptanceService.AcceptOffer(c.Request.Context(), service.AcceptOfferRequest{
		OfferID:               c.Param("offerId"),
		OrderID:               c.Param("id"),
		ActorID:               req.CustomerID,
		Actor:                 service.ActorCustomer,
		ConfirmedDeliveryTime: deliveryTime,
		RateCents:             req.RateCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAcceptResponse(result))
}

// StartDelivery handles POST /v1/orders/:id/start
func (h *OrderHandler) StartDelivery(c *gin.Context) {
	h.progress(c, h.orderService.StartDelivery)
}

// MarkPickedUp handles POST /v1/orders/:id/pickup
func (h *OrderHandler) MarkPickedUp(c *gin.Context) {
	h.progress(c, h.orderService.MarkPickedUp)
}

// CompleteDelivery handles POST /v1/orders/:id/complete
func (h *OrderHandler) CompleteDelivery(c *gin.Context) {
	h.progress(c, h.orderService.CompleteDelivery)
}

func (h *OrderHandler) progress(c *gin.Context, fn func(ctx context.Context, orderID, driverID string) (*domain.Order, error)) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := fn(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *domain.Order) OrderResponse {
	response := OrderResponse{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		FuelTypeID:       order.FuelTypeID,
		Litres:           order.Litres,
		DropLat:          order.DropLat,
		DropLng:          order.DropLng,
		Status:           string(order.Status),
		AssignedDriverID: order.AssignedDriverID,
		FuelCostCents:    order.FuelCostCents,
		DeliveryFeeCents: order.DeliveryFeeCents,
		ServiceFeeCents:  order.ServiceFeeCents,
		TotalCents:       order.TotalCents,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
	}
	if !order.ConfirmedDeliveryTime.IsZero() {
		response.ConfirmedDeliveryTime = order.ConfirmedDeliveryTime.Format(time.RFC3339)
	}
	if !order.CancelledAt.IsZero() {
		response.CancelledAt = order.CancelledAt.Format(time.RFC3339)
		response.CancelReason = order.CancelReason
	}
	return response
}
