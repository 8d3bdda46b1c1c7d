package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
	"fueldash/internal/service"
)

// OfferHandler handles HTTP requests for dispatch offers.
type OfferHandler struct {
	acceptanceService *service.AcceptanceService
	offerRepo         repository.OfferRepository
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(acceptanceService *service.AcceptanceService, offerRepo repository.OfferRepository) *OfferHandler {
	return &OfferHandler{
		acceptanceService: acceptanceService,
		offerRepo:         offerRepo,
	}
}

// AcceptOfferRequest is the HTTP request body for accepting an offer.
// DriverID is set on the driver route, CustomerID on the customer route.
type AcceptOfferRequest struct {
	DriverID              string `json:"driver_id,omitempty"`
	CustomerID            string `json:"customer_id,omitempty"`
	ConfirmedDeliveryTime string `json:"confirmed_delivery_time"`
	RateCents             int64  `json:"rate_cents,omitempty"`
}

// RejectOfferRequest is the HTTP request body for rejecting an offer.
type RejectOfferRequest struct {
	DriverID string `json:"driver_id"`
}

// OfferResponse is the HTTP response for offer data.
type OfferResponse struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	DriverID  string `json:"driver_id"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at,omitempty"`
	RateCents int64  `json:"rate_cents"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AcceptOfferResponse is the HTTP response for a successful acceptance.
type AcceptOfferResponse struct {
	Order OrderResponse `json:"order"`
	Offer OfferResponse `json:"offer"`
}

// ListOpen handles GET /v1/offers?driver_id=
func (h *OfferHandler) ListOpen(c *gin.Context) {
	driverID := c.Query("driver_id")
	if driverID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "driver_id is required"})
		return
	}

	offers, err := h.offerRepo.ListOpenByDriver(c.Request.Context(), driverID, time.Now())
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

// Accept handles POST /v1/offers/:id/accept, the driver-facing variant
// of the acceptance protocol.
func (h *OfferHandler) Accept(c *gin.Context) {
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
		OfferID:               c.Param("id"),
		ActorID:               req.DriverID,
		Actor:                 service.ActorDriver,
		ConfirmedDeliveryTime: deliveryTime,
		RateCents:             req.RateCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAcceptResponse(result))
}

// Reject handles POST /v1/offers/:id/reject
func (h *OfferHandler) Reject(c *gin.Context) {
	var req RejectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.acceptanceService.RejectOffer(c.Request.Context(), service.RejectOfferRequest{
		OfferID: c.Param("id"),
		ActorID: req.DriverID,
		Actor:   service.ActorDriver,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOfferResponse(offer))
}

func toOfferResponse(offer *domain.DispatchOffer) OfferResponse {
	response := OfferResponse{
		ID:        offer.ID,
		OrderID:   offer.OrderID,
		DriverID:  offer.DriverID,
		Status:    string(offer.Status),
		RateCents: offer.RateCents,
		Notes:     offer.Notes,
		CreatedAt: offer.CreatedAt.Format(time.RFC3339),
	}
	if !offer.ExpiresAt.IsZero() {
		response.ExpiresAt = offer.ExpiresAt.Format(time.RFC3339)
	}
	return response
}

func toAcceptResponse(result *service.AcceptResult) AcceptOfferResponse {
	return AcceptOfferResponse{
		Order: toOrderResponse(result.Order),
		Offer: toOfferResponse(result.Offer),
	}
}

func parseDeliveryTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
