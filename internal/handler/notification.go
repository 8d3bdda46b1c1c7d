package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
)

const defaultNotificationLimit = 50

// NotificationHandler handles HTTP requests for the notification feed
// and push device registration.
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
	deviceRepo       repository.DeviceTokenRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationRepo repository.NotificationRepository, deviceRepo repository.DeviceTokenRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		deviceRepo:       deviceRepo,
	}
}

// RegisterDeviceRequest is the HTTP request body for registering a push
// device token.
type RegisterDeviceRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// NotificationResponse is the HTTP response for notification data.
type NotificationResponse struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Data           map[string]any `json:"data,omitempty"`
	DeliveryStatus string         `json:"delivery_status"`
	CreatedAt      string         `json:"created_at"`
}

// List handles GET /v1/notifications?user_id=&limit=
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	notifications, err := h.notificationRepo.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, response)
}

// RegisterDevice handles POST /v1/devices
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.UserID == "" || req.Token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id and token are required"})
		return
	}

	if err := h.deviceRepo.Save(c.Request.Context(), req.UserID, req.Token); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		Data:           n.Data,
		DeliveryStatus: string(n.DeliveryStatus),
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}
