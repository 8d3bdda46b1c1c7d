package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fueldash/internal/repository"
	"fueldash/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors (including things not owned by the caller)
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrOfferOrderMismatch),
		errors.Is(err, service.ErrNotOfferOwner):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidOfferID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidFuelType),
		errors.Is(err, service.ErrInvalidLitres),
		errors.Is(err, service.ErrInvalidDropLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrMissingDeliveryTime),
		errors.Is(err, service.ErrInvalidAvailability):
		return http.StatusBadRequest

	// Conflict errors - the routine outcome of losing a race
	case errors.Is(err, service.ErrOfferNotOpen),
		errors.Is(err, service.ErrOrderNotOpen),
		errors.Is(err, service.ErrAssignmentConflict),
		errors.Is(err, service.ErrOrderAlreadyCancelled),
		errors.Is(err, service.ErrOrderCannotBeCancelled),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict

	// Expired offer window
	case errors.Is(err, service.ErrOfferExpired):
		return http.StatusGone

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotAssignedToOrder):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
