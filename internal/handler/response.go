package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridebook/internal/gateway"
	"ridebook/internal/repository"
	"ridebook/internal/service"
)

// Envelope is the uniform response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta carries list paging information.
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// respondOK sends a success envelope.
func respondOK(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

// respondList sends a success envelope with paging meta.
func respondList(c *gin.Context, message string, data any, meta Meta) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

// respondError sends an error envelope with the mapped HTTP status code.
func respondError(c *gin.Context, err error) {
	c.JSON(mapErrorToHTTPStatus(err), Envelope{Success: false, Message: err.Error()})
}

// respondBadRequest sends a 400 with a fixed message.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// paging reads limit/offset query params with sane bounds.
func paging(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRequestID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidReviewType):
		return http.StatusBadRequest

	// Illegal state - Bad Request
	case errors.Is(err, service.ErrRiderHasActiveRequest),
		errors.Is(err, service.ErrDriverHasActiveRequest),
		errors.Is(err, service.ErrRequestNotAvailable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrCancelNotAllowed),
		errors.Is(err, service.ErrRideNotAvailable),
		errors.Is(err, service.ErrRideAlreadyDeclined),
		errors.Is(err, service.ErrNotEnoughSeats),
		errors.Is(err, service.ErrContactRequired),
		errors.Is(err, service.ErrBookingNotPayable),
		errors.Is(err, service.ErrRideNotCompleted),
		errors.Is(err, service.ErrReviewRoleMismatch):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDriverAlreadyRegistered),
		errors.Is(err, service.ErrTitleTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrPaymentAlreadySettled),
		errors.Is(err, service.ErrRequestLocked),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotEligible),
		errors.Is(err, service.ErrDriverNotApproved),
		errors.Is(err, service.ErrDriverSuspended),
		errors.Is(err, service.ErrDriverNotAssigned),
		errors.Is(err, service.ErrNotRequestOwner),
		errors.Is(err, service.ErrNotRideParticipant),
		errors.Is(err, service.ErrNotReviewOwner):
		return http.StatusForbidden

	// Gateway trouble surfaces as Bad Gateway
	case errors.Is(err, gateway.ErrGatewayUnavailable),
		errors.Is(err, gateway.ErrInitRejected):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
