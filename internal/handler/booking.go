package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingBody is the HTTP request body for booking a listing.
type CreateBookingBody struct {
	RideID     string `json:"ride_id" binding:"required"`
	GuestCount int    `json:"guest_count"`
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingParams{
		UserID:     userID,
		RideID:     body.RideID,
		GuestCount: body.GuestCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "booking created", gin.H{
		"booking":      result.Booking,
		"payment":      result.Payment,
		"redirect_url": result.RedirectURL,
	})
}

// RetryPayment handles POST /api/v1/bookings/:id/pay
func (h *BookingHandler) RetryPayment(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	result, err := h.bookingService.RetryPayment(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment session opened", gin.H{
		"booking":      result.Booking,
		"payment":      result.Payment,
		"redirect_url": result.RedirectURL,
	})
}

// Get handles GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "booking retrieved", booking)
}

// List handles GET /api/v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	limit, offset := paging(c)

	bookings, total, err := h.bookingService.UserBookings(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "bookings retrieved", bookings, Meta{Total: total, Limit: limit, Offset: offset})
}
