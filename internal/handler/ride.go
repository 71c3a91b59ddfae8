package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/domain"
	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// RideHandler handles HTTP requests for published ride listings.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideBody is the HTTP request body for publishing a listing.
type CreateRideBody struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Images         []string `json:"images"`
	PickUpAddress  string   `json:"pick_up_address" binding:"required"`
	DropOffAddress string   `json:"drop_off_address" binding:"required"`
	DivisionID     string   `json:"division_id"`
	DistrictID     string   `json:"district_id"`
	RideTypeID     string   `json:"ride_type_id"`
	Cost           float64  `json:"cost" binding:"required"`
	AvailableSeats int      `json:"available_seats" binding:"required"`
	MaxGuests      int      `json:"max_guests"`
	Vehicle        string   `json:"vehicle" binding:"required"`
}

// Create handles POST /api/v1/rides
func (h *RideHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var body CreateRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	ride, err := h.rideService.Create(c.Request.Context(), service.CreateRideParams{
		Title:          body.Title,
		Description:    body.Description,
		Images:         body.Images,
		PickUpAddress:  body.PickUpAddress,
		DropOffAddress: body.DropOffAddress,
		DivisionID:     body.DivisionID,
		DistrictID:     body.DistrictID,
		RideTypeID:     body.RideTypeID,
		Cost:           body.Cost,
		AvailableSeats: body.AvailableSeats,
		MaxGuests:      body.MaxGuests,
		Vehicle:        domain.VehicleType(body.Vehicle),
		UserID:         userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "ride published", ride)
}

// UpdateRideBody is the HTTP request body for editing a listing.
type UpdateRideBody struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Images         []string `json:"images"`
	Cost           float64  `json:"cost"`
	AvailableSeats int      `json:"available_seats"`
	MaxGuests      int      `json:"max_guests"`
}

// Update handles PATCH /api/v1/rides/:id
func (h *RideHandler) Update(c *gin.Context) {
	var body UpdateRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	ride, err := h.rideService.Update(c.Request.Context(), service.UpdateRideParams{
		RideID:         c.Param("id"),
		Title:          body.Title,
		Description:    body.Description,
		Images:         body.Images,
		Cost:           body.Cost,
		AvailableSeats: body.AvailableSeats,
		MaxGuests:      body.MaxGuests,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride updated", ride)
}

// Get handles GET /api/v1/rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	ride, err := h.rideService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride retrieved", ride)
}

// GetBySlug handles GET /api/v1/rides/slug/:slug
func (h *RideHandler) GetBySlug(c *gin.Context) {
	ride, err := h.rideService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride retrieved", ride)
}

// ListActive handles GET /api/v1/rides
func (h *RideHandler) ListActive(c *gin.Context) {
	limit, offset := paging(c)

	rides, total, err := h.rideService.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "rides retrieved", rides, Meta{Total: total, Limit: limit, Offset: offset})
}

// ListAll handles GET /api/v1/rides/all (admin).
func (h *RideHandler) ListAll(c *gin.Context) {
	limit, offset := paging(c)

	rides, total, err := h.rideService.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "rides retrieved", rides, Meta{Total: total, Limit: limit, Offset: offset})
}

// Available handles GET /api/v1/rides/available (driver).
func (h *RideHandler) Available(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	limit, offset := paging(c)

	rides, total, err := h.rideService.AvailableForDriver(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "available rides retrieved", rides, Meta{Total: total, Limit: limit, Offset: offset})
}

// Accept handles POST /api/v1/rides/:id/accept (driver).
func (h *RideHandler) Accept(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	ride, err := h.rideService.AcceptByDriver(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride accepted", ride)
}

// Decline handles POST /api/v1/rides/:id/decline (driver).
func (h *RideHandler) Decline(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	if err := h.rideService.DeclineByDriver(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride declined", nil)
}
