package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/domain"
	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// RideRequestHandler handles HTTP requests for on-demand ride requests.
type RideRequestHandler struct {
	requestService *service.RideRequestService
}

// NewRideRequestHandler creates a new RideRequestHandler.
func NewRideRequestHandler(requestService *service.RideRequestService) *RideRequestHandler {
	return &RideRequestHandler{requestService: requestService}
}

// LocationBody is a pickup or dropoff point in a request body.
type LocationBody struct {
	Address string  `json:"address" binding:"required"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (l LocationBody) toDomain() domain.Location {
	return domain.Location{Address: l.Address, Lat: l.Lat, Lng: l.Lng}
}

// RequestRideBody is the HTTP request body for requesting a ride.
type RequestRideBody struct {
	Pickup      LocationBody `json:"pickup" binding:"required"`
	Dropoff     LocationBody `json:"dropoff" binding:"required"`
	VehicleType string       `json:"vehicle_type" binding:"required"`
}

// Request handles POST /api/v1/ride-requests
func (h *RideRequestHandler) Request(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var body RequestRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	req, err := h.requestService.RequestRide(c.Request.Context(), service.RequestRideParams{
		RiderID:     userID,
		Pickup:      body.Pickup.toDomain(),
		Dropoff:     body.Dropoff.toDomain(),
		VehicleType: domain.VehicleType(body.VehicleType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "ride requested", req)
}

// EstimateBody is the HTTP request body for a flat fare quote.
type EstimateBody struct {
	Pickup      LocationBody `json:"pickup" binding:"required"`
	Dropoff     LocationBody `json:"dropoff" binding:"required"`
	VehicleType string       `json:"vehicle_type" binding:"required"`
}

// Estimate handles POST /api/v1/ride-requests/estimate
func (h *RideRequestHandler) Estimate(c *gin.Context) {
	var body EstimateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	quote, distanceKm, err := h.requestService.EstimateFare(
		body.Pickup.toDomain(),
		body.Dropoff.toDomain(),
		domain.VehicleType(body.VehicleType),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "fare estimated", gin.H{
		"fare":         quote,
		"distance_km":  distanceKm,
		"vehicle_type": body.VehicleType,
		"currency":     "BDT",
	})
}

// Get handles GET /api/v1/ride-requests/:id
func (h *RideRequestHandler) Get(c *gin.Context) {
	req, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride request retrieved", req)
}

// Accept handles POST /api/v1/ride-requests/:id/accept (driver).
func (h *RideRequestHandler) Accept(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	req, err := h.requestService.AcceptRide(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride accepted", req)
}

// UpdateStatusBody is the HTTP request body for status advancement.
type UpdateStatusBody struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/v1/ride-requests/:id/status (driver).
func (h *RideRequestHandler) UpdateStatus(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var body UpdateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	req, err := h.requestService.UpdateStatus(c.Request.Context(), c.Param("id"), userID, domain.RideRequestStatus(body.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "status updated", req)
}

// CancelBody is the HTTP request body for cancellation.
type CancelBody struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /api/v1/ride-requests/:id/cancel
func (h *RideRequestHandler) Cancel(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	role, _ := middleware.RoleFrom(c)

	var body CancelBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		respondBadRequest(c, "invalid request body")
		return
	}

	actor := domain.CancelledByRider
	switch {
	case role.IsAdmin():
		actor = domain.CancelledByAdmin
	case role == domain.RoleDriver:
		actor = domain.CancelledByDriver
	}

	req, err := h.requestService.CancelRide(c.Request.Context(), service.CancelRideParams{
		RequestID: c.Param("id"),
		ActorID:   userID,
		Actor:     actor,
		Reason:    body.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "ride request cancelled", req)
}

// AssignBody is the HTTP request body for admin assignment.
type AssignBody struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// Assign handles POST /api/v1/ride-requests/:id/assign (admin).
func (h *RideRequestHandler) Assign(c *gin.Context) {
	var body AssignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	req, err := h.requestService.AssignDriver(c.Request.Context(), c.Param("id"), body.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "driver assigned", req)
}

// MyHistory handles GET /api/v1/ride-requests/history (rider).
func (h *RideRequestHandler) MyHistory(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	limit, offset := paging(c)

	reqs, total, err := h.requestService.RiderHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "ride history retrieved", reqs, Meta{Total: total, Limit: limit, Offset: offset})
}

// DriverHistory handles GET /api/v1/ride-requests/driver-history (driver).
func (h *RideRequestHandler) DriverHistory(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	limit, offset := paging(c)

	reqs, total, err := h.requestService.DriverHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "ride history retrieved", reqs, Meta{Total: total, Limit: limit, Offset: offset})
}

// Open handles GET /api/v1/ride-requests/open (driver).
func (h *RideRequestHandler) Open(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	limit, offset := paging(c)

	reqs, total, err := h.requestService.OpenRequests(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "open requests retrieved", reqs, Meta{Total: total, Limit: limit, Offset: offset})
}

// ListAll handles GET /api/v1/ride-requests (admin).
func (h *RideRequestHandler) ListAll(c *gin.Context) {
	limit, offset := paging(c)

	reqs, total, err := h.requestService.AllRequests(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "ride requests retrieved", reqs, Meta{Total: total, Limit: limit, Offset: offset})
}
