package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/domain"
	"ridebook/internal/service"
)

// FareHandler handles HTTP requests for fare estimates and pricing config.
type FareHandler struct {
	fareService *service.FareService
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(fareService *service.FareService) *FareHandler {
	return &FareHandler{fareService: fareService}
}

// EstimateFareBody is the HTTP request body for an itemised fare estimate.
type EstimateFareBody struct {
	Pickup      LocationBody `json:"pickup" binding:"required"`
	Dropoff     LocationBody `json:"dropoff" binding:"required"`
	VehicleType string       `json:"vehicle_type" binding:"required"`
}

// Estimate handles POST /api/v1/fares/estimate
func (h *FareHandler) Estimate(c *gin.Context) {
	var body EstimateFareBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	breakdown, err := h.fareService.Estimate(c.Request.Context(), service.EstimateParams{
		Pickup:      body.Pickup.toDomain(),
		Dropoff:     body.Dropoff.toDomain(),
		VehicleType: domain.VehicleType(body.VehicleType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "fare estimated", breakdown)
}

// Configs handles GET /api/v1/fares/configs (admin).
func (h *FareHandler) Configs(c *gin.Context) {
	configs, err := h.fareService.Configs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "fare configs retrieved", configs)
}

// GetConfig handles GET /api/v1/fares/configs/:vehicleType
func (h *FareHandler) GetConfig(c *gin.Context) {
	vehicleType := domain.VehicleType(c.Param("vehicleType"))
	if !vehicleType.Valid() {
		respondBadRequest(c, "invalid vehicle type")
		return
	}

	cfg, err := h.fareService.Config(c.Request.Context(), vehicleType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "fare config retrieved", cfg)
}

// UpdateConfigBody is the HTTP request body for replacing a pricing config.
type UpdateConfigBody struct {
	BaseFare              float64 `json:"base_fare" binding:"required"`
	PerKmRate             float64 `json:"per_km_rate" binding:"required"`
	PerMinuteRate         float64 `json:"per_minute_rate" binding:"required"`
	MinimumFare           float64 `json:"minimum_fare" binding:"required"`
	PlatformFeePercentage float64 `json:"platform_fee_percentage"`
	TaxPercentage         float64 `json:"tax_percentage"`
}

// UpdateConfig handles PUT /api/v1/fares/configs/:vehicleType (admin).
func (h *FareHandler) UpdateConfig(c *gin.Context) {
	var body UpdateConfigBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	cfg := &domain.FareConfig{
		VehicleType:           domain.VehicleType(c.Param("vehicleType")),
		BaseFare:              body.BaseFare,
		PerKmRate:             body.PerKmRate,
		PerMinuteRate:         body.PerMinuteRate,
		MinimumFare:           body.MinimumFare,
		PlatformFeePercentage: body.PlatformFeePercentage,
		TaxPercentage:         body.TaxPercentage,
	}

	if err := h.fareService.UpdateConfig(c.Request.Context(), cfg); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "fare config updated", cfg)
}
