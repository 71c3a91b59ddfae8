package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/domain"
	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// DriverHandler handles HTTP requests for driver profiles.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for a driver application.
type RegisterDriverRequest struct {
	VehicleType        string `json:"vehicle_type" binding:"required"`
	VehicleModel       string `json:"vehicle_model" binding:"required"`
	VehiclePlateNumber string `json:"vehicle_plate_number" binding:"required"`
	DrivingLicense     string `json:"driving_license" binding:"required"`
}

// Register handles POST /api/v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverParams{
		UserID:             userID,
		VehicleType:        domain.VehicleType(req.VehicleType),
		VehicleModel:       req.VehicleModel,
		VehiclePlateNumber: req.VehiclePlateNumber,
		DrivingLicense:     req.DrivingLicense,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "driver application submitted", driver)
}

// Me handles GET /api/v1/drivers/me
func (h *DriverHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	driver, err := h.driverService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "driver retrieved", driver)
}

// SetOnlineRequest is the HTTP request body for availability toggling.
type SetOnlineRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// SetOnline handles PATCH /api/v1/drivers/me/online
func (h *DriverHandler) SetOnline(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var req SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	driver, err := h.driverService.SetOnline(c.Request.Context(), userID, *req.Online)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "availability updated", driver)
}

// Earnings handles GET /api/v1/drivers/me/earnings
func (h *DriverHandler) Earnings(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	summary, err := h.driverService.Earnings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "earnings retrieved", summary)
}

// List handles GET /api/v1/drivers (admin).
func (h *DriverHandler) List(c *gin.Context) {
	limit, offset := paging(c)

	drivers, total, err := h.driverService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "drivers retrieved", drivers, Meta{Total: total, Limit: limit, Offset: offset})
}

// Approve handles POST /api/v1/drivers/:id/approve (admin).
func (h *DriverHandler) Approve(c *gin.Context) {
	adminID, _ := middleware.UserIDFrom(c)

	driver, err := h.driverService.Approve(c.Request.Context(), c.Param("id"), adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "driver approved", driver)
}

// Reject handles POST /api/v1/drivers/:id/reject (admin).
func (h *DriverHandler) Reject(c *gin.Context) {
	driver, err := h.driverService.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "driver rejected", driver)
}

// Suspend handles POST /api/v1/drivers/:id/suspend (admin).
func (h *DriverHandler) Suspend(c *gin.Context) {
	driver, err := h.driverService.Suspend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "driver suspended", driver)
}

// Reactivate handles POST /api/v1/drivers/:id/reactivate (admin).
func (h *DriverHandler) Reactivate(c *gin.Context) {
	driver, err := h.driverService.Reactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "driver reactivated", driver)
}
