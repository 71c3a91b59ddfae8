package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// PaymentHandler handles HTTP requests for payments and gateway callbacks.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitRidePayment handles POST /api/v1/payments/rides/:id
func (h *PaymentHandler) InitRidePayment(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	payment, redirect, err := h.paymentService.InitRidePayment(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment session opened", gin.H{
		"payment":      payment,
		"redirect_url": redirect,
	})
}

// Success handles POST /api/v1/payments/success — the gateway success
// callback. The gateway posts tran_id and val_id form fields.
func (h *PaymentHandler) Success(c *gin.Context) {
	tranID := c.PostForm("tran_id")
	if tranID == "" {
		tranID = c.Query("tran_id")
	}
	if tranID == "" {
		respondBadRequest(c, "missing tran_id")
		return
	}

	valID := c.PostForm("val_id")
	if valID == "" {
		valID = c.Query("val_id")
	}

	payment, err := h.paymentService.HandleSuccess(c.Request.Context(), tranID, valID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment successful", payment)
}

// Fail handles POST /api/v1/payments/fail — the gateway failure callback.
func (h *PaymentHandler) Fail(c *gin.Context) {
	tranID := c.PostForm("tran_id")
	if tranID == "" {
		tranID = c.Query("tran_id")
	}
	if tranID == "" {
		respondBadRequest(c, "missing tran_id")
		return
	}

	payment, err := h.paymentService.HandleFail(c.Request.Context(), tranID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment failed", payment)
}

// Cancel handles POST /api/v1/payments/cancel — the gateway cancel callback.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	tranID := c.PostForm("tran_id")
	if tranID == "" {
		tranID = c.Query("tran_id")
	}
	if tranID == "" {
		respondBadRequest(c, "missing tran_id")
		return
	}

	payment, err := h.paymentService.HandleCancel(c.Request.Context(), tranID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment cancelled", payment)
}

// Validate handles GET /api/v1/payments/validate?val_id=...
func (h *PaymentHandler) Validate(c *gin.Context) {
	valID := c.Query("val_id")
	if valID == "" {
		respondBadRequest(c, "missing val_id")
		return
	}

	result, err := h.paymentService.ValidatePayment(c.Request.Context(), valID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment validated", gin.H{
		"status":         result.Status,
		"transaction_id": result.TransactionID,
		"amount":         result.Amount,
	})
}

// Get handles GET /api/v1/payments/:tranID
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentService.GetByTransactionID(c.Request.Context(), c.Param("tranID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "payment retrieved", payment)
}
