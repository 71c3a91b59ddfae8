package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterUserRequest is the HTTP request body for registration.
type RegisterUserRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterUserParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "user registered", user)
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "user retrieved", user)
}

// UpdateContactRequest is the HTTP request body for contact updates.
type UpdateContactRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// UpdateContact handles PATCH /api/v1/users/me/contact
func (h *UserHandler) UpdateContact(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.UpdateContact(c.Request.Context(), userID, req.Phone, req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "contact updated", user)
}

// List handles GET /api/v1/users (admin).
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := paging(c)

	users, total, err := h.userService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, "users retrieved", users, Meta{Total: total, Limit: limit, Offset: offset})
}
