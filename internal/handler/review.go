package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/domain"
	"ridebook/internal/middleware"
	"ridebook/internal/service"
)

// ReviewHandler handles HTTP requests for reviews and rating aggregates.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewBody is the HTTP request body for submitting a review.
type CreateReviewBody struct {
	RideRequestID string   `json:"ride_request_id" binding:"required"`
	ReviewType    string   `json:"review_type" binding:"required"`
	Rating        int      `json:"rating" binding:"required"`
	Comment       string   `json:"comment"`
	Tags          []string `json:"tags"`
}

// Create handles POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var body CreateReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), service.CreateReviewParams{
		RideRequestID: body.RideRequestID,
		ReviewerID:    userID,
		ReviewType:    domain.ReviewType(body.ReviewType),
		Rating:        body.Rating,
		Comment:       body.Comment,
		Tags:          body.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "review submitted", review)
}

// UpdateReviewBody is the HTTP request body for editing a review.
type UpdateReviewBody struct {
	Rating  int      `json:"rating" binding:"required"`
	Comment string   `json:"comment"`
	Tags    []string `json:"tags"`
}

// Update handles PATCH /api/v1/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	var body UpdateReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), service.UpdateReviewParams{
		ReviewID:   c.Param("id"),
		ReviewerID: userID,
		Rating:     body.Rating,
		Comment:    body.Comment,
		Tags:       body.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "review updated", review)
}

// Delete handles DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)

	if err := h.reviewService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "review deleted", nil)
}

// Stats handles GET /api/v1/reviews/stats/:userID?type=driver_review
func (h *ReviewHandler) Stats(c *gin.Context) {
	reviewType := domain.ReviewType(c.DefaultQuery("type", string(domain.ReviewTypeDriver)))

	stats, err := h.reviewService.Stats(c.Request.Context(), c.Param("userID"), reviewType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "review stats retrieved", stats)
}

// Received handles GET /api/v1/reviews/received?type=driver_review
func (h *ReviewHandler) Received(c *gin.Context) {
	userID, _ := middleware.UserIDFrom(c)
	reviewType := domain.ReviewType(c.DefaultQuery("type", string(domain.ReviewTypeDriver)))

	reviews, err := h.reviewService.ReceivedReviews(c.Request.Context(), userID, reviewType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "reviews retrieved", reviews)
}
