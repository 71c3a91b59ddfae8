package repository

import (
	"context"

	"ridebook/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create persists a new review. Returns ErrDuplicate when the reviewer
	// has already reviewed this ride request with the same review type.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by ID.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByReviewee returns all reviews of one type received by a user.
	ListByReviewee(ctx context.Context, revieweeID string, reviewType domain.ReviewType) ([]*domain.Review, error)

	// Update persists rating, comment and tags of an existing review.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id string) error
}
