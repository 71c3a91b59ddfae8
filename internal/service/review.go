package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// ReviewService handles reviews and rating aggregation.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	requestRepo repository.RideRequestRepository
	driverRepo  repository.DriverRepository
	logger      *logrus.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	requestRepo repository.RideRequestRepository,
	driverRepo repository.DriverRepository,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		requestRepo: requestRepo,
		driverRepo:  driverRepo,
		logger:      logger,
	}
}

// CreateReviewParams contains the parameters for submitting a review.
type CreateReviewParams struct {
	RideRequestID string
	ReviewerID    string // user id of the caller
	ReviewType    domain.ReviewType
	Rating        int
	Comment       string
	Tags          []string
}

// Create submits a review for a completed ride request. The reviewer must
// be a true participant, the review type must match their side, and each
// participant reviews a ride at most once per type.
func (s *ReviewService) Create(ctx context.Context, params CreateReviewParams) (*domain.Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if !params.ReviewType.Valid() {
		return nil, ErrInvalidReviewType
	}

	req, err := s.requestRepo.GetByID(ctx, params.RideRequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RideRequestCompleted {
		return nil, ErrRideNotCompleted
	}

	revieweeID, err := s.resolveReviewee(ctx, req, params.ReviewerID, params.ReviewType)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:            uuid.New().String(),
		RideRequestID: req.ID,
		ReviewerID:    params.ReviewerID,
		RevieweeID:    revieweeID,
		ReviewType:    params.ReviewType,
		Rating:        params.Rating,
		Comment:       params.Comment,
		Tags:          params.Tags,
		CreatedAt:     time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	if err := s.recomputeRating(ctx, review.RevieweeID, review.ReviewType); err != nil {
		s.logger.WithError(err).WithField("review_id", review.ID).Error("rating recompute failed")
	}

	return review, nil
}

// resolveReviewee checks the reviewer is the correct participant for the
// review type and returns the other party.
//
// A driver_review is the rider rating the assigned driver's user; a
// rider_review is the assigned driver's user rating the rider.
func (s *ReviewService) resolveReviewee(ctx context.Context, req *domain.RideRequest, reviewerID string, reviewType domain.ReviewType) (string, error) {
	if req.DriverID == "" {
		return "", ErrNotRideParticipant
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return "", err
	}

	switch reviewType {
	case domain.ReviewTypeDriver:
		if reviewerID != req.RiderID {
			if reviewerID == driver.UserID {
				return "", ErrReviewRoleMismatch
			}
			return "", ErrNotRideParticipant
		}
		return driver.UserID, nil
	case domain.ReviewTypeRider:
		if reviewerID != driver.UserID {
			if reviewerID == req.RiderID {
				return "", ErrReviewRoleMismatch
			}
			return "", ErrNotRideParticipant
		}
		return req.RiderID, nil
	default:
		return "", ErrInvalidReviewType
	}
}

// UpdateReviewParams contains the editable fields of a review.
type UpdateReviewParams struct {
	ReviewID   string
	ReviewerID string
	Rating     int
	Comment    string
	Tags       []string
}

// Update edits the reviewer's own review and recomputes the aggregate.
func (s *ReviewService) Update(ctx context.Context, params UpdateReviewParams) (*domain.Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.GetByID(ctx, params.ReviewID)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != params.ReviewerID {
		return nil, ErrNotReviewOwner
	}

	review.Rating = params.Rating
	review.Comment = params.Comment
	if params.Tags != nil {
		review.Tags = params.Tags
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recomputeRating(ctx, review.RevieweeID, review.ReviewType); err != nil {
		s.logger.WithError(err).WithField("review_id", review.ID).Error("rating recompute failed")
	}

	return review, nil
}

// Delete removes the reviewer's own review and recomputes the aggregate.
func (s *ReviewService) Delete(ctx context.Context, reviewID, reviewerID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.ReviewerID != reviewerID {
		return ErrNotReviewOwner
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	if err := s.recomputeRating(ctx, review.RevieweeID, review.ReviewType); err != nil {
		s.logger.WithError(err).WithField("review_id", review.ID).Error("rating recompute failed")
	}

	return nil
}

// recomputeRating recalculates the mean rating for the reviewee. Driver
// ratings are persisted on the driver profile; rider aggregates are computed
// on read only.
func (s *ReviewService) recomputeRating(ctx context.Context, revieweeID string, reviewType domain.ReviewType) error {
	if reviewType != domain.ReviewTypeDriver {
		return nil
	}

	reviews, err := s.reviewRepo.ListByReviewee(ctx, revieweeID, reviewType)
	if err != nil {
		return err
	}

	driver, err := s.driverRepo.GetByUserID(ctx, revieweeID)
	if err != nil {
		return err
	}

	return s.driverRepo.UpdateRating(ctx, driver.ID, meanRating(reviews))
}

// meanRating is the arithmetic mean rounded to one decimal; zero with no
// reviews.
func meanRating(reviews []*domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

// ReviewStats aggregates received reviews for one user and type.
type ReviewStats struct {
	RevieweeID    string           `json:"reviewee_id"`
	ReviewType    domain.ReviewType `json:"review_type"`
	Average       float64          `json:"average"`
	Count         int              `json:"count"`
	Distribution  map[int]int      `json:"distribution"`
	RecentReviews []*domain.Review `json:"recent_reviews"`
}

// maxRecentReviews bounds the recent list in stats responses.
const maxRecentReviews = 5

// Stats computes the aggregate for reviews received by a user.
func (s *ReviewService) Stats(ctx context.Context, revieweeID string, reviewType domain.ReviewType) (*ReviewStats, error) {
	if !reviewType.Valid() {
		return nil, ErrInvalidReviewType
	}

	reviews, err := s.reviewRepo.ListByReviewee(ctx, revieweeID, reviewType)
	if err != nil {
		return nil, err
	}

	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range reviews {
		distribution[r.Rating]++
	}

	recent := reviews
	if len(recent) > maxRecentReviews {
		recent = recent[:maxRecentReviews]
	}

	return &ReviewStats{
		RevieweeID:    revieweeID,
		ReviewType:    reviewType,
		Average:       meanRating(reviews),
		Count:         len(reviews),
		Distribution:  distribution,
		RecentReviews: recent,
	}, nil
}

// ReceivedReviews lists the reviews a user has received.
func (s *ReviewService) ReceivedReviews(ctx context.Context, revieweeID string, reviewType domain.ReviewType) ([]*domain.Review, error) {
	if !reviewType.Valid() {
		return nil, ErrInvalidReviewType
	}
	return s.reviewRepo.ListByReviewee(ctx, revieweeID, reviewType)
}
