package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// ReviewRepository is a PostgreSQL implementation of
// repository.ReviewRepository.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{q: db}
}

const reviewColumns = `id, ride_request_id, reviewer_id, reviewee_id, review_type, rating, comment, tags, created_at`

// Create persists a new review. A unique index over (ride_request_id,
// reviewer_id, review_type) enforces the one-review rule.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		review.ID,
		review.RideRequestID,
		review.ReviewerID,
		review.RevieweeID,
		review.ReviewType,
		review.Rating,
		nullString(review.Comment),
		pq.Array(review.Tags),
		review.CreatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a review by ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

// ListByReviewee returns all reviews of one type received by a user.
func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID string, reviewType domain.ReviewType) ([]*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewee_id = $1 AND review_type = $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, revieweeID, reviewType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// Update persists rating, comment and tags of an existing review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `UPDATE reviews SET rating = $1, comment = $2, tags = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query,
		review.Rating,
		nullString(review.Comment),
		pq.Array(review.Tags),
		review.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var review domain.Review
	var comment sql.NullString

	err := row.Scan(
		&review.ID,
		&review.RideRequestID,
		&review.ReviewerID,
		&review.RevieweeID,
		&review.ReviewType,
		&review.Rating,
		&comment,
		pq.Array(&review.Tags),
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	review.Comment = comment.String
	return &review, nil
}
