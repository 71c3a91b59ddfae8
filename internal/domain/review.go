package domain

import "time"

// ReviewType distinguishes who is being reviewed.
type ReviewType string

const (
	// ReviewTypeDriver is a rider's review of the driver.
	ReviewTypeDriver ReviewType = "driver_review"
	// ReviewTypeRider is a driver's review of the rider.
	ReviewTypeRider ReviewType = "rider_review"
)

// Valid reports whether the review type is known.
func (t ReviewType) Valid() bool {
	return t == ReviewTypeDriver || t == ReviewTypeRider
}

// Review is feedback tied to one completed ride request. At most one review
// per (ride request, reviewer, type).
type Review struct {
	ID            string
	RideRequestID string
	ReviewerID    string
	RevieweeID    string
	ReviewType    ReviewType
	Rating        int // 1..5
	Comment       string
	Tags          []string
	CreatedAt     time.Time
}
