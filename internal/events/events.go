package events

import (
	"context"
	"time"
)

// Topic names.
const (
	TopicDriverApproved = "driver_approved"
)

// DriverApproved is published when an admin approves a driver profile.
// Consumers promote the owning user's role.
type DriverApproved struct {
	DriverID   string    `json:"driver_id"`
	UserID     string    `json:"user_id"`
	ApprovedBy string    `json:"approved_by"`
	ApprovedAt time.Time `json:"approved_at"`
}

// Publisher publishes domain events to the message bus.
type Publisher interface {
	PublishDriverApproved(ctx context.Context, event DriverApproved) error
}
