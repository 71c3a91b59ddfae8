package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideRequested  NotificationType = "RIDE_REQUESTED"
	NotificationRideAccepted   NotificationType = "RIDE_ACCEPTED"
	NotificationRidePickedUp   NotificationType = "RIDE_PICKED_UP"
	NotificationRideCompleted  NotificationType = "RIDE_COMPLETED"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
	NotificationDriverApproved NotificationType = "DRIVER_APPROVED"
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed  NotificationType = "PAYMENT_FAILED"
	NotificationInvoiceReady   NotificationType = "INVOICE_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// Notifier delivers notifications to users. Delivery is best effort; the
// caller never fails an operation over a notification error.
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// LogNotifier writes notifications to the structured log. It stands in for
// push/SMS/email transports.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ Notifier = (*LogNotifier)(nil)

// Send logs the notification.
func (n *LogNotifier) Send(_ context.Context, notification Notification) error {
	n.logger.WithFields(logrus.Fields{
		"type":      notification.Type,
		"recipient": notification.RecipientID,
		"title":     notification.Title,
	}).Info(notification.Message)
	return nil
}

// NotificationService builds and delivers domain notifications.
type NotificationService struct {
	notifier Notifier
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifier Notifier) *NotificationService {
	return &NotificationService{notifier: notifier}
}

// NotifyRideAccepted notifies the rider that a driver accepted the request.
func (s *NotificationService) NotifyRideAccepted(ctx context.Context, req *domain.RideRequest) error {
	return s.notifier.Send(ctx, Notification{
		Type:        NotificationRideAccepted,
		RecipientID: req.RiderID,
		Title:       "Driver Accepted",
		Message:     "A driver has accepted your ride request",
		Data: map[string]interface{}{
			"ride_request_id": req.ID,
			"driver_id":       req.DriverID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCompleted notifies the rider that the trip has ended.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, req *domain.RideRequest) error {
	return s.notifier.Send(ctx, Notification{
		Type:        NotificationRideCompleted,
		RecipientID: req.RiderID,
		Title:       "Ride Completed",
		Message:     fmt.Sprintf("Your ride is complete. Total fare: %.2f BDT", req.Fare),
		Data: map[string]interface{}{
			"ride_request_id": req.ID,
			"fare":            req.Fare,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCancelled notifies the party that did not cancel.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, req *domain.RideRequest) error {
	var recipientID, message string
	if req.CancelledBy == domain.CancelledByRider {
		recipientID = req.DriverID
		message = "The rider has cancelled the ride"
	} else {
		recipientID = req.RiderID
		message = "Your ride has been cancelled"
	}
	if recipientID == "" {
		return nil // No one to notify
	}

	return s.notifier.Send(ctx, Notification{
		Type:        NotificationRideCancelled,
		RecipientID: recipientID,
		Title:       "Ride Cancelled",
		Message:     message,
		Data: map[string]interface{}{
			"ride_request_id": req.ID,
			"cancelled_by":    req.CancelledBy,
			"reason":          req.CancellationReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyDriverApproved notifies the user that their driver profile was
// approved.
func (s *NotificationService) NotifyDriverApproved(ctx context.Context, userID, driverID string) error {
	return s.notifier.Send(ctx, Notification{
		Type:        NotificationDriverApproved,
		RecipientID: userID,
		Title:       "Driver Application Approved",
		Message:     "Your driver application has been approved. You can now go online.",
		Data: map[string]interface{}{
			"driver_id": driverID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentSuccess notifies the payer of a settled payment.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, payment *domain.Payment, userID string) error {
	return s.notifier.Send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: userID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of %.2f BDT was successful", payment.Amount),
		Data: map[string]interface{}{
			"payment_id":     payment.ID,
			"transaction_id": payment.TransactionID,
			"amount":         payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed notifies the payer of a failed payment.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, payment *domain.Payment, userID string) error {
	return s.notifier.Send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: userID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of %.2f BDT failed. Please try again.", payment.Amount),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyInvoiceReady notifies the payer that the invoice was generated.
func (s *NotificationService) NotifyInvoiceReady(ctx context.Context, payment *domain.Payment, userID string) error {
	return s.notifier.Send(ctx, Notification{
		Type:        NotificationInvoiceReady,
		RecipientID: userID,
		Title:       "Invoice Ready",
		Message:     fmt.Sprintf("Your invoice for %.2f BDT is ready", payment.Amount),
		Data: map[string]interface{}{
			"payment_id":  payment.ID,
			"invoice_url": payment.InvoiceURL,
		},
		CreatedAt: time.Now(),
	})
}
