package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/gateway"
	"ridebook/internal/repository"
)

// PaymentService reconciles gateway callbacks with payment, booking and
// ride records.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	rideRepo    repository.RideRepository
	userRepo    repository.UserRepository
	txRunner    repository.TxRunner
	gateway     gateway.Client
	renderer    DocumentRenderer
	blobs       BlobStore
	notifier    *NotificationService
	logger      *logrus.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	txRunner repository.TxRunner,
	gw gateway.Client,
	renderer DocumentRenderer,
	blobs BlobStore,
	notifier *NotificationService,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		txRunner:    txRunner,
		gateway:     gw,
		renderer:    renderer,
		blobs:       blobs,
		notifier:    notifier,
		logger:      logger,
	}
}

// InitRidePayment opens a payment session for the direct ride flow: the
// listing owner pays the ride cost. An existing Paid payment rejects the
// init; a lingering non-Paid payment is reset and reused.
func (s *PaymentService) InitRidePayment(ctx context.Context, rideID, userID string) (*domain.Payment, string, error) {
	if rideID == "" {
		return nil, "", ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, "", err
	}
	if ride.Cost <= 0 {
		return nil, "", ErrBookingNotPayable
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	payment, err := s.paymentRepo.GetByRideID(ctx, rideID)
	if err != nil {
		return nil, "", err
	}

	switch {
	case payment == nil:
		payment, err = s.createPayment(ctx, domain.RideTarget(rideID), ride.Cost)
		if err != nil {
			return nil, "", err
		}
	case payment.Status == domain.PaymentStatusPaid:
		return nil, "", ErrPaymentAlreadySettled
	default:
		// Reuse the record with a fresh transaction id.
		if err := s.resetPayment(ctx, payment); err != nil {
			return nil, "", err
		}
	}

	resp, err := s.gateway.Init(ctx, gateway.InitRequest{
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Currency:      "BDT",
		ProductName:   ride.Title,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
	})
	if err != nil {
		return nil, "", err
	}

	return payment, resp.RedirectURL, nil
}

// createPayment inserts a new Unpaid payment, retrying once with a fresh
// transaction id on the unlikely unique collision.
func (s *PaymentService) createPayment(ctx context.Context, target domain.PaymentTarget, amount float64) (*domain.Payment, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		payment := newUnpaidPayment(target, amount)
		lastErr = s.paymentRepo.Create(ctx, payment)
		if lastErr == nil {
			return payment, nil
		}
		if !errors.Is(lastErr, repository.ErrDuplicate) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// newUnpaidPayment mints an Unpaid payment record linked to either flow of
// the target union.
func newUnpaidPayment(target domain.PaymentTarget, amount float64) *domain.Payment {
	return &domain.Payment{
		ID:            uuid.New().String(),
		TransactionID: newTransactionID(),
		Amount:        amount,
		Status:        domain.PaymentStatusUnpaid,
		BookingID:     target.BookingID,
		RideID:        target.RideID,
		CreatedAt:     time.Now(),
	}
}

func (s *PaymentService) resetPayment(ctx context.Context, payment *domain.Payment) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		txnID := newTransactionID()
		lastErr = s.paymentRepo.ResetForRetry(ctx, payment.ID, txnID)
		if lastErr == nil {
			payment.TransactionID = txnID
			payment.Status = domain.PaymentStatusUnpaid
			return nil
		}
		if !errors.Is(lastErr, repository.ErrDuplicate) {
			return lastErr
		}
	}
	return lastErr
}

// HandleSuccess applies a gateway success callback. The payment flip and the
// target's status propagation commit in one transaction; invoice generation,
// upload and delivery run after commit and never roll the payment back. A
// callback on an already-terminal payment is rejected with no side effects.
func (s *PaymentService) HandleSuccess(ctx context.Context, transactionID, valID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return nil, ErrPaymentAlreadySettled
	}

	err = s.txRunner.RunInTx(ctx, func(tx repository.Tx) error {
		if err := tx.Payments().UpdateStatus(ctx, payment.ID, domain.PaymentStatusPaid); err != nil {
			return err
		}

		target := payment.Target()
		switch target.Kind {
		case domain.PaymentTargetBooking:
			return tx.Bookings().UpdateStatus(ctx, target.BookingID, domain.BookingStatusCompleted)
		case domain.PaymentTargetRide:
			// The ride listing carries no intermediate payment status.
			return nil
		default:
			return fmt.Errorf("unknown payment target kind %q", target.Kind)
		}
	})
	if err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusPaid

	// Everything past the commit is best effort.
	if valID != "" {
		s.recordValidation(ctx, payment, valID)
	}
	s.deliverInvoice(ctx, payment)

	s.logger.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"payment_id":     payment.ID,
	}).Info("payment settled")

	return payment, nil
}

// HandleFail applies a gateway failure callback.
func (s *PaymentService) HandleFail(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return s.settleUnsuccessful(ctx, transactionID, domain.PaymentStatusFailed, domain.BookingStatusFailed)
}

// HandleCancel applies a gateway cancellation callback.
func (s *PaymentService) HandleCancel(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return s.settleUnsuccessful(ctx, transactionID, domain.PaymentStatusCancelled, domain.BookingStatusCancelled)
}

func (s *PaymentService) settleUnsuccessful(ctx context.Context, transactionID string, paymentStatus domain.PaymentStatus, bookingStatus domain.BookingStatus) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return nil, ErrPaymentAlreadySettled
	}

	err = s.txRunner.RunInTx(ctx, func(tx repository.Tx) error {
		if err := tx.Payments().UpdateStatus(ctx, payment.ID, paymentStatus); err != nil {
			return err
		}

		target := payment.Target()
		switch target.Kind {
		case domain.PaymentTargetBooking:
			return tx.Bookings().UpdateStatus(ctx, target.BookingID, bookingStatus)
		case domain.PaymentTargetRide:
			return nil
		default:
			return fmt.Errorf("unknown payment target kind %q", target.Kind)
		}
	})
	if err != nil {
		return nil, err
	}
	payment.Status = paymentStatus

	if user, uerr := s.payerForPayment(ctx, payment); uerr == nil {
		if nerr := s.notifier.NotifyPaymentFailed(ctx, payment, user.ID); nerr != nil {
			s.logger.WithError(nerr).Warn("payment failure notification failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"status":         paymentStatus,
	}).Info("payment closed without settlement")

	return payment, nil
}

// ValidatePayment fetches the gateway's authoritative record by validation
// id and stores it on the payment.
func (s *PaymentService) ValidatePayment(ctx context.Context, valID string) (*gateway.ValidationResult, error) {
	result, err := s.gateway.Validate(ctx, valID)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByTransactionID(ctx, result.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SetGatewayData(ctx, payment.ID, result.Raw); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByTransactionID retrieves a payment by its gateway transaction id.
func (s *PaymentService) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return s.paymentRepo.GetByTransactionID(ctx, transactionID)
}

func (s *PaymentService) recordValidation(ctx context.Context, payment *domain.Payment, valID string) {
	result, err := s.gateway.Validate(ctx, valID)
	if err != nil {
		s.logger.WithError(err).WithField("val_id", valID).Warn("gateway validation failed")
		return
	}
	if err := s.paymentRepo.SetGatewayData(ctx, payment.ID, result.Raw); err != nil {
		s.logger.WithError(err).Warn("failed to store gateway data")
	}
}

// deliverInvoice renders, uploads and announces the invoice for a settled
// payment. Failures are logged and swallowed.
func (s *PaymentService) deliverInvoice(ctx context.Context, payment *domain.Payment) {
	user, title, guests, err := s.invoiceContext(ctx, payment)
	if err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).Warn("cannot assemble invoice context")
		return
	}

	doc, err := s.renderer.Render(invoiceData(payment, user, title, guests))
	if err != nil {
		s.logger.WithError(err).Warn("invoice render failed")
		return
	}

	url, err := s.blobs.Upload(ctx, "invoices/"+payment.TransactionID+".txt", doc)
	if err != nil {
		s.logger.WithError(err).Warn("invoice upload failed")
		return
	}

	if err := s.paymentRepo.SetInvoiceURL(ctx, payment.ID, url); err != nil {
		s.logger.WithError(err).Warn("failed to record invoice url")
		return
	}
	payment.InvoiceURL = url

	if err := s.notifier.NotifyPaymentSuccess(ctx, payment, user.ID); err != nil {
		s.logger.WithError(err).Warn("payment success notification failed")
	}
	if err := s.notifier.NotifyInvoiceReady(ctx, payment, user.ID); err != nil {
		s.logger.WithError(err).Warn("invoice notification failed")
	}
}

// invoiceContext resolves the paying user, product title and guest count for
// either payment flow.
func (s *PaymentService) invoiceContext(ctx context.Context, payment *domain.Payment) (*domain.User, string, int, error) {
	target := payment.Target()
	switch target.Kind {
	case domain.PaymentTargetBooking:
		booking, err := s.bookingRepo.GetByID(ctx, target.BookingID)
		if err != nil {
			return nil, "", 0, err
		}
		ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
		if err != nil {
			return nil, "", 0, err
		}
		user, err := s.userRepo.GetByID(ctx, booking.UserID)
		if err != nil {
			return nil, "", 0, err
		}
		return user, ride.Title, booking.GuestCount, nil
	case domain.PaymentTargetRide:
		ride, err := s.rideRepo.GetByID(ctx, target.RideID)
		if err != nil {
			return nil, "", 0, err
		}
		user, err := s.userRepo.GetByID(ctx, ride.UserID)
		if err != nil {
			return nil, "", 0, err
		}
		return user, ride.Title, 0, nil
	default:
		return nil, "", 0, fmt.Errorf("unknown payment target kind %q", target.Kind)
	}
}

func (s *PaymentService) payerForPayment(ctx context.Context, payment *domain.Payment) (*domain.User, error) {
	user, _, _, err := s.invoiceContext(ctx, payment)
	return user, err
}
