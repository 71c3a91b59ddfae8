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

// BookingService handles reservations against ride listings.
type BookingService struct {
	bookingRepo repository.BookingRepository
	rideRepo    repository.RideRepository
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	txRunner    repository.TxRunner
	gateway     gateway.Client
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	txRunner repository.TxRunner,
	gw gateway.Client,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		txRunner:    txRunner,
		gateway:     gw,
		logger:      logger,
	}
}

// CreateBookingParams contains the parameters for booking a listing.
type CreateBookingParams struct {
	UserID     string
	RideID     string
	GuestCount int
}

// CreateBookingResult is the created booking plus the gateway redirect.
type CreateBookingResult struct {
	Booking     *domain.Booking
	Payment     *domain.Payment
	RedirectURL string
}

// CreateBooking reserves seats on a listing and opens a payment session.
// The booking and its Unpaid payment are committed in one transaction before
// the gateway call; a gateway failure leaves them in place for a later
// payment retry.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (*CreateBookingResult, error) {
	if params.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if params.GuestCount < 1 {
		params.GuestCount = 1
	}

	user, err := s.userRepo.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if user.Phone == "" || user.Address == "" {
		return nil, ErrContactRequired
	}

	ride, err := s.rideRepo.GetByID(ctx, params.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusActive {
		return nil, ErrRideNotAvailable
	}
	if params.GuestCount > ride.AvailableSeats {
		return nil, ErrNotEnoughSeats
	}

	amount := ride.Cost * float64(params.GuestCount)

	booking := &domain.Booking{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		RideID:     ride.ID,
		GuestCount: params.GuestCount,
		Status:     domain.BookingStatusPending,
		CreatedAt:  time.Now(),
	}

	payment := &domain.Payment{
		ID:            uuid.New().String(),
		TransactionID: newTransactionID(),
		Amount:        amount,
		Status:        domain.PaymentStatusUnpaid,
		BookingID:     booking.ID,
		CreatedAt:     time.Now(),
	}

	err = s.txRunner.RunInTx(ctx, func(tx repository.Tx) error {
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}
		if err := tx.Bookings().SetPayment(ctx, booking.ID, payment.ID); err != nil {
			return err
		}
		booking.PaymentID = payment.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	redirect, err := s.openSession(ctx, payment, user, ride.Title)
	if err != nil {
		// The booking and its Unpaid payment survive for a retry.
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("gateway init failed after booking")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"transaction_id": payment.TransactionID,
		"amount":         amount,
	}).Info("booking created")

	return &CreateBookingResult{
		Booking:     booking,
		Payment:     payment,
		RedirectURL: redirect,
	}, nil
}

// RetryPayment reopens a payment session for a pending booking whose earlier
// session never settled. The payment gets a fresh transaction id.
func (s *BookingService) RetryPayment(ctx context.Context, bookingID, userID string) (*CreateBookingResult, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotRequestOwner
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, ErrBookingNotPayable
	}

	payment, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrBookingNotPayable
	}
	if payment.Status.Terminal() {
		return nil, ErrPaymentAlreadySettled
	}

	// Fresh transaction id per attempt; retry once on the unlikely clash.
	for attempt := 0; attempt < 2; attempt++ {
		txnID := newTransactionID()
		err = s.paymentRepo.ResetForRetry(ctx, payment.ID, txnID)
		if err == nil {
			payment.TransactionID = txnID
			payment.Status = domain.PaymentStatusUnpaid
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	redirect, err := s.openSession(ctx, payment, user, ride.Title)
	if err != nil {
		return nil, err
	}

	return &CreateBookingResult{
		Booking:     booking,
		Payment:     payment,
		RedirectURL: redirect,
	}, nil
}

// GetBooking retrieves a booking, restricted to its owner.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotRequestOwner
	}
	return booking, nil
}

// UserBookings lists the user's bookings, newest first.
func (s *BookingService) UserBookings(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, int, error) {
	return s.bookingRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *BookingService) openSession(ctx context.Context, payment *domain.Payment, user *domain.User, productName string) (string, error) {
	resp, err := s.gateway.Init(ctx, gateway.InitRequest{
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Currency:      "BDT",
		ProductName:   productName,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
	})
	if err != nil {
		return "", err
	}
	return resp.RedirectURL, nil
}

// newTransactionID mints a gateway transaction id.
func newTransactionID() string {
	return fmt.Sprintf("tran_%s", uuid.New().String())
}
