package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ridebook/internal/domain"
	"ridebook/internal/events"
	"ridebook/internal/gateway"
	"ridebook/internal/redis"
	"ridebook/internal/repository"
	"ridebook/internal/service"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		out = append(out, &copy)
	}
	return out, len(out), nil
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	return nil
}

func (m *MockUserRepository) UpdateContact(ctx context.Context, id, phone, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Phone = phone
	user.Address = address
	return nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreditCallCount int32

	// Error injection
	CreateError error
	CreditError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.Driver)}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.UserID == driver.UserID || d.VehiclePlateNumber == driver.VehiclePlateNumber {
			return repository.ErrDuplicate
		}
	}
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.UserID == userID {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.Driver, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		out = append(out, &copy)
	}
	return out, len(out), nil
}

func (m *MockDriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) SetOnline(ctx context.Context, id string, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.IsOnline = online
	return nil
}

func (m *MockDriverRepository) CreditCompletedRide(ctx context.Context, id string, fare float64) error {
	atomic.AddInt32(&m.CreditCallCount, 1)
	if m.CreditError != nil {
		return m.CreditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.TotalCompletedRides++
	driver.Earnings += fare
	return nil
}

func (m *MockDriverRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Rating = rating
	return nil
}

// ──────────────────────────────────────────────
// MOCK RIDE REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockRideRequestRepository is a mock implementation of RideRequestRepository.
// AcceptIfRequested is atomic under the repository mutex, mirroring the
// conditional UPDATE in the real implementation.
type MockRideRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.RideRequest

	// Counters for verification
	AcceptAttempts int32
	UpdateCalls    int32

	// Error injection
	UpdateError error
}

// NewMockRideRequestRepository creates a new mock ride request repository.
func NewMockRideRequestRepository() *MockRideRequestRepository {
	return &MockRideRequestRepository{requests: make(map[string]*domain.RideRequest)}
}

// AddRequest adds a request to the mock repository.
func (m *MockRideRequestRepository) AddRequest(req *domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
}

// GetStored returns the stored request without copying, for assertions.
func (m *MockRideRequestRepository) GetStored(id string) *domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[id]
}

func (m *MockRideRequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return nil
}

func (m *MockRideRequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *req
	return &copy, nil
}

func (m *MockRideRequestRepository) GetActiveByRider(ctx context.Context, riderID string) (*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.RiderID == riderID && !r.Status.Terminal() {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockRideRequestRepository) GetActiveByDriver(ctx context.Context, driverID string) (*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.DriverID == driverID && !r.Status.Terminal() {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockRideRequestRepository) AcceptIfRequested(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	atomic.AddInt32(&m.AcceptAttempts, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status != domain.RideRequestRequested {
		return false, nil
	}
	req.DriverID = driverID
	req.Status = domain.RideRequestAccepted
	req.AcceptedAt = at
	return true, nil
}

func (m *MockRideRequestRepository) AssignIfOpen(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status != domain.RideRequestRequested && req.Status != domain.RideRequestAccepted {
		return false, nil
	}
	req.DriverID = driverID
	req.Status = domain.RideRequestAccepted
	req.AcceptedAt = at
	return true, nil
}

func (m *MockRideRequestRepository) Update(ctx context.Context, req *domain.RideRequest) error {
	atomic.AddInt32(&m.UpdateCalls, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *req
	m.requests[req.ID] = &copy
	return nil
}

func (m *MockRideRequestRepository) ListByRider(ctx context.Context, riderID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	return m.list(func(r *domain.RideRequest) bool { return r.RiderID == riderID })
}

func (m *MockRideRequestRepository) ListByDriver(ctx context.Context, driverID string, limit, offset int) ([]*domain.RideRequest, int, error) {
	return m.list(func(r *domain.RideRequest) bool { return r.DriverID == driverID })
}

func (m *MockRideRequestRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error) {
	return m.list(func(r *domain.RideRequest) bool { return true })
}

func (m *MockRideRequestRepository) ListRequested(ctx context.Context, limit, offset int) ([]*domain.RideRequest, int, error) {
	return m.list(func(r *domain.RideRequest) bool { return r.Status == domain.RideRequestRequested })
}

func (m *MockRideRequestRepository) CountActiveSince(ctx context.Context, vehicleType domain.VehicleType, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.requests {
		if r.VehicleType == vehicleType && !r.Status.Terminal() && !r.RequestedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockRideRequestRepository) SumCompletedFares(ctx context.Context, driverID string, since time.Time) (float64, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	count := 0
	for _, r := range m.requests {
		if r.DriverID == driverID && r.Status == domain.RideRequestCompleted && !r.CompletedAt.Before(since) {
			total += r.Fare
			count++
		}
	}
	return total, count, nil
}

func (m *MockRideRequestRepository) ListCompletedByDriver(ctx context.Context, driverID string, limit int) ([]*domain.RideRequest, error) {
	out, _, err := m.list(func(r *domain.RideRequest) bool {
		return r.DriverID == driverID && r.Status == domain.RideRequestCompleted
	})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRideRequestRepository) list(match func(*domain.RideRequest) bool) ([]*domain.RideRequest, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.RideRequest, 0)
	for _, r := range m.requests {
		if match(r) {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out, len(out), nil
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.Ride)}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetStored returns the stored ride without copying, for assertions.
func (m *MockRideRepository) GetStored(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rides {
		if r.Title == ride.Title || r.Slug == ride.Slug {
			return repository.ErrDuplicate
		}
	}
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetBySlug(ctx context.Context, slug string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.Slug == slug {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRideRepository) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.Title == title && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) AssignDriverIfUnassigned(ctx context.Context, rideID, driverID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusActive || ride.DriverID != "" {
		return false, nil
	}
	ride.DriverID = driverID
	ride.Status = domain.RideStatusAccepted
	return true, nil
}

func (m *MockRideRepository) AddDeclinedDriver(ctx context.Context, rideID, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range ride.DeclinedDrivers {
		if id == driverID {
			return nil
		}
	}
	ride.DeclinedDrivers = append(ride.DeclinedDrivers, driverID)
	return nil
}

func (m *MockRideRepository) ListAvailableForDriver(ctx context.Context, driverID string, vehicle domain.VehicleType, limit, offset int) ([]*domain.Ride, int, error) {
	return m.list(func(r *domain.Ride) bool {
		return r.Status == domain.RideStatusActive && r.DriverID == "" && r.Vehicle == vehicle && !r.DeclinedBy(driverID)
	})
}

func (m *MockRideRepository) ListByStatus(ctx context.Context, status domain.RideStatus, limit, offset int) ([]*domain.Ride, int, error) {
	return m.list(func(r *domain.Ride) bool { return r.Status == status })
}

func (m *MockRideRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Ride, int, error) {
	return m.list(func(r *domain.Ride) bool { return true })
}

func (m *MockRideRepository) list(match func(*domain.Ride) bool) ([]*domain.Ride, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if match(r) {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out, len(out), nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	UpdateStatusCalls int32
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{bookings: make(map[string]*domain.Booking)}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// GetStored returns the stored booking without copying, for assertions.
func (m *MockBookingRepository) GetStored(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) SetPayment(ctx context.Context, bookingID, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	booking.PaymentID = paymentID
	return nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	atomic.AddInt32(&m.UpdateStatusCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.Status = status
	return nil
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, len(out), nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	UpdateStatusCalls int32
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

// GetStored returns the stored payment without copying, for assertions.
func (m *MockPaymentRepository) GetStored(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == payment.TransactionID {
			return repository.ErrDuplicate
		}
	}
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.RideID == rideID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	atomic.AddInt32(&m.UpdateStatusCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

func (m *MockPaymentRepository) ResetForRetry(ctx context.Context, id, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pid, p := range m.payments {
		if p.TransactionID == transactionID && pid != id {
			return repository.ErrDuplicate
		}
	}
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.TransactionID = transactionID
	payment.Status = domain.PaymentStatusUnpaid
	return nil
}

func (m *MockPaymentRepository) SetInvoiceURL(ctx context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.InvoiceURL = url
	return nil
}

func (m *MockPaymentRepository) SetGatewayData(ctx context.Context, id string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.GatewayData = data
	return nil
}

// ──────────────────────────────────────────────
// MOCK REVIEW REPOSITORY
// ──────────────────────────────────────────────

// MockReviewRepository is a mock implementation of ReviewRepository. Create
// enforces the (ride request, reviewer, type) uniqueness of the real table.
type MockReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
}

// NewMockReviewRepository creates a new mock review repository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[string]*domain.Review)}
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.RideRequestID == review.RideRequestID &&
			r.ReviewerID == review.ReviewerID &&
			r.ReviewType == review.ReviewType {
			return repository.ErrDuplicate
		}
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	review, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *review
	return &copy, nil
}

func (m *MockReviewRepository) ListByReviewee(ctx context.Context, revieweeID string, reviewType domain.ReviewType) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Review, 0)
	for _, r := range m.reviews {
		if r.RevieweeID == revieweeID && r.ReviewType == reviewType {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *MockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *review
	m.reviews[review.ID] = &copy
	return nil
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK FARE CONFIG REPOSITORY
// ──────────────────────────────────────────────

// MockFareConfigRepository is a mock implementation of FareConfigRepository.
type MockFareConfigRepository struct {
	mu      sync.RWMutex
	configs map[domain.VehicleType]*domain.FareConfig
}

// NewMockFareConfigRepository creates a new mock fare config repository.
func NewMockFareConfigRepository() *MockFareConfigRepository {
	return &MockFareConfigRepository{configs: make(map[domain.VehicleType]*domain.FareConfig)}
}

func (m *MockFareConfigRepository) GetByVehicleType(ctx context.Context, vehicleType domain.VehicleType) (*domain.FareConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[vehicleType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *cfg
	return &copy, nil
}

func (m *MockFareConfigRepository) GetAll(ctx context.Context) ([]*domain.FareConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.FareConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		copy := *cfg
		out = append(out, &copy)
	}
	return out, nil
}

func (m *MockFareConfigRepository) Upsert(ctx context.Context, cfg *domain.FareConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *cfg
	m.configs[cfg.VehicleType] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION RUNNER
// ──────────────────────────────────────────────

// MockTx exposes the shared mocks as transaction-scoped repositories.
type MockTx struct {
	UserRepo    *MockUserRepository
	DriverRepo  *MockDriverRepository
	RequestRepo *MockRideRequestRepository
	RideRepo    *MockRideRepository
	BookingRepo *MockBookingRepository
	PaymentRepo *MockPaymentRepository
}

func (t *MockTx) Users() repository.UserRepository               { return t.UserRepo }
func (t *MockTx) Drivers() repository.DriverRepository           { return t.DriverRepo }
func (t *MockTx) RideRequests() repository.RideRequestRepository { return t.RequestRepo }
func (t *MockTx) Rides() repository.RideRepository               { return t.RideRepo }
func (t *MockTx) Bookings() repository.BookingRepository         { return t.BookingRepo }
func (t *MockTx) Payments() repository.PaymentRepository         { return t.PaymentRepo }

// MockTxRunner runs the transactional function against the shared mocks.
// There is no rollback; tests assert on the success path and on the error
// being propagated.
type MockTxRunner struct {
	Tx        *MockTx
	RunError  error
	CallCount int32
}

func (r *MockTxRunner) RunInTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	atomic.AddInt32(&r.CallCount, 1)
	if r.RunError != nil {
		return r.RunError
	}
	return fn(r.Tx)
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory lock store.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) acquire(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) release(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func (m *MockLockStore) AcquireRequestLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	return m.acquire("request:" + requestID)
}

func (m *MockLockStore) ReleaseRequestLock(ctx context.Context, requestID string) error {
	return m.release("request:" + requestID)
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	return m.acquire("ride:" + rideID)
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	return m.release("ride:" + rideID)
}

// MockCacheStore is an in-memory cache store.
type MockCacheStore struct {
	mu      sync.RWMutex
	drivers map[string]*redis.CachedDriver
	configs map[string]*redis.CachedFareConfig
	demand  map[string]int
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		drivers: make(map[string]*redis.CachedDriver),
		configs: make(map[string]*redis.CachedFareConfig),
		demand:  make(map[string]int),
	}
}

func (m *MockCacheStore) GetDriver(ctx context.Context, driverID string) (*redis.CachedDriver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[driverID], nil
}

func (m *MockCacheStore) SetDriver(ctx context.Context, driver *redis.CachedDriver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockCacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

func (m *MockCacheStore) GetFareConfig(ctx context.Context, vehicleType string) (*redis.CachedFareConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configs[vehicleType], nil
}

func (m *MockCacheStore) SetFareConfig(ctx context.Context, cfg *redis.CachedFareConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.VehicleType] = cfg
	return nil
}

func (m *MockCacheStore) InvalidateFareConfig(ctx context.Context, vehicleType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, vehicleType)
	return nil
}

func (m *MockCacheStore) GetDemandCount(ctx context.Context, vehicleType string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count, ok := m.demand[vehicleType]
	return count, ok, nil
}

func (m *MockCacheStore) SetDemandCount(ctx context.Context, vehicleType string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demand[vehicleType] = count
	return nil
}

// ──────────────────────────────────────────────
// MOCK GATEWAY CLIENT
// ──────────────────────────────────────────────

// MockGateway is a mock payment gateway client.
type MockGateway struct {
	mu sync.Mutex

	InitCalls      int32
	InitError      error
	ValidateError  error
	ValidateResult *gateway.ValidationResult

	// LastInit is the most recent init request, for assertions.
	LastInit gateway.InitRequest
}

// NewMockGateway creates a mock gateway that accepts every session.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Init(ctx context.Context, req gateway.InitRequest) (*gateway.InitResponse, error) {
	atomic.AddInt32(&m.InitCalls, 1)
	m.mu.Lock()
	m.LastInit = req
	m.mu.Unlock()
	if m.InitError != nil {
		return nil, m.InitError
	}
	return &gateway.InitResponse{
		RedirectURL: "https://gateway.example/session/" + req.TransactionID,
		SessionKey:  "sess-" + req.TransactionID,
	}, nil
}

func (m *MockGateway) Validate(ctx context.Context, valID string) (*gateway.ValidationResult, error) {
	if m.ValidateError != nil {
		return nil, m.ValidateError
	}
	if m.ValidateResult != nil {
		return m.ValidateResult, nil
	}
	return &gateway.ValidationResult{
		Status: "VALID",
		Raw:    json.RawMessage(fmt.Sprintf(`{"val_id":%q,"status":"VALID"}`, valID)),
	}, nil
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER AND NOTIFIER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu           sync.Mutex
	Published    []events.DriverApproved
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishDriverApproved(ctx context.Context, event events.DriverApproved) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, event)
	return nil
}

// PublishedCount returns how many events were published.
func (m *MockPublisher) PublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}

// RecordingNotifier records sent notifications.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []service.Notification
}

// NewRecordingNotifier creates a new recording notifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Send(ctx context.Context, notification service.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, notification)
	return nil
}

// SentCount returns how many notifications of a type were sent; an empty
// type counts everything.
func (n *RecordingNotifier) SentCount(t service.NotificationType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t == "" {
		return len(n.Sent)
	}
	count := 0
	for _, s := range n.Sent {
		if s.Type == t {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK BLOB STORE
// ──────────────────────────────────────────────

// MockBlobStore keeps uploads in memory.
type MockBlobStore struct {
	mu          sync.Mutex
	Uploads     map[string][]byte
	UploadError error
}

// NewMockBlobStore creates a new mock blob store.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{Uploads: make(map[string][]byte)}
}

func (m *MockBlobStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if m.UploadError != nil {
		return "", m.UploadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads[name] = data
	return "https://cdn.example/" + name, nil
}
