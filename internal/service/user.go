package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// ErrEmailTaken is returned when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// UserService handles account operations.
type UserService struct {
	userRepo repository.UserRepository
	logger   *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// RegisterUserParams contains the parameters for creating an account.
type RegisterUserParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Register creates a new rider account.
func (s *UserService) Register(ctx context.Context, params RegisterUserParams) (*domain.User, error) {
	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		Role:      domain.RoleRider,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves users with paging. Admin only.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	return s.userRepo.GetAll(ctx, limit, offset)
}

// UpdateContact sets the user's phone and address, required before booking.
func (s *UserService) UpdateContact(ctx context.Context, id, phone, address string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Phone = phone
	user.Address = address
	if err := s.userRepo.UpdateContact(ctx, id, phone, address); err != nil {
		return nil, err
	}
	return user, nil
}
