package service

import (
	"context"
	"fmt"

	"recell-store/internal/model"
	"recell-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// UpdateProfile writes the delivery profile and recomputes the
// profile-completed flag.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *model.ProfileInput) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	user.Name = input.Name
	user.Phone = input.Phone
	user.City = input.City
	user.AddressLine1 = input.AddressLine1
	user.AddressLine2 = input.AddressLine2
	user.Landmark = input.Landmark
	user.Pincode = input.Pincode
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}
	user.ProfileCompleted = input.Complete()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Bool("profile_completed", user.ProfileCompleted).
		Msg("profile updated")

	return user, nil
}

// GetByID retrieves a user.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// List retrieves users for the admin overview.
func (s *userService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
