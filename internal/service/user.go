package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// UserService handles farming-profile reads and updates.
type UserService struct {
	users store.UserStore
	log   *logger.Logger
}

// NewUserService creates a user service.
func NewUserService(users store.UserStore, log *logger.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// GetProfile returns the user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies a partial update; nil request fields leave the
// stored value untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.City != nil {
		user.City = req.City
	}
	if req.Prefecture != nil {
		user.Prefecture = req.Prefecture
	}
	if req.FarmSize != nil {
		user.FarmSize = req.FarmSize
	}
	if req.CropTypes != nil {
		user.CropTypes = req.CropTypes
	}
	if req.FarmingMethods != nil {
		user.FarmingMethods = req.FarmingMethods
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// DeleteAccount removes the account and everything it owns.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}
