package service

import (
	"context"
	"errors"
	"strings"

	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/util"

	"gorm.io/gorm"
)

// UserService reads the user directory and changes roles.
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// GetUsers returns every user, newest first.
func (s *UserService) GetUsers(ctx context.Context) ([]model.User, error) {
	return s.UserRepo.List(ctx)
}

// Promote changes the role of the user with the given email. It backs the
// admin bootstrap command; the HTTP API never changes roles.
func (s *UserService) Promote(ctx context.Context, email string, role model.UserRole) (*model.User, error) {
	if !role.Valid() {
		return nil, util.NewValidationError("role", "must be one of ADMIN EMPLOYEE")
	}
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if err := s.UserRepo.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}
