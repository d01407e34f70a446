package services

import (
	"context"
	"errors"
	"fmt"
	"game-store/models"
	"game-store/repositories"
	"game-store/utils"
	"log/slog"
)

type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// EnsureAdmin creates the admin account, or promotes an existing account
// with that email. It is run once at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if user != nil {
		if user.Role == models.RoleAdmin {
			return nil
		}
		if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
		slog.InfoContext(ctx, "existing user promoted to admin", slog.String("email", email))
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{Email: email, Password: hashed, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	slog.InfoContext(ctx, "admin account created", slog.String("email", email))
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}
