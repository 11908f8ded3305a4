package service

import (
	"context"
	"fmt"

	"friendchat/internal/domain"
)

// UserService is the read side of the identity store.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// Resolve looks a user up by username, failing with domain.ErrNotFound.
func (s *UserService) Resolve(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// ListOthers returns every user but the excluded one, in insertion order.
func (s *UserService) ListOthers(ctx context.Context, excludeID int64) ([]*domain.User, error) {
	return s.users.ListOthers(ctx, excludeID)
}
