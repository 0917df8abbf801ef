package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// CreateUser creates a new user account.
// Returns ErrEmailExists if the email address is already registered.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.Users.Create(ctx, user.ID, user)
	if err == nil {
		return nil
	}

	var conflict *IndexConflictError
	if errors.As(err, &conflict) && conflict.Index == "email" {
		return ErrEmailExists
	}
	return fmt.Errorf("create user: %w", err)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address. Lookups are
// case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	return user, nil
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.Touch()

	err := s.Users.Update(ctx, user.ID, user)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNotFound) {
		return ErrUserNotFound
	}
	var conflict *IndexConflictError
	if errors.As(err, &conflict) && conflict.Index == "email" {
		return ErrEmailExists
	}
	return fmt.Errorf("update user: %w", err)
}
