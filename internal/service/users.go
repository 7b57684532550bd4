// Package service holds the business rules for logins, the user directory
// and inventory items, delegating persistence to repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/auth"
	"github.com/atinyakov/inventory/internal/models"
)

// UserRepository defines the persistence operations required by the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// Create returns apperr.ErrConflict when externalID is already taken.
	Create(ctx context.Context, externalID, displayName, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, displayName, email string) (*models.User, error)
}

// UserService resolves verified identities to local users.
type UserService struct {
	repo UserRepository
}

// NewUserService constructs a new UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// FindOrCreate returns the user bound to identity.Subject, creating it on
// first login. Two concurrent first logins yield the same user: the loser of
// the insert race reads the winner's row.
func (s *UserService) FindOrCreate(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, apperr.NewValidationError("subject", "identity subject is required")
	}

	u, err := s.repo.GetByExternalID(ctx, identity.Subject)
	switch {
	case err == nil:
		return s.refreshProfile(ctx, u, identity)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	u, err = s.repo.Create(ctx, identity.Subject, identity.DisplayName, identity.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return nil, err
	}

	u, err = s.repo.GetByExternalID(ctx, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("lookup after conflict: %w", err)
	}
	return u, nil
}

func (s *UserService) refreshProfile(ctx context.Context, u *models.User, identity *auth.Identity) (*models.User, error) {
	name, email := u.DisplayName, u.Email
	if identity.DisplayName != "" {
		name = identity.DisplayName
	}
	if identity.Email != "" {
		email = identity.Email
	}
	if name == u.DisplayName && email == u.Email {
		return u, nil
	}
	return s.repo.UpdateProfile(ctx, u.ID, name, email)
}
