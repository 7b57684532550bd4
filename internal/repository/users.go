// Package repository provides PostgreSQL persistence for users and inventory items.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresUserRepository implements the user directory against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetByID returns the user with the given internal id, or apperr.ErrNotFound.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, external_id, display_name, email FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Email)
	if err != nil {
		return nil, mapError(err, "get user by id")
	}
	return &u, nil
}

// GetByExternalID returns the user bound to the provider subject, or apperr.ErrNotFound.
func (r *PostgresUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, external_id, display_name, email FROM users WHERE external_id = $1
	`, externalID).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Email)
	if err != nil {
		return nil, mapError(err, "get user by external id")
	}
	return &u, nil
}

// Create inserts a new user. A concurrent insert of the same external id
// surfaces as apperr.ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, externalID, displayName, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (external_id, display_name, email) VALUES ($1, $2, $3)
		RETURNING id, external_id, display_name, email
	`, externalID, displayName, email).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Email)
	if err != nil {
		return nil, mapError(err, "create user")
	}
	return &u, nil
}

// UpdateProfile refreshes the provider-supplied display name and email.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id int64, displayName, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		UPDATE users SET display_name = $2, email = $3 WHERE id = $1
		RETURNING id, external_id, display_name, email
	`, id, displayName, email).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Email)
	if err != nil {
		return nil, mapError(err, "update user profile")
	}
	return &u, nil
}

// mapError converts driver errors into the apperr taxonomy.
// Context cancellation passes through untouched.
func mapError(err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrStorageUnavailable, err)
}
