//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/db"
	"github.com/atinyakov/inventory/internal/models"
	"github.com/atinyakov/inventory/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// setupTestDB starts one PostgreSQL container per test run, migrates it and
// returns a fresh connection with empty tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	once.Do(func() {
		sharedDSN, initErr = startContainer()
	})
	if initErr != nil {
		t.Fatalf("failed to setup test DB: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.InitPostgres(ctx, sharedDSN, zap.NewNop())
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `TRUNCATE items, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return conn
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port()), nil
}

func TestUsers_CreateConflict(t *testing.T) {
	conn := setupTestDB(t)
	users := repository.NewPostgresUserRepository(conn)
	ctx := context.Background()

	u, err := users.Create(ctx, "google-1", "Alice", "alice@example.com")
	require.NoError(t, err)

	_, err = users.Create(ctx, "google-1", "Alice again", "")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := users.GetByExternalID(ctx, "google-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestItems_OwnershipLifecycle(t *testing.T) {
	conn := setupTestDB(t)
	users := repository.NewPostgresUserRepository(conn)
	items := repository.NewPostgresItemRepository(conn)
	ctx := context.Background()

	owner, err := users.Create(ctx, "google-owner", "Owner", "")
	require.NoError(t, err)
	other, err := users.Create(ctx, "google-other", "Other", "")
	require.NoError(t, err)

	it, err := items.Create(ctx, owner.ID, "Laptop", "fast", "/uploads/a.png")
	require.NoError(t, err)

	name := "Hijacked"
	_, _, err = items.Update(ctx, it.ID, other.ID, models.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	desc := ""
	before, after, err := items.Update(ctx, it.ID, owner.ID, models.ItemPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "fast", before.Description)
	assert.Equal(t, "", after.Description)
	assert.Equal(t, "Laptop", after.Name)

	_, err = items.Delete(ctx, it.ID, other.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = items.Delete(ctx, it.ID, owner.ID)
	require.NoError(t, err)

	_, err = items.GetByID(ctx, it.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestItems_SeedIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	items := repository.NewPostgresItemRepository(conn)
	ctx := context.Background()

	seed := []models.Item{{Name: "Laptop", ImageRef: "https://placehold.co/1"}}

	n, err := items.SeedCatalogue(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = items.SeedCatalogue(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	list, err := items.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].OwnerID)
}
