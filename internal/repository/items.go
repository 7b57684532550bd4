package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/models"
)

const itemColumns = "id, name, description, image_ref, owner_id"

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresItemRepository implements inventory item persistence against a PostgreSQL database.
type PostgresItemRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresItemRepository creates a new PostgresItemRepository using the provided *sql.DB.
func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		it    models.Item
		owner sql.NullInt64
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.ImageRef, &owner); err != nil {
		return nil, err
	}
	if owner.Valid {
		id := owner.Int64
		it.OwnerID = &id
	}
	return &it, nil
}

// List returns every item, newest first.
func (r *PostgresItemRepository) List(ctx context.Context) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id DESC`)
	if err != nil {
		return nil, mapError(err, "list items")
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list items")
	}
	return items, nil
}

// GetByID returns a single item or apperr.ErrNotFound.
func (r *PostgresItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(r.DB.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get item")
	}
	return it, nil
}

// Create inserts an item owned by ownerID.
func (r *PostgresItemRepository) Create(ctx context.Context, ownerID int64, name, description, imageRef string) (*models.Item, error) {
	it, err := scanItem(r.DB.QueryRowContext(ctx, `
		INSERT INTO items (name, description, image_ref, owner_id) VALUES ($1, $2, $3, $4)
		RETURNING `+itemColumns,
		name, description, imageRef, ownerID))
	if err != nil {
		return nil, mapError(err, "create item")
	}
	return it, nil
}

// lockOwned selects the row FOR UPDATE and checks that callerID owns it.
func lockOwned(ctx context.Context, tx *sql.Tx, id, callerID int64) (*models.Item, error) {
	it, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "lock item")
	}
	if !it.OwnedBy(callerID) {
		return nil, fmt.Errorf("item %d: %w", id, apperr.ErrForbidden)
	}
	return it, nil
}

// Update applies patch to the item in one transaction, after checking that
// callerID owns it. It returns the row as it was before and after the change.
func (r *PostgresItemRepository) Update(ctx context.Context, id, callerID int64, patch models.ItemPatch) (*models.Item, *models.Item, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, mapError(err, "begin tx")
	}
	defer tx.Rollback()

	before, err := lockOwned(ctx, tx, id, callerID)
	if err != nil {
		return nil, nil, err
	}

	// the row is locked, so the patched copy is what the UPDATE writes
	after := patch.Apply(*before)
	if !patch.Empty() {
		ub := psql.Update("items")
		if patch.Name != nil {
			ub = ub.Set("name", *patch.Name)
		}
		if patch.Description != nil {
			ub = ub.Set("description", *patch.Description)
		}
		if patch.ImageRef != nil {
			ub = ub.Set("image_ref", *patch.ImageRef)
		}
		query, args, err := ub.Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return nil, nil, fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, nil, mapError(err, "update item")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, mapError(err, "commit")
	}
	return before, &after, nil
}

// Delete removes the item in one transaction, after checking that callerID
// owns it, and returns the deleted row.
func (r *PostgresItemRepository) Delete(ctx context.Context, id, callerID int64) (*models.Item, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err, "begin tx")
	}
	defer tx.Rollback()

	it, err := lockOwned(ctx, tx, id, callerID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "delete item")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "commit")
	}
	return it, nil
}

// DeleteAny removes the item regardless of owner.
func (r *PostgresItemRepository) DeleteAny(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(r.DB.QueryRowContext(ctx, `DELETE FROM items WHERE id = $1 RETURNING `+itemColumns, id))
	if err != nil {
		return nil, mapError(err, "delete item")
	}
	return it, nil
}

// SeedCatalogue inserts unowned items, skipping names that are already seeded.
// It returns how many rows were inserted.
func (r *PostgresItemRepository) SeedCatalogue(ctx context.Context, items []models.Item) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapError(err, "begin tx")
	}
	defer tx.Rollback()

	inserted := 0
	for _, it := range items {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO items (name, description, image_ref, owner_id)
			SELECT $1, $2, $3, NULL
			WHERE NOT EXISTS (SELECT 1 FROM items WHERE name = $1 AND owner_id IS NULL)
		`, it.Name, it.Description, it.ImageRef)
		if err != nil {
			return 0, mapError(err, "seed item")
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, mapError(err, "commit")
	}
	return inserted, nil
}
