// Package db opens the PostgreSQL connection and applies the embedded schema migrations.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies every pending migration and logs what ran.
func Migrate(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, r := range results {
		log.Info("applied migration",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration),
		)
	}
	return nil
}

// InitPostgres opens the database and brings the schema up to date.
func InitPostgres(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
