// Package cmd implements the inventoryctl commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/inventory/internal/config"
	"github.com/atinyakov/inventory/internal/db"
	"github.com/atinyakov/inventory/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Options
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inventoryctl",
	Short: "Administrative tool for the inventory backend",
	Long: `inventoryctl manages the inventory database outside the HTTP API:
schema migrations, demo catalogue seeding and owner-independent item removal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		options := &config.Options{}
		options.DatabaseDSN, _ = flags.GetString("dsn")
		options.Config, _ = flags.GetString("config")
		if err := config.LoadForCLI(options); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = options

		l := logger.New()
		if err := l.Init(cfg.LogLevel); err != nil {
			return err
		}
		log = l.Log
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("dsn", "d", "", "Database connection string (env: DATABASE_DSN)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (env: CONFIG)")
}

// openDB connects without migrating; commands decide whether to migrate.
func openDB(ctx context.Context) (*sql.DB, error) {
	conn, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
