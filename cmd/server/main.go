// Package main initializes and starts the inventory HTTP server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/inventory/internal/assets"
	"github.com/atinyakov/inventory/internal/auth"
	"github.com/atinyakov/inventory/internal/config"
	"github.com/atinyakov/inventory/internal/db"
	"github.com/atinyakov/inventory/internal/logger"
	"github.com/atinyakov/inventory/internal/repository"
	"github.com/atinyakov/inventory/internal/server/handler/http"
	"github.com/atinyakov/inventory/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	postgresDB, err := db.InitPostgres(startCtx, options.DatabaseDSN, zapLogger)
	if err != nil {
		cancel()
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Discover the identity provider.
	verifier, err := auth.NewGoogleVerifier(startCtx, auth.GoogleIssuer,
		options.GoogleClientID, options.GoogleClientSecret, options.CallbackURL)
	cancel()
	if err != nil {
		zapLogger.Fatal("cannot init identity provider", zap.Error(err))
	}

	store, err := assets.NewDiskStore(options.UploadDir, options.PublicBaseURL)
	if err != nil {
		zapLogger.Fatal("cannot init upload directory", zap.Error(err))
	}
	zapLogger.Info("storing uploads", zap.String("dir", store.Dir()))

	// Initialize repositories for users and items.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	itemRepo := repository.NewPostgresItemRepository(postgresDB)

	// Initialize business-logic services.
	tokens := auth.NewTokenManager(options.JWTSecret, options.JWTIssuer, options.TokenTTL)
	userService := service.NewUserService(userRepo)
	itemService := service.NewItemService(itemRepo, store, zapLogger)
	authService := service.NewAuthService(verifier, userService, tokens)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterDeps{
		Auth:           &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Items:          &http.ItemHandler{Items: itemService, MaxUploadBytes: options.MaxUploadBytes, Log: zapLogger},
		Profile:        &http.ProfileHandler{Users: userService, Log: zapLogger},
		Health:         &http.HealthHandler{DB: postgresDB},
		Uploads:        store.Handler(),
		Tokens:         tokens,
		AllowedOrigins: options.AllowedOrigins(),
		Logger:         zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCertFile != "" {
			server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
			errCh <- server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}

	if err := postgresDB.Close(); err != nil {
		zapLogger.Error("close database", zap.Error(err))
	}
}
