package http

import (
	"net/http"

	"github.com/atinyakov/inventory/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps bundles everything NewRouter mounts.
type RouterDeps struct {
	Auth    *AuthHandler
	Items   *ItemHandler
	Profile *ProfileHandler
	Health  *HealthHandler
	// Uploads serves stored images under /uploads/.
	Uploads http.Handler
	// Tokens validates bearer tokens on protected routes.
	Tokens         middleware.TokenValidator
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter constructs and returns an HTTP handler that serves the
// inventory API.
//
// Routes:
//
//	GET    /                       → Health.Root
//	GET    /healthz                → Health.Health
//	GET    /auth/google            → Auth.Login
//	GET    /auth/google/callback   → Auth.Callback
//	POST   /auth/google/token      → Auth.Token
//	GET    /uploads/*              → Uploads
//	GET    /profile                → Profile.Profile        (bearer)
//	GET    /api/items              → Items.List             (bearer)
//	POST   /api/items              → Items.Create           (bearer)
//	GET    /api/items/{id}         → Items.Get              (bearer)
//	PUT    /api/items/{id}         → Items.Update           (bearer)
//	DELETE /api/items/{id}         → Items.Delete           (bearer)
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP
//  2. WithRequestLogging(logger)
//  3. Recoverer
//  4. CORS
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", d.Health.Root)
	r.Get("/healthz", d.Health.Health)
	r.Handle("/uploads/*", d.Uploads)

	r.Route("/auth/google", func(r chi.Router) {
		r.Get("/", d.Auth.Login)
		r.Get("/callback", d.Auth.Callback)
		r.With(chiMiddleware.AllowContentType("application/json")).Post("/token", d.Auth.Token)
	})

	// Protected group: requires a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(d.Tokens))

		r.Get("/profile", d.Profile.Profile)
		r.Route("/api/items", func(r chi.Router) {
			r.Get("/", d.Items.List)
			r.Post("/", d.Items.Create)
			r.Get("/{id}", d.Items.Get)
			r.Put("/{id}", d.Items.Update)
			r.Delete("/{id}", d.Items.Delete)
		})
	})

	return r
}
