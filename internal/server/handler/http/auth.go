// Package http provides the HTTP handlers, error mapping and routing
// for the inventory API.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/auth"
	"github.com/atinyakov/inventory/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the login operations required by the HTTP handlers.
type AuthService interface {
	// AuthURL returns the provider consent URL carrying state.
	AuthURL(state string) string
	// LoginWithCode completes the authorization-code flow.
	LoginWithCode(ctx context.Context, code string) (*service.Session, error)
	// LoginWithIDToken logs in with a client-obtained ID token.
	LoginWithIDToken(ctx context.Context, idToken string) (*service.Session, error)
}

// AuthHandler handles HTTP requests for Google login.
type AuthHandler struct {
	// AuthService performs the underlying login operations.
	AuthService AuthService
	Log         *zap.Logger
}

// TokenRequest represents the JSON payload for ID token login.
type TokenRequest struct {
	// Token is a Google-issued ID token.
	Token string `json:"token"`
}

// Login redirects the browser to the provider consent screen.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	auth.SetStateCookie(w, r, state)
	http.Redirect(w, r, h.AuthService.AuthURL(state), http.StatusFound)
}

// Callback completes the provider redirect and returns a session token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		writeError(w, r, h.Log, apperr.NewValidationError("code", "authorization denied: "+reason))
		return
	}
	if err := auth.VerifyStateCookie(w, r, q.Get("state")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, r, h.Log, apperr.NewValidationError("code", "authorization code is required"))
		return
	}

	session, err := h.AuthService.LoginWithCode(r.Context(), code)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Token logs in with an ID token obtained by the client.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, r, h.Log, apperr.NewValidationError("token", "invalid request"))
		return
	}

	session, err := h.AuthService.LoginWithIDToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
