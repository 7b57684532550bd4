package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/middleware"
	"github.com/atinyakov/inventory/internal/models"
	"go.uber.org/zap"
)

// UserLookup resolves the authenticated user.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	Users UserLookup
	Log   *zap.Logger
}

type profileResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Profile returns the authenticated user.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.Log, apperr.ErrUnauthenticated)
		return
	}
	user, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	writeJSON(w, http.StatusOK, profileResponse{Message: "Welcome, " + name, User: user})
}
