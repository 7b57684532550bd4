package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// messageResponse is the body of every error and of plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a client-safe message.
// Server-side failures are logged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, messageResponse{Message: msg})
}

func statusFor(err error) (int, string) {
	var ve *apperr.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "upload too large"
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperr.ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid credential"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "forbidden: you do not own this item"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// idParam reads the {id} route parameter as a positive integer.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}
