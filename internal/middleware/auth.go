// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/inventory/internal/auth"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(token string) (int64, error)
}

// BearerAuth is a middleware that enforces session token authentication.
//
// It expects an "Authorization: Bearer <token>" header. On success the user
// id carried by the token is stored in the request context; otherwise the
// request is answered with 401 and next is never called.
func BearerAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing or malformed authorization header")
				return
			}
			userID, err := tokens.Validate(token)
			if err != nil {
				if auth.IsExpired(err) {
					unauthorized(w, "token expired")
					return
				}
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="inventory"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. ok is false when BearerAuth did not run.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userKey).(int64)
	return id, ok
}
