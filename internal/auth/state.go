package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/atinyakov/inventory/internal/apperr"
)

// StateCookieName carries the OAuth state between login and callback.
const StateCookieName = "inventory.state"

// GenerateState returns a random URL-safe state value.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SetStateCookie sets the state nonce in a short-lived cookie.
func SetStateCookie(w http.ResponseWriter, r *http.Request, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// VerifyStateCookie checks state against the cookie and clears it.
func VerifyStateCookie(w http.ResponseWriter, r *http.Request, state string) error {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil {
		return apperr.NewValidationError("state", "state cookie not found")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	if state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return apperr.NewValidationError("state", "invalid state")
	}
	return nil
}
