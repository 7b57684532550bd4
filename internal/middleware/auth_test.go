package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/inventory/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type validatorFunc func(string) (int64, error)

func (f validatorFunc) Validate(token string) (int64, error) { return f(token) }

var onlyGood = validatorFunc(func(token string) (int64, error) {
	if token == "good" {
		return 42, nil
	}
	return 0, errors.New("bad token")
})

func TestBearerAuth_Rejects(t *testing.T) {
	cases := map[string]string{
		"no header":     "",
		"wrong scheme":  "Basic dXNlcjpwYXNz",
		"empty token":   "Bearer ",
		"no separator":  "Bearergood",
		"invalid token": "Bearer forged",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := BearerAuth(onlyGood)(dummy)
			req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if dummy.called {
				t.Error("did not expect next handler to be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
			}
		})
	}
}

func TestBearerAuth_ValidToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := BearerAuth(onlyGood)(dummy)
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Fatal("expected next handler to be called")
	}
	id, ok := GetUserIDFromContext(dummy.ctx)
	if !ok || id != 42 {
		t.Errorf("GetUserIDFromContext = %d, %v; want 42, true", id, ok)
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	if _, ok := GetUserIDFromContext(context.Background()); ok {
		t.Error("expected ok=false for a bare context")
	}
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	past := time.Now().Add(-2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "inventory",
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	dummy := &dummyHandler{}
	h := BearerAuth(auth.NewTokenManager(secret, "inventory", time.Hour))(dummy)
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 Unauthorized, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token expired") {
		t.Errorf("body = %q; want token expired message", rec.Body.String())
	}
}
