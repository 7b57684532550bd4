// Package auth issues and validates session tokens and verifies Google identity assertions.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager handles session token generation and validation.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new token manager.
// secret must be at least 32 characters for HS256 security.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed HS256 token with the user id as subject.
func (m *TokenManager) Issue(userID int64) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses the token and returns the user id it was issued for.
// Every failure wraps apperr.ErrUnauthenticated.
func (m *TokenManager) Validate(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, fmt.Errorf("token is empty: %w", apperr.ErrUnauthenticated)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, fmt.Errorf("parse token: %w: %w", apperr.ErrUnauthenticated, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid subject %q: %w", claims.Subject, apperr.ErrUnauthenticated)
	}
	return userID, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
