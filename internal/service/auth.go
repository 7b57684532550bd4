package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/inventory/internal/auth"
	"github.com/atinyakov/inventory/internal/models"
)

// IdentityVerifier verifies identity assertions with the external provider.
type IdentityVerifier interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, error)
	Verify(ctx context.Context, idToken string) (*auth.Identity, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserDirectory maps verified identities to local users.
type UserDirectory interface {
	FindOrCreate(ctx context.Context, identity *auth.Identity) (*models.User, error)
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// AuthService turns provider assertions into session tokens.
type AuthService struct {
	verifier IdentityVerifier
	users    UserDirectory
	tokens   TokenIssuer
}

// NewAuthService constructs a new AuthService.
func NewAuthService(verifier IdentityVerifier, users UserDirectory, tokens TokenIssuer) *AuthService {
	return &AuthService{verifier: verifier, users: users, tokens: tokens}
}

// AuthURL returns the provider consent URL for state.
func (s *AuthService) AuthURL(state string) string {
	return s.verifier.AuthCodeURL(state)
}

// LoginWithCode completes the authorization-code flow.
func (s *AuthService) LoginWithCode(ctx context.Context, code string) (*Session, error) {
	identity, err := s.verifier.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, identity)
}

// LoginWithIDToken logs in with an ID token the client obtained itself.
func (s *AuthService) LoginWithIDToken(ctx context.Context, idToken string) (*Session, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, identity)
}

func (s *AuthService) login(ctx context.Context, identity *auth.Identity) (*Session, error) {
	user, err := s.users.FindOrCreate(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: user}, nil
}
