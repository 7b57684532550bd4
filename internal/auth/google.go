package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"
)

// GoogleIssuer is the OpenID Connect issuer used for discovery.
const GoogleIssuer = "https://accounts.google.com"

// DefaultScopes are requested on the consent screen.
var DefaultScopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}

// Identity is what a verified assertion says about the user.
type Identity struct {
	Subject     string
	DisplayName string
	Email       string
}

// GoogleVerifier verifies Google identity assertions by wrapping the
// zitadel/oidc RelyingParty implementation.
type GoogleVerifier struct {
	rp rp.RelyingParty
}

// NewGoogleVerifier runs discovery against issuer and returns a verifier
// whose tokens must carry clientID as audience.
func NewGoogleVerifier(ctx context.Context, issuer, clientID, clientSecret, redirectURI string) (*GoogleVerifier, error) {
	client := &http.Client{
		Timeout:   10 * time.Second,
		Transport: &outageTransport{base: http.DefaultTransport},
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, issuer, clientID, clientSecret, redirectURI,
		DefaultScopes, rp.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}
	return &GoogleVerifier{rp: relyingParty}, nil
}

// AuthCodeURL returns the provider consent URL carrying state.
func (v *GoogleVerifier) AuthCodeURL(state string) string {
	return rp.AuthURL(state, v.rp)
}

// Exchange trades an authorization code for a verified identity.
func (v *GoogleVerifier) Exchange(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, apperr.NewValidationError("code", "authorization code is required")
	}
	ctx, outage := watchProvider(ctx)
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, v.rp)
	if err != nil {
		return nil, classifyProviderError("code exchange", err, outage.Load())
	}
	if tokens.IDTokenClaims == nil {
		return nil, fmt.Errorf("code exchange: no id_token: %w", apperr.ErrInvalidCredential)
	}
	return identityFromClaims(tokens.IDTokenClaims)
}

// Verify checks a raw ID token (signature, issuer, audience, expiry).
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, apperr.NewValidationError("token", "id token is required")
	}
	ctx, outage := watchProvider(ctx)
	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, idToken, v.rp.IDTokenVerifier())
	if err != nil {
		return nil, classifyProviderError("verify id token", err, outage.Load())
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims *oidc.IDTokenClaims) (*Identity, error) {
	if claims.Subject == "" {
		return nil, fmt.Errorf("id token without subject: %w", apperr.ErrInvalidCredential)
	}
	name := claims.Name
	if name == "" {
		name = claims.GivenName
	}
	return &Identity{
		Subject:     claims.Subject,
		DisplayName: name,
		Email:       claims.Email,
	}, nil
}

type outageKey struct{}

// watchProvider returns a context whose provider round trips report
// transport failures and 5xx answers into the returned flag.
func watchProvider(ctx context.Context) (context.Context, *atomic.Bool) {
	flag := new(atomic.Bool)
	return context.WithValue(ctx, outageKey{}, flag), flag
}

// outageTransport marks the request's outage flag. The library flattens
// key-fetch errors into strings, so the chain alone cannot tell an outage
// from a bad signature.
type outageTransport struct {
	base http.RoundTripper
}

func (t *outageTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if flag, ok := req.Context().Value(outageKey{}).(*atomic.Bool); ok {
		if err != nil || resp.StatusCode >= http.StatusInternalServerError {
			flag.Store(true)
		}
	}
	return resp, err
}

// classifyProviderError separates provider outages from rejected assertions.
func classifyProviderError(op string, err error, outage bool) error {
	if outage || providerUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrInvalidCredential, err)
}

func providerUnavailable(err error) bool {
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
		retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
		return true
	}
	// key set fetch failures reach us only as text
	return errors.Is(err, oidc.ErrSignatureInvalid) &&
		strings.Contains(err.Error(), "unable to fetch key")
}
