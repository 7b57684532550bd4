package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/auth"
	"github.com/atinyakov/inventory/internal/models"
	"github.com/atinyakov/inventory/internal/service"
)

type mockVerifier struct {
	ExchangeFunc func(ctx context.Context, code string) (*auth.Identity, error)
	VerifyFunc   func(ctx context.Context, idToken string) (*auth.Identity, error)
}

func (m *mockVerifier) AuthCodeURL(state string) string { return "https://accounts.example/auth?state=" + state }
func (m *mockVerifier) Exchange(ctx context.Context, code string) (*auth.Identity, error) {
	return m.ExchangeFunc(ctx, code)
}
func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*auth.Identity, error) {
	return m.VerifyFunc(ctx, idToken)
}

type mockDirectory struct {
	FindOrCreateFunc func(ctx context.Context, identity *auth.Identity) (*models.User, error)
}

func (m *mockDirectory) FindOrCreate(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	return m.FindOrCreateFunc(ctx, identity)
}

type issuerFunc func(int64) (string, error)

func (f issuerFunc) Issue(id int64) (string, error) { return f(id) }

func TestLoginWithCode(t *testing.T) {
	verifier := &mockVerifier{
		ExchangeFunc: func(_ context.Context, code string) (*auth.Identity, error) {
			if code != "good" {
				t.Fatalf("unexpected code %q", code)
			}
			return &auth.Identity{Subject: "g-1", DisplayName: "Alice"}, nil
		},
	}
	dir := &mockDirectory{
		FindOrCreateFunc: func(_ context.Context, id *auth.Identity) (*models.User, error) {
			return &models.User{ID: 11, ExternalID: id.Subject, DisplayName: id.DisplayName}, nil
		},
	}
	svc := service.NewAuthService(verifier, dir, issuerFunc(func(id int64) (string, error) {
		if id != 11 {
			t.Fatalf("token issued for %d; want 11", id)
		}
		return "signed", nil
	}))

	sess, err := svc.LoginWithCode(context.Background(), "good")
	if err != nil {
		t.Fatalf("LoginWithCode error: %v", err)
	}
	if sess.AccessToken != "signed" || sess.User.ID != 11 {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestLoginWithIDToken_InvalidCredential(t *testing.T) {
	verifier := &mockVerifier{
		VerifyFunc: func(context.Context, string) (*auth.Identity, error) {
			return nil, apperr.ErrInvalidCredential
		},
	}
	dir := &mockDirectory{
		FindOrCreateFunc: func(context.Context, *auth.Identity) (*models.User, error) {
			t.Fatal("directory must not be consulted for rejected assertions")
			return nil, nil
		},
	}
	svc := service.NewAuthService(verifier, dir, issuerFunc(func(int64) (string, error) { return "", nil }))

	_, err := svc.LoginWithIDToken(context.Background(), "forged")
	if !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Errorf("err = %v; want ErrInvalidCredential", err)
	}
}

func TestLogin_DirectoryFailure(t *testing.T) {
	dbErr := errors.New("db down")
	verifier := &mockVerifier{
		VerifyFunc: func(context.Context, string) (*auth.Identity, error) {
			return &auth.Identity{Subject: "g-1"}, nil
		},
	}
	dir := &mockDirectory{
		FindOrCreateFunc: func(context.Context, *auth.Identity) (*models.User, error) { return nil, dbErr },
	}
	svc := service.NewAuthService(verifier, dir, issuerFunc(func(int64) (string, error) { return "", nil }))

	if _, err := svc.LoginWithIDToken(context.Background(), "tok"); !errors.Is(err, dbErr) {
		t.Errorf("err = %v; want %v", err, dbErr)
	}
}

func TestAuthURL(t *testing.T) {
	svc := service.NewAuthService(&mockVerifier{}, &mockDirectory{}, nil)
	if got := svc.AuthURL("xyz"); got != "https://accounts.example/auth?state=xyz" {
		t.Errorf("AuthURL = %q", got)
	}
}
