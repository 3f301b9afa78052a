package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

func newAuthService(upstream *mockAuthenticator, sessions *mockSessionStore) *service.AuthService {
	return service.NewAuthService(upstream, sessions, "test-secret", time.Hour, 24*time.Hour, zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	upstream := &mockAuthenticator{
		result: &domain.UpstreamLoginResult{
			Token:    "upstream-jwt",
			ID:       "7",
			Username: "ada",
			Email:    "ada@example.com",
		},
	}
	sessions := &mockSessionStore{}
	svc := newAuthService(upstream, sessions)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "ada", Password: "secret"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.AccessToken == "" {
		t.Error("expected a signed access token")
	}
	if resp.User.ID != "7" || resp.User.Username != "ada" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}
	if resp.ExpiresIn != int(time.Hour.Seconds()) {
		t.Errorf("expected expiresIn %d, got %d", int(time.Hour.Seconds()), resp.ExpiresIn)
	}

	if len(sessions.saved) != 1 {
		t.Fatalf("expected 1 saved session, got %d", len(sessions.saved))
	}
	sess := sessions.saved[0]
	if sess.UserID != "7" || sess.UpstreamToken != "upstream-jwt" {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestLogin_AccessTokenRoundTrip(t *testing.T) {
	upstream := &mockAuthenticator{
		result: &domain.UpstreamLoginResult{Token: "tok", ID: "7", Username: "ada"},
	}
	sessions := &mockSessionStore{}
	svc := newAuthService(upstream, sessions)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "ada", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != "7" {
		t.Errorf("expected sub '7', got '%s'", claims.Sub)
	}
	if claims.SID != sessions.saved[0].ID {
		t.Errorf("expected sid to reference the saved session")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc := newAuthService(&mockAuthenticator{}, &mockSessionStore{})

	for _, req := range []*domain.LoginRequest{
		{Username: "", Password: "x"},
		{Username: "ada", Password: ""},
	} {
		_, err := svc.Login(context.Background(), req)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	upstream := &mockAuthenticator{loginErr: &domain.ErrUnauthorized{Message: "invalid credentials"}}
	sessions := &mockSessionStore{}
	svc := newAuthService(upstream, sessions)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "ada", Password: "wrong"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(sessions.saved) != 0 {
		t.Error("no session should be created on failed login")
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := newAuthService(&mockAuthenticator{}, &mockSessionStore{})

	cases := []struct {
		name string
		req  *domain.SignupRequest
	}{
		{"missing username", &domain.SignupRequest{Email: "a@b.c", Password: "secret1"}},
		{"bad email", &domain.SignupRequest{Username: "ada", Email: "not-an-email", Password: "secret1"}},
		{"short password", &domain.SignupRequest{Username: "ada", Email: "a@b.c", Password: "abc"}},
	}
	for _, tc := range cases {
		_, err := svc.Signup(context.Background(), tc.req)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestSignup_AutoLogin(t *testing.T) {
	upstream := &mockAuthenticator{
		result: &domain.UpstreamLoginResult{Token: "tok", ID: "9", Username: "ada", Email: "ada@example.com"},
	}
	sessions := &mockSessionStore{}
	svc := newAuthService(upstream, sessions)

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if resp.AccessToken == "" {
		t.Error("expected signup to return a usable access token")
	}
	if resp.User.ID != "9" {
		t.Errorf("expected user id '9', got %q", resp.User.ID)
	}
	if len(sessions.saved) != 1 {
		t.Errorf("expected signup to create a session, got %d", len(sessions.saved))
	}
}

func TestSignup_Conflict(t *testing.T) {
	upstream := &mockAuthenticator{signupErr: &domain.ErrConflict{Message: "username taken"}}
	sessions := &mockSessionStore{}
	svc := newAuthService(upstream, sessions)

	_, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Username: "ada", Email: "ada@example.com", Password: "secret1",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(sessions.saved) != 0 {
		t.Error("no session should be created when signup fails")
	}
}

func TestLogout(t *testing.T) {
	sessions := &mockSessionStore{}
	svc := newAuthService(&mockAuthenticator{}, sessions)

	if err := svc.Logout(context.Background(), "7"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.deletedUsers) != 1 || sessions.deletedUsers[0] != "7" {
		t.Errorf("expected sessions for user '7' deleted, got %v", sessions.deletedUsers)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newAuthService(&mockAuthenticator{}, &mockSessionStore{})

	_, err := svc.ValidateAccessToken("not.a.jwt")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
