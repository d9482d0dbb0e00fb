package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type identityServer struct {
	t        *testing.T
	status   int
	body     string
	lastPath string
	lastKey  string
	lastBody authRequest
}

func (s *identityServer) handler(w http.ResponseWriter, r *http.Request) {
	assert.Equal(s.t, http.MethodPost, r.Method)
	assert.Equal(s.t, "application/json", r.Header.Get("Content-Type"))

	s.lastPath = r.URL.Path
	s.lastKey = r.URL.Query().Get("key")
	assert.NoError(s.t, json.NewDecoder(r.Body).Decode(&s.lastBody))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func newTestGateway(t *testing.T, status int, body string) (*Gateway, *identityServer) {
	t.Helper()

	is := &identityServer{t: t, status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(is.handler))
	t.Cleanup(srv.Close)

	g, err := NewGateway(srv.Client(), GatewayConfig{
		APIKey:    "test-api-key",
		SignUpURL: srv.URL + "/accounts:signUp",
		SignInURL: srv.URL + "/verifyPassword",
	}, WithGatewayClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	return g, is
}

const successBody = `{
	"kind": "identitytoolkit#VerifyPasswordResponse",
	"idToken": "id-token",
	"email": "a@b.com",
	"refreshToken": "refresh-token",
	"expiresIn": "3600",
	"localId": "uid-123",
	"registered": true
}`

func TestNewGateway(t *testing.T) {
	t.Run("applies default endpoints", func(t *testing.T) {
		g, err := NewGateway(http.DefaultClient, GatewayConfig{APIKey: "key"})
		require.NoError(t, err)
		require.Equal(t, DefaultSignUpURL, g.config.SignUpURL)
		require.Equal(t, DefaultSignInURL, g.config.SignInURL)
	})

	t.Run("requires api key", func(t *testing.T) {
		_, err := NewGateway(http.DefaultClient, GatewayConfig{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "API key")
	})

	t.Run("requires http client", func(t *testing.T) {
		_, err := NewGateway(nil, GatewayConfig{APIKey: "key"})
		require.Error(t, err)
	})
}

func TestGateway_SignIn_success(t *testing.T) {
	g, is := newTestGateway(t, http.StatusOK, successBody)

	outcome := g.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

	success, ok := outcome.(AuthenticateSuccess)
	require.True(t, ok, "expected success, got %#v", outcome)
	assert.Equal(t, "a@b.com", success.Email)
	assert.Equal(t, "uid-123", success.UserID)
	assert.Equal(t, "id-token", success.Token)
	assert.Equal(t, fixedNow.Add(3600*time.Second), success.ExpiresAt)
	assert.Equal(t, 3600*time.Second, success.ExpiresIn)
	assert.True(t, success.Redirect)

	assert.Equal(t, "/verifyPassword", is.lastPath)
	assert.Equal(t, "test-api-key", is.lastKey)
	assert.Equal(t, authRequest{Email: "a@b.com", Password: "x", ReturnSecureToken: true}, is.lastBody)
}

func TestGateway_SignUp_success(t *testing.T) {
	g, is := newTestGateway(t, http.StatusOK, successBody)

	outcome := g.SignUp(context.Background(), Credentials{Email: "a@b.com", Password: "secret1"})

	success, ok := outcome.(AuthenticateSuccess)
	require.True(t, ok)
	assert.True(t, success.Redirect)
	assert.Equal(t, "/accounts:signUp", is.lastPath)
	assert.True(t, is.lastBody.ReturnSecureToken)
}

func TestGateway_knownErrors(t *testing.T) {
	tests := []struct {
		code    string
		message string
	}{
		{"EMAIL_EXISTS", "This email exists already"},
		{"EMAIL_NOT_FOUND", "This email does not exist."},
		{"INVALID_PASSWORD", "This password is not correct."},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			body := `{"error":{"code":400,"message":"` + tt.code + `","errors":[]}}`

			for name, call := range map[string]func(*Gateway) Outcome{
				"signIn": func(g *Gateway) Outcome { return g.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"}) },
				"signUp": func(g *Gateway) Outcome { return g.SignUp(context.Background(), Credentials{Email: "a@b.com", Password: "x"}) },
			} {
				t.Run(name, func(t *testing.T) {
					g, _ := newTestGateway(t, http.StatusBadRequest, body)

					failure, ok := call(g).(AuthenticateFailure)
					require.True(t, ok)
					assert.Equal(t, tt.message, failure.Message)

					var credErr *CredentialError
					require.True(t, errors.As(failure.Cause, &credErr))
					assert.Equal(t, tt.code, credErr.Code)
				})
			}
		})
	}
}

func TestGateway_unknownErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unlisted code", http.StatusBadRequest, `{"error":{"message":"TOO_MANY_ATTEMPTS_TRY_LATER"}}`},
		{"code with detail suffix", http.StatusBadRequest, `{"error":{"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`},
		{"missing envelope", http.StatusBadRequest, `{}`},
		{"empty message", http.StatusBadRequest, `{"error":{"message":""}}`},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"empty body", http.StatusInternalServerError, ``},
		{"malformed success body", http.StatusOK, `{"idToken":`},
		{"success without token", http.StatusOK, `{"email":"a@b.com","expiresIn":"3600","localId":"uid"}`},
		{"invalid expiresIn", http.StatusOK, `{"idToken":"t","email":"a@b.com","expiresIn":"soon","localId":"uid"}`},
		{"zero expiresIn", http.StatusOK, `{"idToken":"t","email":"a@b.com","expiresIn":"0","localId":"uid"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t, tt.status, tt.body)

			outcome := g.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

			failure, ok := outcome.(AuthenticateFailure)
			require.True(t, ok, "expected failure, got %#v", outcome)
			assert.Equal(t, MessageUnknown, failure.Message)

			var unknownErr *UnknownError
			assert.True(t, errors.As(failure.Cause, &unknownErr))
		})
	}
}

func TestGateway_transportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g, err := NewGateway(srv.Client(), GatewayConfig{
		APIKey:    "key",
		SignInURL: srv.URL + "/verifyPassword",
	})
	require.NoError(t, err)

	outcome := g.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

	failure, ok := outcome.(AuthenticateFailure)
	require.True(t, ok)
	assert.Equal(t, MessageUnknown, failure.Message)

	var transportErr *TransportError
	require.True(t, errors.As(failure.Cause, &transportErr))
	assert.Equal(t, "signIn", transportErr.Op)
}

func TestFailureFromError(t *testing.T) {
	require.Equal(t, MessageInvalidPassword, FailureFromError(&CredentialError{Code: CodeInvalidPassword}).Message)
	require.Equal(t, MessageUnknown, FailureFromError(&CredentialError{Code: "SOMETHING_ELSE"}).Message)
	require.Equal(t, MessageUnknown, FailureFromError(errors.New("boom")).Message)
	require.Equal(t, MessageUnknown, FailureFromError(nil).Message)
}
