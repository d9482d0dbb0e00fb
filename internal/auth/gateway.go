package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultSignUpURL is the identity service account creation endpoint.
	DefaultSignUpURL = "https://identitytoolkit.googleapis.com/v1/accounts:signUp"

	// DefaultSignInURL is the identity service password verification endpoint.
	DefaultSignInURL = "https://www.googleapis.com/identitytoolkit/v3/relyingparty/verifyPassword"

	maxResponseBytes = 1 << 20

	tracerName = "github.com/wolfeidau/recipebook/internal/auth"
)

// Authenticator performs sign-up and sign-in against an identity service.
// Implementations never return errors; failures are AuthenticateFailure outcomes.
type Authenticator interface {
	SignUp(ctx context.Context, creds Credentials) Outcome
	SignIn(ctx context.Context, creds Credentials) Outcome
}

// GatewayConfig configures the identity service endpoints.
type GatewayConfig struct {
	APIKey    string
	SignUpURL string
	SignInURL string
}

// Gateway is the HTTP client for the identity service.
type Gateway struct {
	client *http.Client
	config GatewayConfig
	now    func() time.Time
}

var _ Authenticator = (*Gateway)(nil)

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayClock overrides the clock used to compute expiry instants.
func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway creates a gateway. Empty endpoint URLs fall back to the defaults.
func NewGateway(client *http.Client, config GatewayConfig, opts ...GatewayOption) (*Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("identity API key is required")
	}

	if config.SignUpURL == "" {
		config.SignUpURL = DefaultSignUpURL
	}
	if config.SignInURL == "" {
		config.SignInURL = DefaultSignInURL
	}

	g := &Gateway{
		client: client,
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

type authRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authResponse struct {
	Kind         string `json:"kind"`
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Registered   *bool  `json:"registered,omitempty"`
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an account and returns the resulting session.
func (g *Gateway) SignUp(ctx context.Context, creds Credentials) Outcome {
	return g.authenticate(ctx, "signUp", g.config.SignUpURL, creds)
}

// SignIn verifies the password of an existing account.
func (g *Gateway) SignIn(ctx context.Context, creds Credentials) Outcome {
	return g.authenticate(ctx, "signIn", g.config.SignInURL, creds)
}

func (g *Gateway) authenticate(ctx context.Context, op, endpoint string, creds Credentials) Outcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "identity."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	metrics := telemetry.GetMetrics()
	opAttr := metric.WithAttributes(attribute.String("op", op))
	metrics.AuthAttemptsTotal.Add(ctx, 1, opAttr)

	started := time.Now()
	resp, err := g.post(ctx, op, endpoint, creds)
	metrics.IdentityRequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()), opAttr)

	if err != nil {
		failure := FailureFromError(err)

		span.RecordError(err)
		span.SetStatus(codes.Error, failure.Message)
		metrics.AuthFailuresTotal.Add(ctx, 1, opAttr)

		log.Warn().Err(err).Str("op", op).Str("message", failure.Message).Msg("authentication failed")

		return failure
	}

	expiresIn := time.Duration(resp.expiresInSeconds) * time.Second
	success := AuthenticateSuccess{
		Email:     resp.Email,
		UserID:    resp.LocalID,
		Token:     resp.IDToken,
		ExpiresAt: g.now().Add(expiresIn),
		ExpiresIn: expiresIn,
		Redirect:  true,
	}

	log.Info().Str("op", op).Str("email", success.Email).Dur("expiresIn", expiresIn).Msg("authentication succeeded")

	return success
}

type parsedResponse struct {
	authResponse
	expiresInSeconds int64
}

func (g *Gateway) post(ctx context.Context, op, endpoint string, creds Credentials) (*parsedResponse, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, &UnknownError{Detail: "invalid endpoint", Err: err}
	}
	q := u.Query()
	q.Set("key", g.config.APIKey)
	u.RawQuery = q.Encode()

	body, err := json.Marshal(authRequest{
		Email:             creds.Email,
		Password:          creds.Password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, &UnknownError{Detail: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, &UnknownError{Detail: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, data)
	}

	var parsed parsedResponse
	if err := json.Unmarshal(data, &parsed.authResponse); err != nil {
		return nil, &UnknownError{StatusCode: resp.StatusCode, Detail: "malformed response", Err: err}
	}

	if parsed.IDToken == "" || parsed.LocalID == "" {
		return nil, &UnknownError{StatusCode: resp.StatusCode, Detail: "response missing token or user id"}
	}

	seconds, err := strconv.ParseInt(parsed.ExpiresIn, 10, 64)
	if err != nil {
		return nil, &UnknownError{StatusCode: resp.StatusCode, Detail: "invalid expiresIn", Err: err}
	}
	if seconds <= 0 {
		return nil, &UnknownError{StatusCode: resp.StatusCode, Detail: "non-positive expiresIn " + parsed.ExpiresIn}
	}
	parsed.expiresInSeconds = seconds

	return &parsed, nil
}

func decodeError(statusCode int, data []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &UnknownError{StatusCode: statusCode, Detail: "malformed error body", Err: err}
	}

	if envelope.Error == nil || envelope.Error.Message == "" {
		return &UnknownError{StatusCode: statusCode, Detail: "missing error message", Err: errors.New(http.StatusText(statusCode))}
	}

	return classifyCode(statusCode, envelope.Error.Message)
}
