package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds common HTTP client configuration
type Config struct {
	Timeout time.Duration
	Debug   bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Debug:   false,
	}
}

// NewHTTPClient creates the client shared by the identity gateway and the
// recipe client. Requests are traced and logged.
func NewHTTPClient(config Config) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport

	if config.Debug {
		transport = logger.NewHTTPRequests(log.Logger, transport)
	}

	return &http.Client{
		Timeout:   config.Timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}
