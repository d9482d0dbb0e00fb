// Package recipes synchronises the recipe collection with the hosted JSON
// document database. The whole collection is read and written as one
// document; the last writer wins.
package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	documentPath     = "/recipes.json"
	maxResponseBytes = 4 << 20

	tracerName = "github.com/wolfeidau/recipebook/internal/recipes"
)

// ErrUnexpectedStatus is returned when the database answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status from recipe database")

// Client reads and writes the recipe collection.
type Client struct {
	httpClient  *http.Client
	databaseURL string
	tokens      oauth2.TokenSource
}

// NewClient creates a client. Each request authenticates with the token
// returned by tokens at the time of the call.
func NewClient(httpClient *http.Client, databaseURL string, tokens oauth2.TokenSource) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}

	return &Client{
		httpClient:  httpClient,
		databaseURL: strings.TrimRight(databaseURL, "/"),
		tokens:      tokens,
	}, nil
}

// Fetch returns the stored collection. An empty database yields an empty list.
func (c *Client) Fetch(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe

	err := c.do(ctx, "fetch", http.MethodGet, nil, func(body []byte) error {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &recipes); err != nil {
			return fmt.Errorf("failed to decode recipes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Normalize())
	}

	return out, nil
}

// Store replaces the stored collection.
func (c *Client) Store(ctx context.Context, recipes []models.Recipe) error {
	if recipes == nil {
		recipes = []models.Recipe{}
	}

	payload, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to encode recipes: %w", err)
	}

	return c.do(ctx, "store", http.MethodPut, payload, nil)
}

func (c *Client) do(ctx context.Context, op, method string, payload []byte, decode func([]byte) error) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "recipes."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	metrics := telemetry.GetMetrics()
	opAttr := metric.WithAttributes(attribute.String("op", op))
	metrics.RecipeSyncTotal.Add(ctx, 1, opAttr)

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecipeSyncErrorsTotal.Add(ctx, 1, opAttr)
			log.Warn().Err(err).Str("op", op).Msg("recipe sync failed")
		}
	}()

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}

	u, err := url.Parse(c.databaseURL + documentPath)
	if err != nil {
		return fmt.Errorf("invalid database URL: %w", err)
	}
	q := u.Query()
	q.Set("auth", token.AccessToken)
	u.RawQuery = q.Encode()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recipe %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	log.Debug().Str("op", op).Int("bytes", len(data)).Msg("recipe sync complete")

	if decode == nil {
		return nil
	}

	return decode(data)
}
