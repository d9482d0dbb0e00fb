package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, Setup(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, Setup(true).GetLevel())
}

func TestHTTPRequests_logsWithoutQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	client := &http.Client{Transport: NewHTTPRequests(logger, nil)}

	resp, err := client.Get(server.URL + "/recipes.json?auth=secret-token")
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotContains(t, buf.String(), "secret-token")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/recipes.json", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}

func TestHTTPRequests_transportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	client := &http.Client{Transport: NewHTTPRequests(logger, nil)}

	_, err := client.Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"error"`)
}
