package recipes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/state"
	"golang.org/x/oauth2"
)

type databaseServer struct {
	mu       sync.Mutex
	document string
	status   int
	auth     []string
	methods  []string
}

func (d *databaseServer) handler(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.auth = append(d.auth, r.URL.Query().Get("auth"))
	d.methods = append(d.methods, r.Method)

	if r.URL.Path != "/recipes.json" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if d.status != 0 {
		w.WriteHeader(d.status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		_, _ = w.Write([]byte(d.document))
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		d.document = string(body)
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (d *databaseServer) Document() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.document
}

func newTestClient(t *testing.T, document string) (*Client, *databaseServer) {
	t.Helper()

	db := &databaseServer{document: document}
	server := httptest.NewServer(http.HandlerFunc(db.handler))
	t.Cleanup(server.Close)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "id-token", Expiry: time.Now().Add(time.Hour)})

	c, err := NewClient(server.Client(), server.URL+"/", tokens)
	require.NoError(t, err)

	return c, db
}

func TestNewClient(t *testing.T) {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x"})

	_, err := NewClient(nil, "https://db.example.com", tokens)
	require.Error(t, err)

	_, err = NewClient(http.DefaultClient, "", tokens)
	require.Error(t, err)

	_, err = NewClient(http.DefaultClient, "https://db.example.com", nil)
	require.Error(t, err)
}

func TestClient_Fetch(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     []models.Recipe
	}{
		{
			name:     "null document",
			document: "null",
			want:     []models.Recipe{},
		},
		{
			name:     "empty body",
			document: "",
			want:     []models.Recipe{},
		},
		{
			name:     "missing ingredients",
			document: `[{"name":"Toast","description":"Bread, hot","imagePath":"https://img/toast.png"}]`,
			want: []models.Recipe{
				{Name: "Toast", Description: "Bread, hot", ImagePath: "https://img/toast.png", Ingredients: []models.Ingredient{}},
			},
		},
		{
			name:     "with ingredients",
			document: `[{"name":"Soup","description":"","imagePath":"","ingredients":[{"name":"Leek","amount":2}]}]`,
			want: []models.Recipe{
				{Name: "Soup", Ingredients: []models.Ingredient{{Name: "Leek", Amount: 2}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, db := newTestClient(t, tt.document)

			got, err := c.Fetch(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"id-token"}, db.auth)
		})
	}
}

func TestClient_Fetch_errors(t *testing.T) {
	t.Run("unexpected status", func(t *testing.T) {
		c, db := newTestClient(t, "")
		db.status = http.StatusUnauthorized

		_, err := c.Fetch(context.Background())
		require.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("malformed document", func(t *testing.T) {
		c, _ := newTestClient(t, `{"not":"a list"}`)

		_, err := c.Fetch(context.Background())
		require.Error(t, err)
	})

	t.Run("not authenticated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not be sent without a token")
		}))
		defer server.Close()

		c, err := NewClient(server.Client(), server.URL, state.New().TokenSource())
		require.NoError(t, err)

		_, err = c.Fetch(context.Background())
		require.ErrorIs(t, err, state.ErrNotAuthenticated)
	})
}

func TestClient_Store(t *testing.T) {
	c, db := newTestClient(t, "null")

	require.NoError(t, c.Store(context.Background(), nil))
	assert.JSONEq(t, `[]`, db.Document())

	require.NoError(t, c.Store(context.Background(), []models.Recipe{{Name: "Toast", Ingredients: []models.Ingredient{}}}))
	assert.JSONEq(t, `[{"name":"Toast","description":"","imagePath":"","ingredients":[]}]`, db.Document())
	assert.Equal(t, []string{http.MethodPut, http.MethodPut}, db.methods)

	got, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Toast", got[0].Name)
}
