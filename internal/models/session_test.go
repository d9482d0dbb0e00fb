package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := NewSession("a@b.com", "uid-1", "tok", now, time.Hour)

	require.Equal(t, "a@b.com", s.Email)
	require.Equal(t, "uid-1", s.UserID)
	require.Equal(t, now.Add(time.Hour), s.ExpiresAt)
	require.True(t, s.Valid())
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"future", now.Add(time.Second), false},
		{"exactly now", now, true},
		{"past", now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{Token: "tok", ExpiresAt: tt.expiresAt}
			require.Equal(t, tt.expected, s.IsExpired(now))
		})
	}
}

func TestSession_Remaining(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := Session{ExpiresAt: now.Add(90 * time.Second)}
	require.Equal(t, 90*time.Second, s.Remaining(now))

	s = Session{ExpiresAt: now.Add(-time.Hour)}
	require.Equal(t, time.Duration(0), s.Remaining(now))
}

func TestSession_JSONLayout(t *testing.T) {
	s := Session{
		Email:     "a@b.com",
		UserID:    "uid-1",
		Token:     "tok",
		ExpiresAt: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"email": "a@b.com",
		"id": "uid-1",
		"_token": "tok",
		"_tokenExpirationDate": "2024-05-01T13:00:00Z"
	}`, string(data))

	// browser-style timestamps with milliseconds decode too
	var decoded Session
	err = json.Unmarshal([]byte(`{"email":"a@b.com","id":"uid-1","_token":"tok","_tokenExpirationDate":"2024-05-01T13:00:00.000Z"}`), &decoded)
	require.NoError(t, err)
	require.True(t, s.ExpiresAt.Equal(decoded.ExpiresAt))
}

func TestRecipe_Normalize(t *testing.T) {
	r := Recipe{Name: "Soup"}.Normalize()
	require.NotNil(t, r.Ingredients)
	require.Empty(t, r.Ingredients)

	r = Recipe{Name: "Bread", Ingredients: []Ingredient{{Name: "Flour", Amount: 2}}}.Normalize()
	require.Len(t, r.Ingredients, 1)
}
