// Package session persists the single authenticated session record on the
// local machine so a later process can restore it without signing in again.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfeidau/recipebook/internal/models"
)

// DefaultKey is the storage key of the session entry.
const DefaultKey = "userData"

// ErrSessionNotFound is returned by Load when there is no usable entry.
// A malformed entry is reported the same way.
var ErrSessionNotFound = errors.New("session not found")

// Store holds at most one session record.
type Store interface {
	// Save serializes the record, replacing any existing entry.
	Save(ctx context.Context, s models.Session) error

	// Load returns the stored record or ErrSessionNotFound.
	Load(ctx context.Context) (*models.Session, error)

	// Clear removes the entry. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func encode(s models.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// decode treats anything that is not a JSON object with our fields as absence.
func decode(data []byte) (*models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	if s.Email == "" && s.UserID == "" && s.Token == "" {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}
