package session

import (
	"context"
	"sync"

	"github.com/wolfeidau/recipebook/internal/models"
)

// MemoryStore keeps the serialized entry in memory.
// Data is lost when the process exits.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored entry.
func (m *MemoryStore) Save(ctx context.Context, s models.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = data
	return nil
}

// Load returns the stored entry.
func (m *MemoryStore) Load(ctx context.Context) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, ErrSessionNotFound
	}

	s, err := decode(m.data)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Clear drops the stored entry.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}

// SetRaw stores bytes as-is, bypassing encoding. Used to simulate corrupted storage.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append([]byte(nil), data...)
}
