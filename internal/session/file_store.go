package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/models"
)

// FileStore keeps the session entry as a JSON file on the local filesystem.
type FileStore struct {
	baseDir string
	key     string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file backed store.
// If baseDir is empty, uses ~/.recipebook/
// If key is empty, uses DefaultKey.
func NewFileStore(baseDir, key string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".recipebook")
	}

	if key == "" {
		key = DefaultKey
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Str("key", key).Msg("session store initialized")

	return &FileStore{baseDir: baseDir, key: key}, nil
}

// Path returns the location of the session file.
func (f *FileStore) Path() string {
	return filepath.Join(f.baseDir, f.key+".json")
}

// Save writes the session file atomically.
func (f *FileStore) Save(ctx context.Context, s models.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	path := f.Path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session: %w", err)
	}

	log.Debug().Str("email", s.Email).Time("expiresAt", s.ExpiresAt).Msg("session saved")

	return nil
}

// Load reads the session file.
func (f *FileStore) Load(ctx context.Context) (*models.Session, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	s, err := decode(data)
	if err != nil {
		log.Debug().Err(err).Str("path", f.Path()).Msg("ignoring unreadable session entry")
		return nil, ErrSessionNotFound
	}

	return s, nil
}

// Clear removes the session file.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	log.Debug().Str("path", f.Path()).Msg("session cleared")

	return nil
}
