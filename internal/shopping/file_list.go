// Package shopping keeps the shopping list on the local machine. Ingredients
// are added from recipes and the list survives between commands.
package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/models"
)

const fileName = "shoppingList.json"

// FileList stores the shopping list as a JSON array.
type FileList struct {
	path string
}

// NewFileList creates a list stored in baseDir, ~/.recipebook when empty.
func NewFileList(baseDir string) (*FileList, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".recipebook")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create shopping list directory: %w", err)
	}

	return &FileList{path: filepath.Join(baseDir, fileName)}, nil
}

// Path returns the location of the list file.
func (f *FileList) Path() string {
	return f.path
}

// Load returns the stored list. A missing file is an empty list.
func (f *FileList) Load(ctx context.Context) ([]models.Ingredient, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Ingredient{}, nil
		}
		return nil, fmt.Errorf("failed to read shopping list: %w", err)
	}

	var list []models.Ingredient
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode shopping list %s: %w", f.path, err)
	}
	if list == nil {
		list = []models.Ingredient{}
	}

	return list, nil
}

// Save replaces the stored list atomically.
func (f *FileList) Save(ctx context.Context, list []models.Ingredient) error {
	if list == nil {
		list = []models.Ingredient{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode shopping list: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write shopping list: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save shopping list: %w", err)
	}

	log.Debug().Int("items", len(list)).Msg("shopping list saved")

	return nil
}
