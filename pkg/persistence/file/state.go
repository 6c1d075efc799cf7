// Package file provides file-based persistence for scheduler runtime
// state.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrjrask/desk-display/pkg/schedule"
)

// StateRepository stores the rule-state snapshot as a single JSON file,
// replaced atomically on every save.
type StateRepository struct {
	path string
}

// NewStateRepository creates a repository backed by the given file path.
func NewStateRepository(path string) *StateRepository {
	return &StateRepository{path: path}
}

// Load reads the saved snapshot. A missing file yields an empty snapshot.
func (r *StateRepository) Load(_ context.Context) (schedule.Snapshot, error) {
	var snap schedule.Snapshot

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}

		return snap, fmt.Errorf("failed to read scheduler state: %w", err)
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return schedule.Snapshot{}, fmt.Errorf("failed to decode scheduler state: %w", err)
	}

	return snap, nil
}

// Save writes the snapshot via a temp file and rename so a crash mid-write
// never corrupts the previous state.
func (r *StateRepository) Save(_ context.Context, snap schedule.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scheduler state: %w", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to stage scheduler state: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to replace scheduler state: %w", err)
	}

	return nil
}
