// Package persistence defines storage contracts for scheduler runtime
// state that must survive process restarts.
package persistence

import (
	"context"

	"github.com/mrjrask/desk-display/pkg/schedule"
)

// StateRepository persists the rule-state table between runs of the
// display loop, so rotation cursors and visit counters resume where they
// left off after a restart.
type StateRepository interface {
	// Load retrieves the last saved state. A missing record returns an
	// empty snapshot, not an error.
	Load(ctx context.Context) (schedule.Snapshot, error)

	// Save persists the state atomically.
	Save(ctx context.Context, snap schedule.Snapshot) error
}
