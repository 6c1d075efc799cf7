package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mrjrask/desk-display/pkg/models"
)

// Engine owns the live document and the rule-state table behind a single
// lock, so the display loop and the admin interface never observe a
// half-applied document mid-resolution. Resolution is pure in-memory work;
// the critical section stays far under the display tick budget.
type Engine struct {
	mu        sync.Mutex
	doc       *models.Document
	state     *StateTable
	available AvailabilityFunc
	clock     func() time.Time
	logger    *slog.Logger
}

// NewEngine builds an engine over an already-validated document.
func NewEngine(doc *models.Document, logger *slog.Logger) *Engine {
	return &Engine{
		doc:    doc,
		state:  NewStateTable(),
		clock:  time.Now,
		logger: logger,
	}
}

// SetAvailability installs the screen availability callback.
func (e *Engine) SetAvailability(fn AvailabilityFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.available = fn
}

// SetClock overrides the time source. Tests use this to pin the weekday
// and time-of-day seen by conditions.
func (e *Engine) SetClock(clock func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock = clock
}

// NextScreen resolves the next screen to show. Called once per display
// tick; errors are fatal to that tick only.
func (e *Engine) NextScreen() (models.ScreenRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	resolver := NewResolver(e.doc, e.state, e.available)

	ref, err := resolver.Next(e.clock())
	if err != nil {
		return models.ScreenRef{}, err
	}

	e.logger.Debug("resolved next screen", "screen", ref.Screen, "preset", ref.Preset)

	return ref, nil
}

// Swap atomically replaces the live document and reconciles rule state:
// unchanged paths keep their progress, vanished paths are dropped, new
// paths start fresh.
func (e *Engine) Swap(doc *models.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doc = doc
	e.state.Reconcile(doc)
	e.logger.Info("document swapped",
		"playlists", len(doc.Playlists), "total_steps", doc.TotalSteps())
}

// Document returns the currently active document.
func (e *Engine) Document() *models.Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc
}

// SnapshotState exports the rule-state table for persistence.
func (e *Engine) SnapshotState() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.Snapshot()
}

// RestoreState reloads persisted rule state, then reconciles it against
// the live document so stale paths from older configs are dropped.
func (e *Engine) RestoreState(snap Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Restore(snap)
	e.state.Reconcile(e.doc)
}
