package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/mrjrask/desk-display/pkg/models"
)

// errSkip is the internal signal that a step yielded nothing this visit
// and the caller should try the next sibling. It never escapes the
// resolver.
var errSkip = errors.New("skip")

// AvailabilityFunc reports whether a screen's data is currently usable.
// A nil func treats every screen as available.
type AvailabilityFunc func(screen string) bool

// Resolver expands the active document into the next concrete screen,
// consulting conditions and the rule state table. It holds no lock of its
// own; the engine serializes calls.
type Resolver struct {
	doc       *models.Document
	state     *StateTable
	available AvailabilityFunc

	// Playlists on the current resolution path. Re-entering one is
	// reported as skip: a second visit within the same tick cannot yield
	// anything the first did not, and the guard keeps mutually-referencing
	// playlists finite.
	stack map[string]bool
}

// NewResolver builds a resolver over a validated document.
func NewResolver(doc *models.Document, state *StateTable, available AvailabilityFunc) *Resolver {
	return &Resolver{
		doc:       doc,
		state:     state,
		available: available,
		stack:     make(map[string]bool),
	}
}

// Next resolves the next screen as of now. It returns ErrNoEligibleStep
// when every step is currently skipped, and ErrResolutionLimit if the
// skip chain exceeds the document's expanded visit bound, which a
// validated document should make impossible.
func (r *Resolver) Next(now time.Time) (models.ScreenRef, error) {
	budget := r.visitBound() + 1

	ref, err := r.resolvePlaylist(models.SequenceID, now, &budget)
	if errors.Is(err, errSkip) {
		return models.ScreenRef{}, ErrNoEligibleStep
	}

	return ref, err
}

// resolvePlaylist visits the playlist's next unresolved step, resuming at
// its remembered position. Each candidate sibling consumes the cursor
// whether it resolves or skips; when every sibling skips, the whole
// playlist reports skip to its caller.
func (r *Resolver) resolvePlaylist(id string, now time.Time, budget *int) (models.ScreenRef, error) {
	playlist, ok := r.doc.PlaylistByID(id)
	if !ok {
		return models.ScreenRef{}, fmt.Errorf("playlist %q is not defined", id)
	}

	if r.stack[id] {
		return models.ScreenRef{}, errSkip
	}

	r.stack[id] = true
	defer delete(r.stack, id)

	count := len(playlist.Steps)
	if count == 0 {
		return models.ScreenRef{}, errSkip
	}

	base := playlistStepsBase(id)

	for attempt := 0; attempt < count; attempt++ {
		index := r.state.PlaylistCursor(id) % count
		r.state.SetPlaylistCursor(id, (index+1)%count)

		ref, err := r.resolveStep(playlist.Steps[index], stepPath(base, index), now, budget)
		if errors.Is(err, errSkip) {
			continue
		}

		return ref, err
	}

	return models.ScreenRef{}, errSkip
}

func (r *Resolver) resolveStep(step *models.Step, path string, now time.Time, budget *int) (models.ScreenRef, error) {
	if *budget <= 0 {
		return models.ScreenRef{}, fmt.Errorf("%w at %s", ErrResolutionLimit, path)
	}

	*budget--

	if !step.Conditions.HoldsAt(now) {
		return models.ScreenRef{}, errSkip
	}

	switch step.Kind() {
	case models.StepKindScreen:
		if r.available != nil && !r.available(step.Screen) {
			return models.ScreenRef{}, errSkip
		}

		return models.ScreenRef{Screen: step.Screen, Preset: step.Preset}, nil

	case models.StepKindPlaylist:
		target, ok := r.doc.PlaylistByID(step.Playlist)
		if !ok {
			return models.ScreenRef{}, fmt.Errorf("playlist %q is not defined", step.Playlist)
		}

		if !target.Conditions.HoldsAt(now) {
			return models.ScreenRef{}, errSkip
		}

		return r.resolvePlaylist(step.Playlist, now, budget)

	case models.StepKindRule:
		rpath := rulePath(path)

		child, childIndex, fired := r.state.Advance(rpath, step.Rule)
		if !fired {
			return models.ScreenRef{}, errSkip
		}

		return r.resolveStep(child, ruleChildPath(step.Rule, rpath, childIndex), now, budget)

	default:
		return models.ScreenRef{}, fmt.Errorf("malformed step at %s", path)
	}
}

// visitBound is the worst-case number of step visits one resolution can
// make under the re-entry guard: every step is visited once per reference
// path, a playlist-reference step expands to the referenced playlist's own
// bound, and a rule visit descends into at most one child. The resolver
// can only exceed it by a bug, never by document shape.
func (r *Resolver) visitBound() int {
	seen := make(map[string]bool)

	return r.stepsBound(r.doc.Sequence, seen)
}

func (r *Resolver) stepsBound(steps []*models.Step, seen map[string]bool) int {
	total := 0
	for _, step := range steps {
		total += r.stepBound(step, seen)
	}

	return total
}

func (r *Resolver) stepBound(step *models.Step, seen map[string]bool) int {
	switch step.Kind() {
	case models.StepKindPlaylist:
		target, ok := r.doc.PlaylistByID(step.Playlist)
		if !ok || seen[step.Playlist] {
			return 1
		}

		seen[step.Playlist] = true
		defer delete(seen, step.Playlist)

		return 1 + r.stepsBound(target.Steps, seen)

	case models.StepKindRule:
		children, _ := ruleChildren(step.Rule, "")

		deepest := 0

		for _, child := range children {
			if bound := r.stepBound(child, seen); bound > deepest {
				deepest = bound
			}
		}

		return 1 + deepest

	default:
		return 1
	}
}
