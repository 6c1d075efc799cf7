package schedule

import (
	"fmt"

	"github.com/mrjrask/desk-display/pkg/models"
)

// RuleState is the persisted numeric state of one rule instance: a visit
// counter for every rules, a rotation cursor for cycle and variants.
// Fingerprint records the rule parameters the state was accumulated under
// so reconciliation can tell a structural edit from an unrelated reload.
type RuleState struct {
	Visits      int    `json:"visits,omitempty"`
	Cursor      int    `json:"cursor,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Snapshot is the serializable form of a StateTable.
type Snapshot struct {
	Rules           map[string]RuleState `json:"rules,omitempty"`
	PlaylistCursors map[string]int       `json:"playlist_cursors,omitempty"`
}

// StateTable maps structural rule paths to their state and playlist IDs to
// their step cursors. It is not goroutine safe; the engine serializes
// access under its own lock.
type StateTable struct {
	rules   map[string]*RuleState
	cursors map[string]int
}

// NewStateTable returns an empty state table.
func NewStateTable() *StateTable {
	return &StateTable{
		rules:   make(map[string]*RuleState),
		cursors: make(map[string]int),
	}
}

// Advance runs one visit of the rule at path. For every rules it bumps the
// visit counter and reports whether the item fires this visit; childIndex
// is -1. For cycle and variants it returns the next step in round-robin
// order together with its index, and always fires.
func (t *StateTable) Advance(path string, rule *models.Rule) (*models.Step, int, bool) {
	state := t.rules[path]
	if state == nil {
		state = &RuleState{Fingerprint: ruleFingerprint(rule)}
		t.rules[path] = state
	}

	switch rule.Type {
	case models.RuleEvery:
		state.Visits++
		if (state.Visits+rule.Phase)%rule.Frequency == 0 {
			return rule.Item, -1, true
		}

		return nil, -1, false
	case models.RuleCycle, models.RuleVariants:
		rotation, _ := rule.Rotation()
		if len(rotation) == 0 {
			return nil, -1, false
		}

		// Clamp handles rotations shrunk by an edit mid-flight.
		index := state.Cursor % len(rotation)
		state.Cursor = (index + 1) % len(rotation)

		return rotation[index], index, true
	default:
		return nil, -1, false
	}
}

// PlaylistCursor returns the playlist's current step position.
func (t *StateTable) PlaylistCursor(id string) int {
	return t.cursors[id]
}

// SetPlaylistCursor records the playlist's next step position.
func (t *StateTable) SetPlaylistCursor(id string, position int) {
	t.cursors[id] = position
}

// Snapshot copies the table into its serializable form.
func (t *StateTable) Snapshot() Snapshot {
	snap := Snapshot{
		Rules:           make(map[string]RuleState, len(t.rules)),
		PlaylistCursors: make(map[string]int, len(t.cursors)),
	}

	for path, state := range t.rules {
		snap.Rules[path] = *state
	}

	for id, cursor := range t.cursors {
		snap.PlaylistCursors[id] = cursor
	}

	return snap
}

// Restore replaces the table contents from a snapshot.
func (t *StateTable) Restore(snap Snapshot) {
	t.rules = make(map[string]*RuleState, len(snap.Rules))
	t.cursors = make(map[string]int, len(snap.PlaylistCursors))

	for path, state := range snap.Rules {
		copied := state
		t.rules[path] = &copied
	}

	for id, cursor := range snap.PlaylistCursors {
		t.cursors[id] = cursor
	}
}

// Reconcile adapts the table to a replacement document: state for rule
// paths that still exist is preserved, state for vanished paths is
// dropped, and new paths start fresh on first visit. An every rule whose
// frequency or phase changed re-anchors its visit counter to zero; a
// shrunk rotation clamps its cursor into the new range. Playlist cursors
// survive for playlists that still exist, clamped to the new length.
func (t *StateTable) Reconcile(doc *models.Document) {
	current := make(map[string]*models.Rule)
	walkRules(doc, func(path string, rule *models.Rule) {
		current[path] = rule
	})

	for path, state := range t.rules {
		rule, ok := current[path]
		if !ok {
			delete(t.rules, path)

			continue
		}

		fingerprint := ruleFingerprint(rule)
		if state.Fingerprint == fingerprint {
			continue
		}

		switch rule.Type {
		case models.RuleEvery:
			state.Visits = 0
		case models.RuleCycle, models.RuleVariants:
			if rotation, _ := rule.Rotation(); len(rotation) > 0 {
				state.Cursor %= len(rotation)
			}
		}

		state.Fingerprint = fingerprint
	}

	for id, cursor := range t.cursors {
		playlist, ok := doc.PlaylistByID(id)
		if !ok || len(playlist.Steps) == 0 {
			delete(t.cursors, id)

			continue
		}

		t.cursors[id] = cursor % len(playlist.Steps)
	}
}

// ruleFingerprint captures the parameters that make accumulated state
// meaningful. A changed fingerprint means the rule was structurally
// edited, not merely reloaded.
func ruleFingerprint(rule *models.Rule) string {
	switch rule.Type {
	case models.RuleEvery:
		return fmt.Sprintf("every/%d/%d", rule.Frequency, rule.Phase)
	case models.RuleCycle:
		return fmt.Sprintf("cycle/%d", len(rule.Items))
	case models.RuleVariants:
		return fmt.Sprintf("variants/%d", len(rule.Options))
	default:
		return string(rule.Type)
	}
}
