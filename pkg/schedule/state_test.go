package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjrask/desk-display/pkg/models"
)

func TestStateTable_EveryFiresOnMultiples(t *testing.T) {
	table := NewStateTable()
	rule := &models.Rule{Type: models.RuleEvery, Frequency: 3, Item: &models.Step{Screen: "vrnof"}}

	var fired []int

	for visit := 1; visit <= 7; visit++ {
		step, _, ok := table.Advance("sequence[0].rule", rule)
		if ok {
			require.Equal(t, "vrnof", step.Screen)
			fired = append(fired, visit)
		}
	}

	assert.Equal(t, []int{3, 6}, fired)
}

func TestStateTable_EveryPhaseShiftsFirstFire(t *testing.T) {
	table := NewStateTable()
	rule := &models.Rule{Type: models.RuleEvery, Frequency: 3, Phase: 2, Item: &models.Step{Screen: "vrnof"}}

	var fired []int

	for visit := 1; visit <= 7; visit++ {
		if _, _, ok := table.Advance("sequence[0].rule", rule); ok {
			fired = append(fired, visit)
		}
	}

	assert.Equal(t, []int{1, 4, 7}, fired)
}

func TestStateTable_CycleRoundRobin(t *testing.T) {
	table := NewStateTable()
	rule := &models.Rule{Type: models.RuleCycle, Items: []*models.Step{
		{Screen: "a"}, {Screen: "b"}, {Screen: "c"},
	}}

	var seen []string

	for i := 0; i < 7; i++ {
		step, _, ok := table.Advance("sequence[1].rule", rule)
		require.True(t, ok)
		seen = append(seen, step.Screen)
	}

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, seen)
}

func TestStateTable_IndependentPaths(t *testing.T) {
	table := NewStateTable()
	rule := &models.Rule{Type: models.RuleCycle, Items: []*models.Step{
		{Screen: "a"}, {Screen: "b"},
	}}

	first, _, _ := table.Advance("sequence[0].rule", rule)
	second, _, _ := table.Advance("playlists.sports.steps[0].rule", rule)

	// Same rule shape at two paths, two independent cursors.
	assert.Equal(t, "a", first.Screen)
	assert.Equal(t, "a", second.Screen)
}

func TestStateTable_SnapshotRestoreRoundTrip(t *testing.T) {
	table := NewStateTable()
	rule := &models.Rule{Type: models.RuleCycle, Items: []*models.Step{
		{Screen: "a"}, {Screen: "b"}, {Screen: "c"},
	}}

	table.Advance("sequence[0].rule", rule)
	table.SetPlaylistCursor("sports", 2)

	restored := NewStateTable()
	restored.Restore(table.Snapshot())

	step, _, _ := restored.Advance("sequence[0].rule", rule)
	assert.Equal(t, "b", step.Screen)
	assert.Equal(t, 2, restored.PlaylistCursor("sports"))
}

func TestStateTable_ReconcilePreservesUnchangedPaths(t *testing.T) {
	doc := validDocument()
	table := NewStateTable()

	every := doc.Sequence[2].Rule
	table.Advance("sequence[2].rule", every)
	table.Advance("sequence[2].rule", every)

	table.Reconcile(doc)

	// Third visit fires with frequency 3.
	_, _, fired := table.Advance("sequence[2].rule", every)
	assert.True(t, fired)
}

func TestStateTable_ReconcileDropsVanishedPaths(t *testing.T) {
	doc := validDocument()
	table := NewStateTable()
	table.Advance("sequence[9].rule", &models.Rule{Type: models.RuleEvery, Frequency: 2, Item: &models.Step{Screen: "x"}})
	table.SetPlaylistCursor("retired", 1)

	table.Reconcile(doc)

	snap := table.Snapshot()
	assert.NotContains(t, snap.Rules, "sequence[9].rule")
	assert.NotContains(t, snap.PlaylistCursors, "retired")
}

func TestStateTable_ReconcileReanchorsEditedEvery(t *testing.T) {
	doc := validDocument()
	table := NewStateTable()

	table.Advance("sequence[2].rule", doc.Sequence[2].Rule)
	table.Advance("sequence[2].rule", doc.Sequence[2].Rule)

	doc.Sequence[2].Rule.Frequency = 5
	table.Reconcile(doc)

	var fired []int

	for visit := 1; visit <= 10; visit++ {
		if _, _, ok := table.Advance("sequence[2].rule", doc.Sequence[2].Rule); ok {
			fired = append(fired, visit)
		}
	}

	// The counter restarts from zero under the new frequency.
	assert.Equal(t, []int{5, 10}, fired)
}

func TestStateTable_ReconcileClampsShrunkRotation(t *testing.T) {
	doc := validDocument()
	table := NewStateTable()

	cycle := doc.Playlists["sports"].Steps[1].Rule
	path := "playlists.sports.steps[1].rule"

	table.Advance(path, cycle)
	table.Advance(path, cycle) // cursor back at 0 with two items

	cycle.Items = cycle.Items[:1]
	table.Reconcile(doc)

	step, _, ok := table.Advance(path, cycle)
	require.True(t, ok)
	assert.Equal(t, "mlb_standings", step.Screen)
}

func TestStateTable_ReconcileClampsPlaylistCursor(t *testing.T) {
	doc := validDocument()
	table := NewStateTable()
	table.SetPlaylistCursor("sports", 5)

	table.Reconcile(doc)

	assert.Equal(t, 1, table.PlaylistCursor("sports"))
}
