package migration

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjrask/desk-display/pkg/models"
	"github.com/mrjrask/desk-display/pkg/schedule"
)

func TestMigrate_FlatScreenList(t *testing.T) {
	result, err := Migrate([]byte(`{"sequence": ["date", "weather", "nba_scoreboard"]}`), "schedule.json")
	require.NoError(t, err)
	require.True(t, result.Migrated)

	doc := result.Document
	assert.Equal(t, models.SchemaVersion, doc.Version)
	require.Contains(t, doc.Playlists, "main")
	assert.Len(t, doc.Playlists["main"].Steps, 3)
	require.Len(t, doc.Sequence, 1)
	assert.Equal(t, "main", doc.Sequence[0].Playlist)
	assert.Equal(t, 0, doc.Metadata["migrated_from"])
	assert.Equal(t, "schedule.json", doc.Metadata["source"])
}

func TestMigrate_PreservesRotationOrder(t *testing.T) {
	result, err := Migrate([]byte(`{"sequence": ["date", "weather", "date", "weather"]}`), "")
	require.NoError(t, err)

	engine := schedule.NewEngine(result.Document, slog.New(slog.DiscardHandler))

	var screens []string

	for i := 0; i < 4; i++ {
		ref, err := engine.NextScreen()
		require.NoError(t, err)
		screens = append(screens, ref.Screen)
	}

	assert.Equal(t, []string{"date", "weather", "date", "weather"}, screens)
}

func TestMigrate_EveryEntry(t *testing.T) {
	result, err := Migrate([]byte(`{"sequence": ["date", {"every": 3, "screen": "vrnof"}]}`), "")
	require.NoError(t, err)

	steps := result.Document.Playlists["main"].Steps
	require.Len(t, steps, 2)

	rule := steps[1].Rule
	require.NotNil(t, rule)
	assert.Equal(t, models.RuleEvery, rule.Type)
	assert.Equal(t, 3, rule.Frequency)
	assert.Equal(t, "vrnof", rule.Item.Screen)
}

func TestMigrate_NestedCycle(t *testing.T) {
	payload := `{"sequence": [
		{"cycle": ["mlb_standings", {"every": 2, "screen": "nhl_standings"}]}
	]}`

	result, err := Migrate([]byte(payload), "")
	require.NoError(t, err)

	rule := result.Document.Playlists["main"].Steps[0].Rule
	require.NotNil(t, rule)
	assert.Equal(t, models.RuleCycle, rule.Type)
	require.Len(t, rule.Items, 2)
	assert.Equal(t, "mlb_standings", rule.Items[0].Screen)
	assert.Equal(t, models.RuleEvery, rule.Items[1].Rule.Type)
}

func TestMigrate_VariantsEntry(t *testing.T) {
	result, err := Migrate([]byte(`{"sequence": [{"variants": ["radar", "forecast"]}]}`), "")
	require.NoError(t, err)

	rule := result.Document.Playlists["main"].Steps[0].Rule
	require.NotNil(t, rule)
	assert.Equal(t, models.RuleVariants, rule.Type)
	require.Len(t, rule.Options, 2)
	assert.Equal(t, "radar", rule.Options[0].Screen)
}

func TestMigrate_WrappedScreenObject(t *testing.T) {
	result, err := Migrate([]byte(`{"sequence": [{"screen": "date"}]}`), "")
	require.NoError(t, err)
	assert.Equal(t, "date", result.Document.Playlists["main"].Steps[0].Screen)
}

func TestMigrate_CurrentSchemaPassesThrough(t *testing.T) {
	payload := []byte(`{
		"version": 2,
		"playlists": {"main": {"steps": [{"screen": "date"}]}},
		"sequence": [{"playlist": "main"}]
	}`)

	result, err := Migrate(payload, "")
	require.NoError(t, err)
	assert.False(t, result.Migrated)
	assert.NotContains(t, result.Document.Metadata, "migrated_from")
}

func TestMigrate_StampsUnversionedV2Shape(t *testing.T) {
	payload := []byte(`{
		"playlists": {"main": {"steps": [{"screen": "date"}]}},
		"sequence": [{"playlist": "main"}]
	}`)

	result, err := Migrate(payload, "")
	require.NoError(t, err)
	assert.True(t, result.Migrated)
	assert.Equal(t, models.SchemaVersion, result.Document.Version)
	assert.Equal(t, 0, result.Document.Metadata["migrated_from"])
}

func TestMigrate_RejectsUnsupportedShapes(t *testing.T) {
	cases := map[string]string{
		"not an object":    `["date"]`,
		"missing sequence": `{"screens": ["date"]}`,
		"empty screen":     `{"sequence": [""]}`,
		"unknown entry":    `{"sequence": [{"weighted": ["date"]}]}`,
		"zero frequency":   `{"sequence": [{"every": 0, "screen": "date"}]}`,
		"empty cycle":      `{"sequence": [{"cycle": []}]}`,
		"empty variants":   `{"sequence": [{"variants": []}]}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Migrate([]byte(payload), "")
			assert.ErrorIs(t, err, ErrLegacyShape)
		})
	}
}

// legacyEntryCase is a typed recipe for one generated legacy sequence
// entry; the property renders it into the JSON shape the migrator sees.
type legacyEntryCase struct {
	Kind      int
	Screen    string
	Frequency int
	IDs       []string
}

func (c legacyEntryCase) payload() any {
	switch c.Kind {
	case 0:
		return c.Screen
	case 1:
		return map[string]any{"screen": c.Screen}
	case 2:
		return map[string]any{"every": c.Frequency, "screen": c.Screen}
	case 3:
		return map[string]any{"cycle": c.IDs}
	default:
		return map[string]any{"variants": c.IDs}
	}
}

func TestMigrate_OutputAlwaysValid(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	screenID := gen.OneConstOf(
		"date", "weather", "nba_scoreboard", "mlb_standings", "nhl_standings", "vrnof",
	)

	entry := gopter.CombineGens(
		gen.IntRange(0, 4),
		screenID,
		gen.IntRange(1, 9),
		gen.SliceOfN(3, screenID),
	).Map(func(vals []interface{}) legacyEntryCase {
		return legacyEntryCase{
			Kind:      vals[0].(int),
			Screen:    vals[1].(string),
			Frequency: vals[2].(int),
			IDs:       vals[3].([]string),
		}
	})

	properties := gopter.NewProperties(parameters)

	properties.Property("migrated legacy sequences validate", prop.ForAll(
		func(entries []legacyEntryCase) bool {
			sequence := make([]any, len(entries))
			for i, entry := range entries {
				sequence[i] = entry.payload()
			}

			payload, err := json.Marshal(map[string]any{"sequence": sequence})
			if err != nil {
				return false
			}

			result, err := Migrate(payload, "property")
			if err != nil {
				return false
			}

			return len(schedule.Validate(result.Document)) == 0
		},
		gen.SliceOfN(5, entry),
	))

	properties.TestingRun(t)
}
