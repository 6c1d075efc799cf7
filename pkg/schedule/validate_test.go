package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjrask/desk-display/pkg/models"
)

func validDocument() *models.Document {
	return &models.Document{
		Version: models.SchemaVersion,
		Playlists: map[string]*models.Playlist{
			"sports": {
				Label: "Sports",
				Steps: []*models.Step{
					{Screen: "nba_scoreboard"},
					{Rule: &models.Rule{Type: models.RuleCycle, Items: []*models.Step{
						{Screen: "mlb_standings"},
						{Screen: "nhl_standings"},
					}}},
				},
			},
		},
		Sequence: []*models.Step{
			{Screen: "date"},
			{Playlist: "sports"},
			{Rule: &models.Rule{Type: models.RuleEvery, Frequency: 3, Item: &models.Step{Screen: "vrnof"}}},
		},
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	assert.Empty(t, Validate(validDocument()))
}

func TestValidate_WrongVersion(t *testing.T) {
	doc := validDocument()
	doc.Version = 3

	errs := Validate(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, KindSchema, errs[0].Kind)
	assert.Equal(t, "version", errs[0].Path)
}

func TestValidate_DanglingPlaylistReference(t *testing.T) {
	doc := validDocument()
	doc.Sequence = append(doc.Sequence, &models.Step{Playlist: "missing"})

	errs := Validate(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, KindReference, errs[0].Kind)
	assert.Contains(t, errs[0].Message, "missing")
}

func TestValidate_RuleShapes(t *testing.T) {
	doc := validDocument()
	doc.Sequence = []*models.Step{
		{Screen: "date"},
		{Rule: &models.Rule{Type: models.RuleEvery, Frequency: 0}},
		{Rule: &models.Rule{Type: models.RuleCycle}},
		{Rule: &models.Rule{Type: models.RuleVariants}},
		{Rule: &models.Rule{Type: "weighted"}},
	}

	errs := Validate(doc)

	kinds := map[ErrorKind]int{}
	for _, err := range errs {
		kinds[err.Kind]++
	}

	// every: bad frequency + missing item; cycle: empty items;
	// variants: empty options; weighted: unknown type.
	assert.Equal(t, 5, kinds[KindRuleShape])
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	doc := &models.Document{
		Version: 1,
		Playlists: map[string]*models.Playlist{
			"broken": {Steps: []*models.Step{{Playlist: "nowhere"}}},
		},
		Sequence: []*models.Step{
			{Rule: &models.Rule{Type: models.RuleEvery, Frequency: 0, Item: &models.Step{Screen: "x"}}},
		},
	}

	errs := Validate(doc)

	// Wrong version, dangling reference, bad frequency, and the broken
	// playlist is unproductive. All reported together.
	assert.GreaterOrEqual(t, len(errs), 4)
}

func TestValidate_UnproductiveSelfReference(t *testing.T) {
	doc := &models.Document{
		Version: models.SchemaVersion,
		Playlists: map[string]*models.Playlist{
			"loop": {Steps: []*models.Step{{Playlist: "loop"}}},
		},
		Sequence: []*models.Step{{Playlist: "loop"}},
	}

	errs := Validate(doc)

	found := false

	for _, err := range errs {
		if err.Kind == KindUnproductiveCycle {
			found = true
		}
	}

	assert.True(t, found, "expected an unproductive cycle error, got %v", errs)
}

func TestValidate_MutualReferenceBottomingOut(t *testing.T) {
	// a -> b -> screen is productive even though a never holds a screen
	// directly.
	doc := &models.Document{
		Version: models.SchemaVersion,
		Playlists: map[string]*models.Playlist{
			"a": {Steps: []*models.Step{{Playlist: "b"}}},
			"b": {Steps: []*models.Step{{Screen: "date"}, {Playlist: "a"}}},
		},
		Sequence: []*models.Step{{Playlist: "a"}},
	}

	assert.Empty(t, Validate(doc))
}

func TestValidate_ConditionTokens(t *testing.T) {
	doc := validDocument()
	doc.Sequence[0].Conditions = &models.Condition{
		DaysOfWeek: []models.Weekday{"funday"},
	}

	errs := Validate(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, KindSchema, errs[0].Kind)
	assert.Contains(t, errs[0].Path, "days_of_week")
}

func TestValidate_EmptySequence(t *testing.T) {
	doc := &models.Document{Version: models.SchemaVersion}

	errs := Validate(doc)
	require.NotEmpty(t, errs)
	assert.Equal(t, "sequence", errs[0].Path)
}

func TestValidateRaw_ShapeErrors(t *testing.T) {
	_, errs := ValidateRaw([]byte(`{"version":"two","sequence":[]}`))
	require.NotEmpty(t, errs)

	for _, err := range errs {
		assert.Equal(t, KindSchema, err.Kind)
	}
}

func TestValidateRaw_Valid(t *testing.T) {
	doc, errs := ValidateRaw([]byte(`{
		"version": 2,
		"playlists": {"main": {"steps": [{"screen": "date"}]}},
		"sequence": [{"playlist": "main"}]
	}`))

	require.Empty(t, errs)
	require.NotNil(t, doc)
	assert.Equal(t, []string{"date"}, Screens(doc))
}

func TestScreens_Deduplicates(t *testing.T) {
	doc := validDocument()

	assert.Equal(t, []string{
		"date", "mlb_standings", "nba_scoreboard", "nhl_standings", "vrnof",
	}, Screens(doc))
}
