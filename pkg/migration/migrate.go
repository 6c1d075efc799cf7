// Package migration converts legacy flat schedule configurations into the
// v2 playlist document schema.
package migration

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrjrask/desk-display/pkg/models"
	"github.com/mrjrask/desk-display/pkg/schedule"
)

// ErrLegacyShape marks a legacy payload the migrator cannot interpret.
var ErrLegacyShape = errors.New("unsupported legacy configuration")

// Result carries the migrated document and whether a migration actually
// happened (false for documents already on the current schema).
type Result struct {
	Document *models.Document
	Migrated bool
}

// Migrate returns a schema v2 document, converting legacy payloads when
// needed. The output is always validated before being returned; a payload
// that cannot be migrated into a valid document fails loudly rather than
// producing a partial result.
func Migrate(data []byte, source string) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: configuration must be a JSON object: %v", ErrLegacyShape, err)
	}

	version := 0
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, fmt.Errorf("%w: version must be an integer", ErrLegacyShape)
		}
	}

	_, hasPlaylists := raw["playlists"]
	_, hasSequence := raw["sequence"]

	// Already v2, or a partial v2 document missing only the version stamp.
	if hasPlaylists && hasSequence {
		return adoptCurrent(data, version)
	}

	if !hasSequence {
		return nil, fmt.Errorf("%w: legacy configurations must provide a sequence array", ErrLegacyShape)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw["sequence"], &entries); err != nil {
		return nil, fmt.Errorf("%w: sequence must be an array", ErrLegacyShape)
	}

	steps := make([]*models.Step, 0, len(entries))

	for i, entry := range entries {
		step, err := legacyEntryToStep(entry)
		if err != nil {
			return nil, fmt.Errorf("sequence entry %d: %w", i, err)
		}

		steps = append(steps, step)
	}

	if source == "" {
		source = "inline"
	}

	doc := &models.Document{
		Version: models.SchemaVersion,
		Catalog: map[string]json.RawMessage{},
		Metadata: map[string]any{
			"migrated_from": version,
			"source":        source,
		},
		Playlists: map[string]*models.Playlist{
			"main": {
				Label: "Migrated sequence",
				Steps: steps,
			},
		},
		Sequence: []*models.Step{{Playlist: "main"}},
	}

	if errs := schedule.Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("migrated document failed validation: %w", errs)
	}

	return &Result{Document: doc, Migrated: true}, nil
}

// adoptCurrent handles documents already shaped like v2: genuine v2 input
// passes through untouched, while a playlists+sequence document missing
// the version stamp gets stamped and annotated.
func adoptCurrent(data []byte, version int) (*Result, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLegacyShape, err)
	}

	migrated := version != models.SchemaVersion
	if migrated {
		doc.Version = models.SchemaVersion

		if doc.Metadata == nil {
			doc.Metadata = map[string]any{}
		}

		if _, ok := doc.Metadata["migrated_from"]; !ok {
			doc.Metadata["migrated_from"] = version
		}
	}

	if errs := schedule.Validate(&doc); len(errs) > 0 {
		return nil, fmt.Errorf("document failed validation: %w", errs)
	}

	return &Result{Document: &doc, Migrated: migrated}, nil
}

// legacyEntryToStep converts one legacy sequence entry. Legacy entries are
// a screen identifier string, {"screen": id}, {"every": n, "screen": ...},
// {"cycle": [...]}, or {"variants": [ids...]}.
func legacyEntryToStep(entry json.RawMessage) (*models.Step, error) {
	var screen string
	if err := json.Unmarshal(entry, &screen); err == nil {
		if screen == "" {
			return nil, fmt.Errorf("%w: empty screen identifier", ErrLegacyShape)
		}

		return &models.Step{Screen: screen}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(entry, &obj); err != nil {
		return nil, fmt.Errorf("%w: entry %s", ErrLegacyShape, string(entry))
	}

	if raw, ok := obj["screen"]; ok && len(obj) == 1 {
		return legacyEntryToStep(raw)
	}

	if raw, ok := obj["variants"]; ok {
		return legacyVariants(raw)
	}

	if raw, ok := obj["cycle"]; ok {
		return legacyCycle(raw)
	}

	if raw, ok := obj["every"]; ok {
		return legacyEvery(raw, obj)
	}

	return nil, fmt.Errorf("%w: entry %s", ErrLegacyShape, string(entry))
}

func legacyVariants(raw json.RawMessage) (*models.Step, error) {
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil || len(ids) == 0 {
		return nil, fmt.Errorf("%w: variants entries must be a non-empty list of screen identifiers", ErrLegacyShape)
	}

	options := make([]*models.Step, len(ids))
	for i, id := range ids {
		options[i] = &models.Step{Screen: id}
	}

	return &models.Step{Rule: &models.Rule{Type: models.RuleVariants, Options: options}}, nil
}

func legacyCycle(raw json.RawMessage) (*models.Step, error) {
	var children []json.RawMessage
	if err := json.Unmarshal(raw, &children); err != nil || len(children) == 0 {
		return nil, fmt.Errorf("%w: cycle entries must be non-empty lists", ErrLegacyShape)
	}

	items := make([]*models.Step, 0, len(children))

	for _, child := range children {
		item, err := legacyEntryToStep(child)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return &models.Step{Rule: &models.Rule{Type: models.RuleCycle, Items: items}}, nil
}

func legacyEvery(raw json.RawMessage, obj map[string]json.RawMessage) (*models.Step, error) {
	var frequency int
	if err := json.Unmarshal(raw, &frequency); err != nil {
		return nil, fmt.Errorf("%w: every rule requires an integer frequency", ErrLegacyShape)
	}

	if frequency <= 0 {
		return nil, fmt.Errorf("%w: every frequency must be greater than zero", ErrLegacyShape)
	}

	child, ok := obj["screen"]
	if !ok {
		child, ok = obj["item"]
	}

	if !ok {
		return nil, fmt.Errorf("%w: every rule requires a child entry", ErrLegacyShape)
	}

	item, err := legacyEntryToStep(child)
	if err != nil {
		return nil, err
	}

	return &models.Step{Rule: &models.Rule{Type: models.RuleEvery, Frequency: frequency, Item: item}}, nil
}
