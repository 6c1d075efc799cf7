// Package models defines the core domain models for the desk-display
// playlist scheduler: the versioned configuration document, playlists,
// steps, rotation rules, and time conditions.
package models

import "encoding/json"

// SchemaVersion is the only document version the current code understands.
// Anything else is rejected by the validator, never guessed at.
const SchemaVersion = 2

// SequenceID is the implicit playlist identifier of the top-level sequence.
const SequenceID = "sequence"

// Document is the root configuration object. It is decoded once, validated,
// and treated as immutable afterwards; hot reloads swap the whole pointer.
type Document struct {
	Version   int                        `json:"version"`
	Catalog   map[string]json.RawMessage `json:"catalog,omitempty"`
	Playlists map[string]*Playlist       `json:"playlists,omitempty"`
	Sequence  []*Step                    `json:"sequence"`
	Metadata  map[string]any             `json:"metadata,omitempty"`
}

// Playlist is a named, ordered collection of steps that loops indefinitely
// and remembers its own position between visits.
type Playlist struct {
	Label      string     `json:"label,omitempty"`
	Steps      []*Step    `json:"steps"`
	Conditions *Condition `json:"conditions,omitempty"`
}

// PlaylistByID returns the named playlist, treating SequenceID as the
// implicit top-level playlist.
func (d *Document) PlaylistByID(id string) (*Playlist, bool) {
	if id == SequenceID {
		return &Playlist{Label: "Sequence", Steps: d.Sequence}, true
	}

	p, ok := d.Playlists[id]

	return p, ok
}

// TotalSteps counts every step in the document, including steps nested
// inside rules. The resolver uses it as its skip budget.
func (d *Document) TotalSteps() int {
	total := countSteps(d.Sequence)
	for _, playlist := range d.Playlists {
		total += countSteps(playlist.Steps)
	}

	return total
}

func countSteps(steps []*Step) int {
	total := 0

	for _, step := range steps {
		total++

		if step.Rule == nil {
			continue
		}

		if step.Rule.Item != nil {
			total += countSteps([]*Step{step.Rule.Item})
		}

		total += countSteps(step.Rule.Items)
		total += countSteps(step.Rule.Options)
	}

	return total
}

// Clone returns a deep copy of the document via a JSON round trip. Stored
// history snapshots must never alias the live document.
func (d *Document) Clone() (*Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ScreenRef is what the resolver hands to the renderer: a screen identifier
// plus an optional per-step display preset from the catalog.
type ScreenRef struct {
	Screen string `json:"screen"`
	Preset string `json:"preset,omitempty"`
}
