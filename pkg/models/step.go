package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Step is one entry in a playlist: a screen, a nested playlist reference,
// or a rotation rule. Exactly one of the three is set; the JSON form uses
// the populated key as the tag.
type Step struct {
	Screen     string     `json:"screen,omitempty"`
	Playlist   string     `json:"playlist,omitempty"`
	Rule       *Rule      `json:"rule,omitempty"`
	Preset     string     `json:"preset,omitempty"`
	Conditions *Condition `json:"conditions,omitempty"`
}

// StepKind discriminates the step union.
type StepKind string

const (
	StepKindScreen   StepKind = "screen"
	StepKindPlaylist StepKind = "playlist"
	StepKindRule     StepKind = "rule"
	StepKindInvalid  StepKind = "invalid"
)

// Kind reports which variant of the union this step is. Steps with zero or
// more than one variant populated report StepKindInvalid; the validator
// rejects those before the resolver ever sees them.
func (s *Step) Kind() StepKind {
	set := 0
	kind := StepKindInvalid

	if s.Screen != "" {
		set++
		kind = StepKindScreen
	}

	if s.Playlist != "" {
		set++
		kind = StepKindPlaylist
	}

	if s.Rule != nil {
		set++
		kind = StepKindRule
	}

	if set != 1 {
		return StepKindInvalid
	}

	return kind
}

var errStepShape = errors.New("step must set exactly one of screen, playlist, rule")

type stepAlias Step

// UnmarshalJSON decodes a step and rejects ambiguous or empty unions at
// load time so the rest of the system never re-inspects raw JSON.
func (s *Step) UnmarshalJSON(data []byte) error {
	var alias stepAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	*s = Step(alias)

	if s.Kind() == StepKindInvalid {
		return fmt.Errorf("%w: %s", errStepShape, compactJSON(data))
	}

	return nil
}

func compactJSON(data []byte) string {
	const maxEcho = 120

	out := string(data)
	if len(out) > maxEcho {
		out = out[:maxEcho] + "..."
	}

	return out
}
