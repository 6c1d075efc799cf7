package schedule

import (
	"fmt"

	"github.com/mrjrask/desk-display/pkg/models"
)

// Validate checks a decoded document against every semantic rule and
// returns all violations found, never just the first.
func Validate(doc *models.Document) ValidationErrors {
	v := &validator{doc: doc}

	v.checkVersion()
	v.checkSequence()
	v.checkPlaylists()
	v.checkProductivity()

	return v.errs
}

type validator struct {
	doc  *models.Document
	errs ValidationErrors
}

func (v *validator) addf(kind ErrorKind, path, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkVersion() {
	if v.doc.Version != models.SchemaVersion {
		v.addf(KindSchema, "version", "unsupported schema version %d (want %d)",
			v.doc.Version, models.SchemaVersion)
	}
}

func (v *validator) checkSequence() {
	if len(v.doc.Sequence) == 0 {
		v.addf(KindSchema, "sequence", "sequence must contain at least one step")
	}

	v.checkSteps(models.SequenceID, v.doc.Sequence)
}

func (v *validator) checkPlaylists() {
	for id, playlist := range v.doc.Playlists {
		base := "playlists." + id

		if id == "" {
			v.addf(KindSchema, "playlists", "playlist identifiers must be non-empty")
		}

		if id == models.SequenceID {
			v.addf(KindSchema, base, "%q is reserved for the top-level sequence", models.SequenceID)
		}

		if len(playlist.Steps) == 0 {
			v.addf(KindSchema, base+".steps", "playlist must contain at least one step")
		}

		v.checkCondition(playlist.Conditions, base+".conditions")
		v.checkSteps(base+".steps", playlist.Steps)
	}
}

func (v *validator) checkSteps(base string, steps []*models.Step) {
	for i, step := range steps {
		v.checkStep(step, stepPath(base, i))
	}
}

func (v *validator) checkStep(step *models.Step, path string) {
	v.checkCondition(step.Conditions, path+".conditions")

	switch step.Kind() {
	case models.StepKindScreen:
		// Identifier syntax only; whether the renderer knows the screen
		// is the renderer's concern.
	case models.StepKindPlaylist:
		if _, ok := v.doc.PlaylistByID(step.Playlist); !ok {
			v.addf(KindReference, path, "playlist %q is not defined", step.Playlist)
		}
	case models.StepKindRule:
		v.checkRule(step.Rule, rulePath(path))
	default:
		v.addf(KindSchema, path, "step must set exactly one of screen, playlist, rule")
	}
}

func (v *validator) checkRule(rule *models.Rule, path string) {
	switch rule.Type {
	case models.RuleEvery:
		if rule.Frequency < 1 {
			v.addf(KindRuleShape, path+".frequency", "frequency must be >= 1, got %d", rule.Frequency)
		}

		if rule.Phase < 0 {
			v.addf(KindRuleShape, path+".phase", "phase must be >= 0, got %d", rule.Phase)
		}

		if rule.Item == nil {
			v.addf(KindRuleShape, path+".item", "every rule requires an item step")
		}
	case models.RuleCycle:
		if len(rule.Items) == 0 {
			v.addf(KindRuleShape, path+".items", "cycle rule requires at least one item")
		}
	case models.RuleVariants:
		if len(rule.Options) == 0 {
			v.addf(KindRuleShape, path+".options", "variants rule requires at least one option")
		}
	default:
		v.addf(KindRuleShape, path+".type", "unknown rule type %q", rule.Type)

		return
	}

	children, childPaths := ruleChildren(rule, path)
	for i, child := range children {
		v.checkStep(child, childPaths[i])
	}
}

func (v *validator) checkCondition(cond *models.Condition, path string) {
	if cond == nil {
		return
	}

	for i, day := range cond.DaysOfWeek {
		if !day.Valid() {
			v.addf(KindSchema, fmt.Sprintf("%s.days_of_week[%d]", path, i),
				"unknown weekday token %q", day)
		}
	}

	for i, window := range cond.TimeOfDay {
		if window.Start < 0 || int(window.Start) >= 24*60 || window.End < 0 || int(window.End) > 24*60 {
			v.addf(KindSchema, fmt.Sprintf("%s.time_of_day[%d]", path, i),
				"window %s-%s is out of range", window.Start, window.End)
		}
	}
}

// checkProductivity rejects playlists that can never reach a screen step.
// Productivity is computed as a fixpoint: a playlist is productive when any
// of its steps is; a step is productive when it is a screen, references a
// productive playlist, or is a rule with a productive child. A playlist
// that only references itself never joins the set, so pure reference
// cycles are rejected and the resolver's termination bound holds.
func (v *validator) checkProductivity() {
	productive := make(map[string]bool, len(v.doc.Playlists)+1)

	for changed := true; changed; {
		changed = false

		for id, playlist := range v.doc.Playlists {
			if !productive[id] && v.stepsProductive(playlist.Steps, productive) {
				productive[id] = true
				changed = true
			}
		}

		if !productive[models.SequenceID] && v.stepsProductive(v.doc.Sequence, productive) {
			productive[models.SequenceID] = true
			changed = true
		}
	}

	for id := range v.doc.Playlists {
		if !productive[id] {
			v.addf(KindUnproductiveCycle, "playlists."+id,
				"playlist can never resolve to a screen")
		}
	}

	if len(v.doc.Sequence) > 0 && !productive[models.SequenceID] {
		v.addf(KindUnproductiveCycle, "sequence", "sequence can never resolve to a screen")
	}
}

func (v *validator) stepsProductive(steps []*models.Step, productive map[string]bool) bool {
	for _, step := range steps {
		if v.stepProductive(step, productive) {
			return true
		}
	}

	return false
}

func (v *validator) stepProductive(step *models.Step, productive map[string]bool) bool {
	switch step.Kind() {
	case models.StepKindScreen:
		return true
	case models.StepKindPlaylist:
		return productive[step.Playlist]
	case models.StepKindRule:
		children, _ := ruleChildren(step.Rule, "")
		for _, child := range children {
			if v.stepProductive(child, productive) {
				return true
			}
		}
	}

	return false
}
