package schedule

import (
	"fmt"

	"github.com/mrjrask/desk-display/pkg/models"
)

// Rule state is keyed by the rule's structural path within the document
// (playlist, step index, nesting path), so edits elsewhere never corrupt
// unrelated rules. Examples:
//
//	sequence[0].rule
//	playlists.sports.steps[2].rule
//	playlists.sports.steps[2].rule.items[1].rule
func stepPath(base string, index int) string {
	return fmt.Sprintf("%s[%d]", base, index)
}

func rulePath(stepPath string) string {
	return stepPath + ".rule"
}

func ruleChildPath(rule *models.Rule, path string, index int) string {
	switch rule.Type {
	case models.RuleCycle:
		return fmt.Sprintf("%s.items[%d]", path, index)
	case models.RuleVariants:
		return fmt.Sprintf("%s.options[%d]", path, index)
	default:
		return path + ".item"
	}
}

func playlistStepsBase(playlistID string) string {
	if playlistID == models.SequenceID {
		return models.SequenceID
	}

	return "playlists." + playlistID + ".steps"
}

// walkRules visits every rule in the document with its structural path,
// including rules nested inside other rules.
func walkRules(doc *models.Document, visit func(path string, rule *models.Rule)) {
	walkStepsRules(models.SequenceID, doc.Sequence, visit)

	for id, playlist := range doc.Playlists {
		walkStepsRules("playlists."+id+".steps", playlist.Steps, visit)
	}
}

func walkStepsRules(base string, steps []*models.Step, visit func(string, *models.Rule)) {
	for i, step := range steps {
		if step.Rule == nil {
			continue
		}

		path := rulePath(stepPath(base, i))
		visit(path, step.Rule)
		walkRuleChildren(path, step.Rule, visit)
	}
}

func walkRuleChildren(path string, rule *models.Rule, visit func(string, *models.Rule)) {
	children, childPaths := ruleChildren(rule, path)

	for i, child := range children {
		if child.Rule == nil {
			continue
		}

		nested := rulePath(childPaths[i])
		visit(nested, child.Rule)
		walkRuleChildren(nested, child.Rule, visit)
	}
}

// ruleChildren returns a rule's child steps paired with the step paths the
// resolver would use for them.
func ruleChildren(rule *models.Rule, path string) ([]*models.Step, []string) {
	switch rule.Type {
	case models.RuleEvery:
		if rule.Item == nil {
			return nil, nil
		}

		return []*models.Step{rule.Item}, []string{path + ".item"}
	case models.RuleCycle, models.RuleVariants:
		rotation, _ := rule.Rotation()
		paths := make([]string, len(rotation))

		for i := range rotation {
			paths[i] = ruleChildPath(rule, path, i)
		}

		return rotation, paths
	default:
		return nil, nil
	}
}
