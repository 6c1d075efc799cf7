package schedule

import (
	"sort"

	"github.com/mrjrask/desk-display/pkg/models"
)

// Screens lists every screen identifier referenced anywhere in the
// document, sorted and deduplicated. The admin surface uses it to show
// what the rotation can reach.
func Screens(doc *models.Document) []string {
	seen := make(map[string]struct{})

	collectScreens(doc.Sequence, seen)

	for _, playlist := range doc.Playlists {
		collectScreens(playlist.Steps, seen)
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

func collectScreens(steps []*models.Step, seen map[string]struct{}) {
	for _, step := range steps {
		switch step.Kind() {
		case models.StepKindScreen:
			seen[step.Screen] = struct{}{}
		case models.StepKindRule:
			children, _ := ruleChildren(step.Rule, "")
			collectScreens(children, seen)
		}
	}
}
