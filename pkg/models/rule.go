package models

// RuleType tags the rule union.
type RuleType string

const (
	// RuleEvery fires its item once every Frequency visits.
	RuleEvery RuleType = "every"
	// RuleCycle rotates through Items in round-robin order.
	RuleCycle RuleType = "cycle"
	// RuleVariants rotates through Options; without weighting it behaves
	// exactly like cycle.
	RuleVariants RuleType = "variants"
)

// Rule is a stateful step generator. Which fields apply depends on Type:
// every uses Frequency, Phase and Item; cycle uses Items; variants uses
// Options. The per-instance counter or cursor lives in the scheduler's
// state table, not here, so documents stay immutable.
type Rule struct {
	Type      RuleType `json:"type"`
	Frequency int      `json:"frequency,omitempty"`
	Phase     int      `json:"phase,omitempty"`
	Item      *Step    `json:"item,omitempty"`
	Items     []*Step  `json:"items,omitempty"`
	Options   []*Step  `json:"options,omitempty"`
}

// Rotation returns the ordered steps a cycle or variants rule rotates
// through, and false for every rules.
func (r *Rule) Rotation() ([]*Step, bool) {
	switch r.Type {
	case RuleCycle:
		return r.Items, true
	case RuleVariants:
		return r.Options, true
	default:
		return nil, false
	}
}
