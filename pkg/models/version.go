package models

import (
	"encoding/json"
	"time"
)

// ConfigVersion is an immutable, audited snapshot of the configuration
// document. Versions are created on every successful validated save and
// never mutated; old versions beyond the retention window are pruned,
// except the currently active head.
type ConfigVersion struct {
	ID          int64           `json:"id"`
	Document    json.RawMessage `json:"document,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Actor       string          `json:"actor"`
	Summary     string          `json:"summary"`
	DiffSummary string          `json:"diff_summary,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}
