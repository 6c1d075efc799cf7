package web

import (
	"encoding/json"
	"time"

	"github.com/mrjrask/desk-display/pkg/models"
)

// SaveConfigRequest is the admin payload for replacing the configuration.
// Document is the full replacement document; partial edits are not
// supported, the UI always submits the whole thing.
type SaveConfigRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
	Actor    string          `json:"actor"    validate:"required,min=1"`
	Summary  string          `json:"summary"`
}

// RollbackRequest names who is performing the rollback.
type RollbackRequest struct {
	Actor string `json:"actor" validate:"required,min=1"`
}

// VersionResponse is the API shape of a config version.
type VersionResponse struct {
	ID          int64           `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Actor       string          `json:"actor"`
	Summary     string          `json:"summary"`
	DiffSummary string          `json:"diff_summary,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
}

func toVersionResponse(v *models.ConfigVersion, includeDocument bool) VersionResponse {
	resp := VersionResponse{
		ID:          v.ID,
		CreatedAt:   v.CreatedAt,
		Actor:       v.Actor,
		Summary:     v.Summary,
		DiffSummary: v.DiffSummary,
	}

	if includeDocument {
		resp.Document = v.Document
	}

	return resp
}
