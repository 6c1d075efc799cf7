package store

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mrjrask/desk-display/pkg/models"
)

// summarizeChange builds the human-readable one-liner recorded with each
// version: which playlists were added, updated, or removed.
func summarizeChange(old, updated *models.Document) string {
	oldPlaylists := map[string]*models.Playlist{}
	if old != nil {
		oldPlaylists = old.Playlists
	}

	var added, removed, changed []string

	keys := make(map[string]struct{}, len(oldPlaylists)+len(updated.Playlists))
	for key := range oldPlaylists {
		keys[key] = struct{}{}
	}

	for key := range updated.Playlists {
		keys[key] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}

	sort.Strings(sorted)

	for _, key := range sorted {
		before, inOld := oldPlaylists[key]
		after, inNew := updated.Playlists[key]

		switch {
		case !inOld:
			added = append(added, key)
		case !inNew:
			removed = append(removed, key)
		case !playlistsEqual(before, after):
			changed = append(changed, key)
		}
	}

	var parts []string
	if len(added) > 0 {
		parts = append(parts, "Added playlists: "+strings.Join(added, ", "))
	}

	if len(changed) > 0 {
		parts = append(parts, "Updated playlists: "+strings.Join(changed, ", "))
	}

	if len(removed) > 0 {
		parts = append(parts, "Removed playlists: "+strings.Join(removed, ", "))
	}

	if len(parts) == 0 {
		return "Configuration saved"
	}

	return strings.Join(parts, "; ")
}

func playlistsEqual(a, b *models.Playlist) bool {
	aj, errA := canonicalJSON(a)
	bj, errB := canonicalJSON(b)

	return errA == nil && errB == nil && string(aj) == string(bj)
}

// unifiedDiff renders the full line-level diff between two document
// renderings for the audit trail.
func unifiedDiff(old, updated string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(updated),
		FromFile: "previous",
		ToFile:   "submitted",
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}

	return text
}
