package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/matheuskafuri/forge/internal/api"
)

// searchNotes narrows items to fuzzy matches of query, best match first.
// It only filters what is already displayed; nothing is fetched.
func searchNotes(query string, items []api.ProcessedNote) []api.ProcessedNote {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	targets := make([]string, len(items))
	for i, n := range items {
		targets[i] = n.Title + " " + n.Category + " " + n.Original
	}
	matches := fuzzy.Find(query, targets)
	out := make([]api.ProcessedNote, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
