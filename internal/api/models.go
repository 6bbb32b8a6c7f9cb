package api

import "time"

// Link is a resource the backend attached to a processed note.
type Link struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ProcessedNote is the backend-derived record for a submitted note.
// The client never mutates one; it only displays, caches and deletes them.
type ProcessedNote struct {
	ID        string     `json:"id"`
	Original  string     `json:"original"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Markdown  string     `json:"markdown"`
	Links     []Link     `json:"links"`
	CreatedAt time.Time  `json:"created_at"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
}

// Synced reports whether the backend propagated the note to its secondary store.
func (n ProcessedNote) Synced() bool {
	return n.SyncedAt != nil
}

type NotesPage struct {
	Notes []ProcessedNote `json:"notes"`
	Total int             `json:"total"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type categoriesResponse struct {
	Categories []CategoryCount `json:"categories"`
}

type Health struct {
	Status     string          `json:"status"`
	Service    string          `json:"service,omitempty"`
	Time       string          `json:"time,omitempty"`
	Components map[string]bool `json:"components,omitempty"`
}

type ListOptions struct {
	Category string
	Limit    int
	Offset   int
}

const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

func (o ListOptions) resolved() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Offset < 0 {
		o.Offset = DefaultOffset
	}
	return o
}

type createRequest struct {
	Content string `json:"content"`
}
