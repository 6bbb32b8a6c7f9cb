package category

import "strings"

// Category is the backend's classification of a note. The backend is trusted,
// so values outside the known set are carried through untouched.
type Category string

const (
	// Any is the "all" filter.
	Any Category = ""

	Homelab  Category = "homelab"
	Coding   Category = "coding"
	Personal Category = "personal"
	Learning Category = "learning"
	Creative Category = "creative"
)

// All returns the known categories in canonical order.
func All() []Category {
	return []Category{Homelab, Coding, Personal, Learning, Creative}
}

func Known(c Category) bool {
	for _, k := range All() {
		if k == c {
			return true
		}
	}
	return false
}

// Parse normalizes s. Unknown values come back verbatim with ok=false.
func Parse(s string) (Category, bool) {
	norm := Category(strings.ToLower(strings.TrimSpace(s)))
	if norm == Any || Known(norm) {
		return norm, true
	}
	return Category(s), false
}

// Label is the display text for a filter tab.
func (c Category) Label() string {
	if c == Any {
		return "all"
	}
	return string(c)
}
