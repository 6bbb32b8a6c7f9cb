package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/forge/internal/category"
)

// filterBar is a single-select tab row: "all" followed by every known category.
type filterBar struct {
	options    []category.Category
	filterMode bool
	cursor     int
}

func newFilterBar() filterBar {
	return filterBar{options: append([]category.Category{category.Any}, category.All()...)}
}

func (f *filterBar) move(delta int) {
	f.cursor = max(0, min(len(f.options)-1, f.cursor+delta))
}

func (f *filterBar) current() category.Category {
	return f.options[f.cursor]
}

// at returns the option bound to digit key i ("0" is all).
func (f *filterBar) at(i int) (category.Category, bool) {
	if i < 0 || i >= len(f.options) {
		return category.Any, false
	}
	return f.options[i], true
}

// point moves the cursor onto c so entering filter mode starts at the active tab.
func (f *filterBar) point(c category.Category) {
	for i, o := range f.options {
		if o == c {
			f.cursor = i
			return
		}
	}
}

// render draws the bar. count returns -1 when a count is unknown.
func (f *filterBar) render(active category.Category, count func(category.Category) int, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string
	for i, c := range f.options {
		style := tabInactiveStyle
		if c == active {
			style = tabActiveStyle
		}
		label := c.Label()
		if n := count(c); n >= 0 {
			label = fmt.Sprintf("%s %d", label, n)
		}
		if f.filterMode && i == f.cursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
