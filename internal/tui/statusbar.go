package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusLine struct {
	shown   int
	total   int
	filter  string
	search  string
	busy    string
	message string
	err     error
	hints   string
}

func renderStatusBar(s statusLine, width int) string {
	left := fmt.Sprintf(" %d/%d notes", s.shown, s.total)
	if s.filter != "all" {
		left += " · " + s.filter
	}
	if s.search != "" {
		left += fmt.Sprintf(" · %q", s.search)
	}
	if s.busy != "" {
		left += " · " + s.busy
	}
	if s.message != "" {
		left += " · " + s.message
	}
	if s.err != nil {
		left += " · " + errorStyle.Render(s.err.Error())
	}

	right := " " + s.hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
