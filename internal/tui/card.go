package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/markdown"
)

var linkLabels = map[string]string{
	"github":  "[ GH ]",
	"docs":    "[ DOCS ]",
	"youtube": "[ YT ]",
	"article": "[ ART ]",
}

// LinkLabel is the short tag shown before a resource of the given type.
func LinkLabel(linkType string) string {
	if label, ok := linkLabels[strings.ToLower(linkType)]; ok {
		return label
	}
	return "[ LINK ]"
}

// cardBody renders everything about a note except the processed markdown,
// which the caller supplies already rendered.
func cardBody(n api.ProcessedNote, width int, renderedMD string) string {
	title := cardTitleStyle.Width(width).Render(n.Title)

	meta := renderBadge(n.Category) + " " + cardMetaStyle.Render(n.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
	if n.Synced() {
		meta += " " + syncedStyle.Render("[ synced ]")
	}
	if p := markdown.Tasks(n.Markdown); p.Total > 0 {
		meta += " " + cardMetaStyle.Render(fmt.Sprintf("tasks %d/%d", p.Done, p.Total))
	}

	parts := []string{title, meta, ""}
	if n.Original != "" {
		parts = append(parts, cardOriginalStyle.Width(width-2).Render(n.Original), "")
	}
	if strings.TrimSpace(renderedMD) != "" {
		parts = append(parts, renderedMD, "")
	}

	if len(n.Links) > 0 {
		parts = append(parts, cardSectionStyle.Render("Resources"))
		for i, l := range n.Links {
			name := l.Title
			if name == "" {
				name = l.URL
			}
			parts = append(parts, fmt.Sprintf("%d. %s %s", i+1, linkLabelStyle.Render(LinkLabel(l.Type)), name))
			parts = append(parts, "   "+linkURLStyle.Render(truncateStr(l.URL, width-3)))
			if l.Description != "" {
				parts = append(parts, "   "+cardMetaStyle.Width(width-3).Render(l.Description))
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func cardLines(n api.ProcessedNote, width int, renderedMD string) []string {
	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}
	return strings.Split(cardBody(n, contentWidth, renderedMD), "\n")
}

// clampScroll keeps the last page of a total-line card in view.
func clampScroll(scroll, total, height int) int {
	return max(0, min(scroll, total-height))
}

// maxCardScroll is the largest useful scroll offset for n in a width x height box.
func maxCardScroll(n *api.ProcessedNote, width, height int, renderedMD string) int {
	if n == nil {
		return 0
	}
	return max(0, len(cardLines(*n, width, renderedMD))-height)
}

// renderCard draws a note into a width x height box, scrolled by scroll lines.
func renderCard(n *api.ProcessedNote, width, height, scroll int, renderedMD string) string {
	if n == nil {
		return lipglossCenter("Select a note", width, height)
	}

	lines := cardLines(*n, width, renderedMD)
	lines = lines[clampScroll(scroll, len(lines), height):]
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
