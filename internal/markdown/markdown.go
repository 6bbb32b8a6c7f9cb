// Package markdown renders and inspects the markdown bodies the backend
// produces for notes.
package markdown

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Render formats md for a terminal of the given width. Rendering failures
// fall back to the raw text.
func Render(md string, width int, style string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Progress counts task list checkboxes.
type Progress struct {
	Done  int
	Total int
}

var taskParser = goldmark.New(goldmark.WithExtensions(extension.TaskList)).Parser()

// Tasks counts "- [ ]" and "- [x]" items in md.
func Tasks(md string) Progress {
	src := []byte(md)
	doc := taskParser.Parse(text.NewReader(src))

	var p Progress
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if cb, ok := n.(*extast.TaskCheckBox); ok {
			p.Total++
			if cb.IsChecked {
				p.Done++
			}
		}
		return ast.WalkContinue, nil
	})
	return p
}

// Highlight writes md with terminal syntax highlighting.
func Highlight(w io.Writer, md, style string) error {
	if style == "" {
		style = "monokai"
	}
	return quick.Highlight(w, md, "markdown", "terminal256", style)
}
