package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/forge/internal/api"
)

type dialogButton int

const (
	buttonCancel dialogButton = iota
	buttonDelete
)

// confirmDialog gates deletion. The App owns whether it is open and which
// note it targets; the dialog itself only tracks the focused button.
type confirmDialog struct {
	open   bool
	note   api.ProcessedNote
	button dialogButton
}

func (d *confirmDialog) show(n api.ProcessedNote) {
	d.open = true
	d.note = n
	d.button = buttonDelete
}

func (d *confirmDialog) close() {
	d.open = false
	d.note = api.ProcessedNote{}
}

func (d *confirmDialog) toggle() {
	if d.button == buttonCancel {
		d.button = buttonDelete
	} else {
		d.button = buttonCancel
	}
}

func (d *confirmDialog) view(deleting bool, err error) string {
	title := cardTitleStyle.Render("Delete note?")
	target := lipgloss.JoinVertical(lipgloss.Left,
		truncateStr(d.note.Title, 50),
		renderBadge(d.note.Category),
	)

	cancel, del := "Cancel", "Delete"
	var cancelBtn, delBtn string
	switch {
	case deleting:
		del = "Deleting..."
		cancelBtn = buttonDisabledStyle.Render(cancel)
		delBtn = buttonDisabledStyle.Render(del)
	case d.button == buttonCancel:
		cancelBtn = buttonFocusedStyle.Render(cancel)
		delBtn = buttonStyle.Render(del)
	default:
		cancelBtn = buttonStyle.Render(cancel)
		delBtn = buttonFocusedStyle.Render(del)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, cancelBtn, "  ", delBtn)

	parts := []string{title, "", target, "", buttons}
	if err != nil && !deleting {
		parts = append(parts, "", errorStyle.Render(truncateStr(err.Error(), 50)))
	}
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
