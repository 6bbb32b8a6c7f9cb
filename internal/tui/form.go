package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formState int

const (
	formIdle formState = iota
	formSubmitting
)

// noteForm is the composer. It moves idle -> submitting on an explicit
// submit with non-blank text, and back to idle when the create settles.
type noteForm struct {
	input textarea.Model
	state formState
}

func newNoteForm() noteForm {
	ta := textarea.New()
	ta.Placeholder = "Dump an idea, a link, a todo..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(3)
	ta.SetWidth(60)
	return noteForm{input: ta}
}

func (f *noteForm) value() string {
	return f.input.Value()
}

func (f *noteForm) submitting() bool {
	return f.state == formSubmitting
}

// canSubmit is false while a create is in flight or the trimmed text is empty.
func (f *noteForm) canSubmit() bool {
	return f.state == formIdle && strings.TrimSpace(f.input.Value()) != ""
}

func (f *noteForm) begin() {
	f.state = formSubmitting
}

// settle returns the form to idle. The text is cleared only when the create
// succeeded, so a failed submit can be retried as typed.
func (f *noteForm) settle(ok bool) {
	f.state = formIdle
	if ok {
		f.input.Reset()
	}
}

func (f *noteForm) focus() tea.Cmd {
	return f.input.Focus()
}

func (f *noteForm) blur() {
	f.input.Blur()
}

func (f *noteForm) focused() bool {
	return f.input.Focused()
}

func (f *noteForm) setWidth(w int) {
	f.input.SetWidth(max(10, w))
}

// update forwards input to the textarea. Input is dropped while submitting.
func (f *noteForm) update(msg tea.Msg) tea.Cmd {
	if f.state == formSubmitting {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *noteForm) submitLabel() string {
	switch {
	case f.state == formSubmitting:
		return buttonDisabledStyle.Render("processing...")
	case !f.canSubmit():
		return buttonDisabledStyle.Render("submit")
	default:
		return buttonStyle.Render("submit")
	}
}

func (f *noteForm) view(width int, createErr error) string {
	inner := width - 4
	counter := itemTimeStyle.Render(fmt.Sprintf("%d chars", utf8.RuneCountInString(f.input.Value())))
	hint := helpDimStyle.Render("ctrl+s submit")
	if !f.focused() {
		hint = helpDimStyle.Render("n compose")
	}

	controls := counter + "  " + hint
	label := f.submitLabel()
	gap := inner - lipgloss.Width(controls) - lipgloss.Width(label)
	if gap < 1 {
		gap = 1
	}
	footer := controls + strings.Repeat(" ", gap) + label

	body := lipgloss.JoinVertical(lipgloss.Left, f.input.View(), footer)
	if createErr != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, errorStyle.Render(createErr.Error()))
	}

	style := formStyle
	if f.focused() {
		style = formActiveStyle
	}
	return style.Width(width - 2).Render(body)
}
