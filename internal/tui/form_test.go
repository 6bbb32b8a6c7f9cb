package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFormCanSubmit(t *testing.T) {
	f := newNoteForm()
	for _, blank := range []string{"", "   ", "\n\t"} {
		f.input.SetValue(blank)
		if f.canSubmit() {
			t.Errorf("blank %q must not be submittable", blank)
		}
	}
	f.input.SetValue("buy milk")
	if !f.canSubmit() {
		t.Error("non-blank text should be submittable")
	}
	f.begin()
	if f.canSubmit() {
		t.Error("cannot submit while submitting")
	}
}

func TestFormSettle(t *testing.T) {
	f := newNoteForm()
	f.input.SetValue("buy milk")

	f.begin()
	f.settle(false)
	if f.submitting() || f.value() != "buy milk" {
		t.Errorf("failed create must keep text, got %q (submitting=%v)", f.value(), f.submitting())
	}

	f.begin()
	f.settle(true)
	if f.value() != "" {
		t.Errorf("successful create must clear text, got %q", f.value())
	}
}

func TestFormIgnoresInputWhileSubmitting(t *testing.T) {
	f := newNoteForm()
	f.focus()
	f.input.SetValue("buy")
	f.begin()
	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" milk")})
	if f.value() != "buy" {
		t.Errorf("input changed while submitting: %q", f.value())
	}
}

func TestFormSubmitLabel(t *testing.T) {
	f := newNoteForm()
	if got := f.view(80, nil); !strings.Contains(got, "submit") || !strings.Contains(got, "0 chars") {
		t.Errorf("idle form view = %q", got)
	}
	f.input.SetValue("héllo")
	f.begin()
	got := f.view(80, nil)
	if !strings.Contains(got, "processing...") {
		t.Errorf("submitting form should show processing label: %q", got)
	}
	if !strings.Contains(got, "5 chars") {
		t.Errorf("counter should count runes: %q", got)
	}
}
