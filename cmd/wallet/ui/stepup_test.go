package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeRunes(t *testing.T, g StepUp, s string) StepUp {
	t.Helper()
	for _, r := range s {
		g, _ = g.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return g
}

// collect runs a command tree and returns every message it yields.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestStepUpRequiresSixDigits(t *testing.T) {
	g := NewStepUp(DefaultStyles(), "confirm the transfer")

	if g.CanSubmit() {
		t.Error("empty gate must not be submittable")
	}

	g = typeRunes(t, g, "12345")
	if g.CanSubmit() {
		t.Error("five digits must not be submittable")
	}

	g = typeRunes(t, g, "6")
	if !g.CanSubmit() {
		t.Error("six digits must be submittable")
	}
}

func TestStepUpStripsNonDigits(t *testing.T) {
	g := NewStepUp(DefaultStyles(), "confirm")

	g = typeRunes(t, g, "12a3-4 5b67")
	if got := g.Code(); got != "123456" {
		t.Errorf("Code() = %q, want %q", got, "123456")
	}
}

func TestStepUpSubmitEmitsCodeAndGoesBusy(t *testing.T) {
	g := NewStepUp(DefaultStyles(), "confirm")
	g = typeRunes(t, g, "654321")

	g, cmd := g.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !g.Busy() {
		t.Fatal("gate must be busy after submit")
	}

	var submitted *StepUpSubmitMsg
	for _, msg := range collect(cmd) {
		if m, ok := msg.(StepUpSubmitMsg); ok {
			submitted = &m
		}
	}
	if submitted == nil {
		t.Fatal("expected a StepUpSubmitMsg")
	}
	if submitted.Code != "654321" {
		t.Errorf("Code = %q, want %q", submitted.Code, "654321")
	}
}

func TestStepUpBusySwallowsKeys(t *testing.T) {
	g := NewStepUp(DefaultStyles(), "confirm")
	g = typeRunes(t, g, "111111")
	g, _ = g.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// A second enter while in flight must emit nothing.
	g, cmd := g.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, msg := range collect(cmd) {
		if _, ok := msg.(StepUpSubmitMsg); ok {
			t.Fatal("re-submission while busy must be disabled")
		}
	}

	// Typing while busy must not change the code either.
	g = typeRunes(t, g, "9")
	if got := g.Code(); got != "111111" {
		t.Errorf("Code() = %q, want %q", got, "111111")
	}
}

func TestStepUpFailRetainsCode(t *testing.T) {
	g := NewStepUp(DefaultStyles(), "confirm")
	g = typeRunes(t, g, "222333")
	g, _ = g.Update(tea.KeyMsg{Type: tea.KeyEnter})

	g.Fail("invalid code")

	if g.Busy() {
		t.Error("Fail must clear the busy state")
	}
	if got := g.Code(); got != "222333" {
		t.Errorf("Code() = %q after Fail, want %q", got, "222333")
	}
	if !g.CanSubmit() {
		t.Error("gate must accept a resubmit after Fail")
	}
}

func TestStepUpEscCancels(t *testing.T) {
	g := NewStepUp(DefaultStyles(), "confirm")

	_, cmd := g.Update(tea.KeyMsg{Type: tea.KeyEsc})
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if _, ok := msgs[0].(StepUpCancelMsg); !ok {
		t.Errorf("expected StepUpCancelMsg, got %T", msgs[0])
	}
}
