package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/internal/totp"
)

// StepUp is the one-time-code challenge gate shown before every sensitive
// action. It only collects and validates the code format; the caller owns the
// verification call and reports its outcome back via Fail or by navigating
// away. One StepUp instance handles exactly one challenge: callers build a
// fresh gate every time an action needs one.
type StepUp struct {
	input   textinput.Model
	spinner spinner.Model
	styles  Styles

	prompt string
	busy   bool
	warn   string
}

// StepUpSubmitMsg fires when the user submits a well-formed code. The caller
// performs the verification call and either navigates or calls Fail.
type StepUpSubmitMsg struct {
	Code string
}

// StepUpCancelMsg fires when the user dismisses the gate.
type StepUpCancelMsg struct{}

// NewStepUp builds a fresh gate with the given prompt line.
func NewStepUp(styles Styles, prompt string) StepUp {
	input := textinput.New()
	input.Placeholder = "123456"
	input.CharLimit = totp.Digits
	input.Width = 10
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return StepUp{
		input:   input,
		spinner: sp,
		styles:  styles,
		prompt:  prompt,
	}
}

// Init starts the cursor blink.
func (g StepUp) Init() tea.Cmd {
	return textinput.Blink
}

// CanSubmit reports whether the submit control is enabled: exactly six
// digits and no call in flight.
func (g StepUp) CanSubmit() bool {
	return !g.busy && totp.ValidFormat(g.input.Value())
}

// Busy reports whether a verification call is in flight.
func (g StepUp) Busy() bool {
	return g.busy
}

// Code returns the current field value.
func (g StepUp) Code() string {
	return g.input.Value()
}

// Fail reopens the gate after a rejected or failed verification: the busy
// state clears, the warning shows, and the typed code is retained so a typo
// can be corrected in place.
func (g *StepUp) Fail(warn string) {
	g.busy = false
	g.warn = warn
}

// Update handles key and spinner messages.
func (g StepUp) Update(msg tea.Msg) (StepUp, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if g.busy {
			// Re-submission is disabled while the call is in flight.
			return g, nil
		}
		switch msg.String() {
		case "enter":
			if !g.CanSubmit() {
				return g, nil
			}
			g.busy = true
			g.warn = ""
			code := g.input.Value()
			return g, tea.Batch(
				func() tea.Msg { return StepUpSubmitMsg{Code: code} },
				g.spinner.Tick,
			)
		case "esc":
			return g, func() tea.Msg { return StepUpCancelMsg{} }
		}
	case spinner.TickMsg:
		if g.busy {
			var cmd tea.Cmd
			g.spinner, cmd = g.spinner.Update(msg)
			return g, cmd
		}
		return g, nil
	}

	var cmd tea.Cmd
	g.input, cmd = g.input.Update(msg)

	// Strip non-digits as they are typed; the field never holds anything but
	// up to six digits.
	if clean := totp.Sanitize(g.input.Value()); clean != g.input.Value() {
		g.input.SetValue(clean)
		g.input.CursorEnd()
	}

	return g, cmd
}

// View renders the gate block.
func (g StepUp) View() string {
	var b strings.Builder
	b.WriteString(g.styles.Title.Render("Step-up verification"))
	b.WriteString("\n")
	b.WriteString(g.styles.Body.Render(g.prompt))
	b.WriteString("\n\n")
	b.WriteString(g.input.View())
	b.WriteString("\n\n")

	switch {
	case g.busy:
		b.WriteString(g.spinner.View() + g.styles.Muted.Render(" verifying..."))
	case g.warn != "":
		b.WriteString(g.styles.Warning.Render(g.warn))
	case g.CanSubmit():
		b.WriteString(g.styles.Muted.Render("enter to confirm • esc to cancel"))
	default:
		b.WriteString(g.styles.Muted.Render("enter the 6-digit code from your authenticator"))
	}
	return b.String()
}
