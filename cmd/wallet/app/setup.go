package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/internal/session"
)

// SetupModel shows the enrollment material from registration: the base32
// secret to type into an authenticator app and the otpauth URL for QR
// generators. The secret exists only on this screen; once the user moves on
// it is gone and only the service can re-issue it.
type SetupModel struct {
	deps    Deps
	payload session.TotpSetup
}

func NewSetup(deps Deps, payload session.TotpSetup) SetupModel {
	return SetupModel{deps: deps, payload: payload}
}

func (m SetupModel) Init() tea.Cmd {
	return nil
}

func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return m, navigate(screenVerify, session.Verify{Alias: m.payload.Alias})
		case "esc":
			return m, navigate(screenAuth, nil)
		}
	}
	return m, nil
}

func (m SetupModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Set up your authenticator"))
	b.WriteString("\n")
	b.WriteString(s.Body.Render("Add this secret to your authenticator app:"))
	b.WriteString("\n\n")
	b.WriteString(s.Card.Render(s.Bold.Render(m.payload.Secret)))
	b.WriteString("\n\n")

	if m.payload.OtpauthURL != "" {
		b.WriteString(s.Label.Render("otpauth URL"))
		b.WriteString("\n")
		b.WriteString(s.Muted.Render(m.payload.OtpauthURL))
		b.WriteString("\n\n")
	}
	if m.payload.Instruction != "" {
		b.WriteString(s.Body.Render(m.payload.Instruction))
		b.WriteString("\n\n")
	}

	b.WriteString(s.Muted.Render("enter: I added it, verify a code • esc: back"))
	return b.String()
}
