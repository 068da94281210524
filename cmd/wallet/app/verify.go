package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/cmd/wallet/ui"
	"raulwallet/internal/api"
	"raulwallet/internal/session"
)

type verifySetupResultMsg struct {
	username string
	setup    api.VerifySetupResponse
	setupErr error
	details  api.UserDetailsResponse
	detErr   error
}

// VerifyModel confirms first-time authenticator enrollment. When the alias
// arrives in the payload it is fixed; arriving without one (direct entry)
// leaves the alias editable.
type VerifyModel struct {
	deps Deps

	alias      textinput.Model
	aliasFixed bool
	editAlias  bool

	gate ui.StepUp
}

func NewVerify(deps Deps, payload session.Verify) VerifyModel {
	alias := textinput.New()
	alias.Placeholder = "alias"
	alias.CharLimit = 64
	alias.Width = 32
	alias.SetValue(payload.Alias)

	m := VerifyModel{
		deps:       deps,
		alias:      alias,
		aliasFixed: payload.Alias != "",
		gate:       ui.NewStepUp(deps.Styles, "enter a code from your authenticator to finish setup"),
	}
	if !m.aliasFixed {
		m.editAlias = true
		m.alias.Focus()
	}
	return m
}

func (m VerifyModel) Init() tea.Cmd {
	return m.gate.Init()
}

func (m VerifyModel) Update(msg tea.Msg) (VerifyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.StepUpSubmitMsg:
		username := strings.TrimSpace(m.alias.Value())
		if username == "" {
			m.gate.Fail("enter your alias first")
			return m, nil
		}
		code := msg.Code
		svc := m.deps.Service
		return m, func() tea.Msg {
			out := verifySetupResultMsg{username: username}
			out.setup, out.setupErr = svc.VerifyTotpSetup(context.Background(), username, code)
			if out.setupErr == nil && out.setup.Success {
				// Same window, same code; fetch the profile to land signed in.
				out.details, out.detErr = svc.UserDetails(context.Background(), username, code)
			}
			return out
		}

	case ui.StepUpCancelMsg:
		return m, navigate(screenAuth, nil)

	case verifySetupResultMsg:
		if msg.setupErr != nil {
			m.gate.Fail(humanError(msg.setupErr))
			return m, nil
		}
		if !msg.setup.Success {
			m.gate.Fail(orDefault(msg.setup.Message, "invalid code, try the next one"))
			return m, nil
		}
		if msg.detErr != nil || !msg.details.Success || msg.details.User == nil {
			// Enrollment done but the profile fetch missed; signing in works now.
			return m, tea.Batch(
				notify(noticeSuccess, "authenticator verified, sign in to continue"),
				navigate(screenAuth, nil),
			)
		}
		return m, navigate(screenAccount, session.Account{User: *msg.details.User})

	case tea.KeyMsg:
		if m.editAlias && !m.gate.Busy() {
			switch msg.String() {
			case "tab", "enter":
				if strings.TrimSpace(m.alias.Value()) != "" {
					m.editAlias = false
					m.alias.Blur()
				}
				return m, nil
			case "esc":
				return m, navigate(screenAuth, nil)
			}
			var cmd tea.Cmd
			m.alias, cmd = m.alias.Update(msg)
			return m, cmd
		}
		if !m.aliasFixed && !m.gate.Busy() && msg.String() == "tab" {
			m.editAlias = true
			return m, m.alias.Focus()
		}
	}

	var cmd tea.Cmd
	m.gate, cmd = m.gate.Update(msg)
	return m, cmd
}

func (m VerifyModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Verify your authenticator"))
	b.WriteString("\n")
	if m.aliasFixed {
		b.WriteString(s.Label.Render("Alias ") + s.Body.Render("@"+m.alias.Value()))
	} else {
		b.WriteString(s.Label.Render("Alias") + "\n" + m.alias.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.gate.View())
	return b.String()
}
