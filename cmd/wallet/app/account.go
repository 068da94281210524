package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/cmd/wallet/ui"
	"raulwallet/internal/api"
	"raulwallet/internal/session"
	"raulwallet/internal/wallet"
)

type historyCheckMsg struct {
	code string
	resp api.TransactionsResponse
	err  error
}

// checkHistoryCode verifies a one-time code the way the service does for the
// statement: by posting the transactions fetch itself. A rejected code comes
// back as a failed response and the gate stays open; a good one carries the
// code into the history screen.
func checkHistoryCode(svc walletService, username, code string) tea.Cmd {
	return func() tea.Msg {
		resp, err := svc.Transactions(context.Background(), username, code)
		return historyCheckMsg{code: code, resp: resp, err: err}
	}
}

// AccountModel is the signed-in home screen: the balance card and the two
// doors out of it. The statement door is behind a code gate that verifies
// before navigating; on rejection the gate reopens with a warning, and only a
// verified code travels in the history payload.
type AccountModel struct {
	deps Deps
	user wallet.Identity

	gate *ui.StepUp
}

func NewAccount(deps Deps, payload session.Account) AccountModel {
	return AccountModel{deps: deps, user: payload.User}
}

func (m AccountModel) Init() tea.Cmd {
	return nil
}

func (m AccountModel) Update(msg tea.Msg) (AccountModel, tea.Cmd) {
	if m.gate != nil {
		switch msg := msg.(type) {
		case ui.StepUpSubmitMsg:
			return m, checkHistoryCode(m.deps.Service, m.user.Username, msg.Code)
		case ui.StepUpCancelMsg:
			m.gate = nil
			return m, nil
		case historyCheckMsg:
			if msg.err != nil {
				m.gate.Fail(humanError(msg.err))
				return m, nil
			}
			if !msg.resp.Success {
				m.gate.Fail(orDefault(msg.resp.Message, "invalid code, try the next one"))
				return m, nil
			}
			return m, navigate(screenHistory, session.History{User: m.user, Code: msg.code})
		}
		gate, cmd := m.gate.Update(msg)
		m.gate = &gate
		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "s":
			return m, navigate(screenTransfer, session.Account{User: m.user})
		case "h":
			gate := ui.NewStepUp(m.deps.Styles, "enter a code to view your statement")
			m.gate = &gate
			return m, gate.Init()
		case "esc", "q":
			// Leaving the account screen is signing out.
			return m, navigate(screenAuth, nil)
		}
	}
	return m, nil
}

func (m AccountModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Hola, " + m.user.Name))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("@" + m.user.Username))
	b.WriteString("\n\n")

	card := s.Label.Render("Balance") + "\n" +
		s.Amount.Render(wallet.FormatAmount(m.user.Balance))
	b.WriteString(s.Card.Render(card))
	b.WriteString("\n\n")

	if m.gate != nil {
		b.WriteString(m.gate.View())
		return b.String()
	}

	b.WriteString(s.Muted.Render("s: send coins • h: statement • ?: help • esc: sign out"))
	return b.String()
}
