package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/cmd/wallet/ui"
	"raulwallet/internal/session"
	"raulwallet/internal/wallet"
)

// ReceiptModel shows one transaction in full. Going back to the statement
// from here passes a fresh code gate, exactly like the account screen's; the
// code from the transfer that produced the receipt is never reused.
type ReceiptModel struct {
	deps Deps
	user wallet.Identity
	tx   wallet.Transaction

	gate *ui.StepUp
}

func NewReceipt(deps Deps, payload session.Receipt) ReceiptModel {
	return ReceiptModel{deps: deps, user: payload.User, tx: payload.Transfer}
}

func (m ReceiptModel) Init() tea.Cmd {
	return nil
}

func (m ReceiptModel) Update(msg tea.Msg) (ReceiptModel, tea.Cmd) {
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
		case "h":
			gate := ui.NewStepUp(m.deps.Styles, "enter a code to view your statement")
			m.gate = &gate
			return m, gate.Init()
		case "esc", "enter", "q":
			return m, navigate(screenAccount, session.Account{User: m.user})
		}
	}
	return m, nil
}

func (m ReceiptModel) title() string {
	switch m.tx.Type {
	case wallet.TypeSent:
		return "Transfer sent"
	case wallet.TypeAward:
		return "Award received"
	default:
		return "Transfer received"
	}
}

func (m ReceiptModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render(m.title()))
	b.WriteString("\n")

	outgoing := m.tx.Outgoing()
	amountStyle := s.AmountPos
	if outgoing {
		amountStyle = s.AmountNeg
	}

	var card strings.Builder
	card.WriteString(amountStyle.Render(wallet.SignedAmount(m.tx.Amount, outgoing)))
	card.WriteString("\n\n")

	who := m.tx.Counterpart()
	direction := "From"
	if outgoing {
		direction = "To"
	}
	card.WriteString(s.Label.Render(direction+" ") + s.Body.Render(who.Name))
	if who.Username != "" {
		card.WriteString(s.Muted.Render(" @" + who.Username))
	}
	card.WriteString("\n")
	card.WriteString(s.Label.Render("For ") + s.Body.Render(m.tx.DisplayDescription()))
	if when := formatWhen(m.tx.CreatedAt); when != "" {
		card.WriteString("\n")
		card.WriteString(s.Label.Render("On ") + s.Body.Render(when))
	}

	b.WriteString(s.Card.Render(card.String()))
	b.WriteString("\n\n")
	b.WriteString(s.Body.Render("Balance: ") + s.Amount.Render(wallet.FormatAmount(m.user.Balance)))
	b.WriteString("\n\n")

	if m.gate != nil {
		b.WriteString(m.gate.View())
		return b.String()
	}

	b.WriteString(s.Muted.Render("h: statement • enter/esc: back to your account"))
	return b.String()
}
