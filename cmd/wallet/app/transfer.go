package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/cmd/wallet/ui"
	"raulwallet/internal/api"
	"raulwallet/internal/session"
	"raulwallet/internal/wallet"
)

type transferPhase int

const (
	phaseDraft transferPhase = iota
	phaseGate
	phaseVerify
	phaseExecute
)

type searchResultsMsg struct {
	seq  int
	resp api.SearchUsersResponse
	err  error
}

type stepUpVerifiedMsg struct {
	resp api.VerifyTotpResponse
	err  error
}

type transferDoneMsg struct {
	resp api.TransferResponse
	err  error
}

// TransferModel composes and executes a transfer. The draft never leaves the
// screen until it passes validation and a fresh one-time code; on any
// rejection the draft survives intact so the user corrects in place instead
// of retyping. Exactly one verify call and at most one transfer call run per
// code submission.
type TransferModel struct {
	deps Deps
	user wallet.Identity

	phase  transferPhase
	search ui.SearchBox
	amount textinput.Model
	desc   textarea.Model
	focus  int // 0 search, 1 amount, 2 description

	fieldErr string
	gate     ui.StepUp
}

func NewTransfer(deps Deps, payload session.Account) TransferModel {
	amount := textinput.New()
	amount.Placeholder = "0.00"
	amount.CharLimit = 16
	amount.Width = 16

	desc := textarea.New()
	desc.Placeholder = "what is it for? (optional)"
	desc.CharLimit = wallet.MaxDescriptionLen
	desc.SetWidth(40)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	m := TransferModel{
		deps:   deps,
		user:   payload.User,
		search: ui.NewSearchBox(deps.Styles, payload.User.Username),
		amount: amount,
		desc:   desc,
	}
	m.search.Focus()
	return m
}

func (m TransferModel) Init() tea.Cmd {
	return textinput.Blink
}

// draft assembles the current form state. A non-numeric amount comes out as
// zero, which validation reports as an invalid amount.
func (m TransferModel) draft() wallet.Draft {
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.amount.Value()), 64)
	if err != nil {
		amount = 0
	}
	return wallet.Draft{
		Recipient:   m.search.Selected(),
		Amount:      amount,
		Description: strings.TrimSpace(m.desc.Value()),
	}
}

func (m *TransferModel) setFocus(i int) tea.Cmd {
	const fields = 3
	if i < 0 {
		i = fields - 1
	}
	i %= fields
	m.focus = i

	m.search.Blur()
	m.amount.Blur()
	m.desc.Blur()
	switch i {
	case 0:
		return m.search.Focus()
	case 1:
		return m.amount.Focus()
	default:
		return m.desc.Focus()
	}
}

// openGate moves a valid draft to the code challenge.
func (m TransferModel) openGate() (TransferModel, tea.Cmd) {
	d := m.draft()
	if err := d.Validate(m.user.Balance); err != nil {
		m.fieldErr = err.Error()
		return m, nil
	}
	m.fieldErr = ""
	m.phase = phaseGate
	m.gate = ui.NewStepUp(m.deps.Styles, fmt.Sprintf(
		"confirm sending %s to @%s",
		wallet.FormatAmount(d.Amount), d.Recipient.Username))
	return m, m.gate.Init()
}

func (m TransferModel) Update(msg tea.Msg) (TransferModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.DebounceMsg:
		// Always the search box's, regardless of which field has focus now.
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd

	case ui.SearchQueryMsg:
		svc := m.deps.Service
		seq, query := msg.Seq, msg.Query
		return m, func() tea.Msg {
			resp, err := svc.SearchUsers(context.Background(), query)
			return searchResultsMsg{seq: seq, resp: resp, err: err}
		}

	case searchResultsMsg:
		if msg.err != nil || !msg.resp.Success {
			m.search.SearchFailed(msg.seq)
			return m, nil
		}
		m.search.SetResults(msg.seq, msg.resp.Users)
		return m, nil

	case ui.StepUpSubmitMsg:
		if m.phase != phaseGate {
			return m, nil
		}
		m.phase = phaseVerify
		svc := m.deps.Service
		username, code := m.user.Username, msg.Code
		return m, func() tea.Msg {
			resp, err := svc.VerifyTotp(context.Background(), username, code)
			return stepUpVerifiedMsg{resp: resp, err: err}
		}

	case ui.StepUpCancelMsg:
		if m.phase == phaseGate {
			// Back to the form; the draft is untouched.
			m.phase = phaseDraft
		}
		return m, nil

	case stepUpVerifiedMsg:
		if m.phase != phaseVerify {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseGate
			m.gate.Fail(humanError(msg.err))
			return m, nil
		}
		if !msg.resp.Success || msg.resp.OperationToken == "" {
			m.phase = phaseGate
			m.gate.Fail(orDefault(msg.resp.Message, "invalid code, try the next one"))
			return m, nil
		}
		m.phase = phaseExecute
		d := m.draft()
		req := api.TransferRequest{
			FromUsername:   m.user.Username,
			ToUsername:     d.Recipient.Username,
			Amount:         d.Amount,
			Description:    d.Description,
			OperationToken: msg.resp.OperationToken,
		}
		svc := m.deps.Service
		return m, func() tea.Msg {
			resp, err := svc.Transfer(context.Background(), req)
			return transferDoneMsg{resp: resp, err: err}
		}

	case transferDoneMsg:
		if m.phase != phaseExecute {
			return m, nil
		}
		if msg.err != nil {
			// The token is spent either way; sending again starts over at the
			// form and passes a fresh code check.
			m.phase = phaseDraft
			m.fieldErr = humanError(msg.err)
			return m, nil
		}
		if !msg.resp.Success || msg.resp.Transfer == nil {
			m.phase = phaseDraft
			m.fieldErr = orDefault(msg.resp.Message, "transfer rejected")
			return m, nil
		}
		from := msg.resp.Transfer.From
		if from == nil || from.NewBalance == nil {
			// A success without the authoritative balance is malformed. The
			// displayed balance only ever comes from the service; never
			// substitute a locally computed one.
			m.phase = phaseDraft
			m.fieldErr = "the service did not confirm the transfer, check your statement"
			return m, nil
		}

		updated := m.user
		updated.Balance = *from.NewBalance
		return m, tea.Batch(
			notify(noticeSuccess, "transfer sent"),
			navigate(screenReceipt, session.Receipt{User: updated, Transfer: *msg.resp.Transfer}),
		)

	case tea.KeyMsg:
		if m.phase != phaseDraft {
			var cmd tea.Cmd
			m.gate, cmd = m.gate.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "tab":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab":
			return m, m.setFocus(m.focus - 1)
		case "esc":
			if m.focus == 0 && (m.search.Selected() != nil || m.search.Query() != "") {
				break // the search box consumes esc to clear itself
			}
			return m, navigate(screenAccount, session.Account{User: m.user})
		case "enter":
			// In the search box, enter picks a result; elsewhere it submits.
			if m.focus != 0 || m.search.Selected() != nil {
				if m.focus == 0 && m.search.Selected() != nil {
					return m, m.setFocus(1)
				}
				if m.focus != 2 {
					return m.openGate()
				}
			}
		case "ctrl+s":
			return m.openGate()
		}
	default:
		if m.phase != phaseDraft {
			var cmd tea.Cmd
			m.gate, cmd = m.gate.Update(msg)
			return m, cmd
		}
	}

	// Route the remaining message to the focused field.
	var cmd tea.Cmd
	switch m.focus {
	case 0:
		m.search, cmd = m.search.Update(msg)
	case 1:
		m.amount, cmd = m.amount.Update(msg)
	default:
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m TransferModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Send coins"))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("balance " + wallet.FormatAmount(m.user.Balance)))
	b.WriteString("\n\n")

	if m.phase != phaseDraft {
		b.WriteString(m.gate.View())
		return b.String()
	}

	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(s.Label.Render("Amount") + "\n" + m.amount.View())
	b.WriteString("\n\n")
	b.WriteString(s.Label.Render("Description") + "\n" + m.desc.View())
	b.WriteString("\n\n")

	if m.fieldErr != "" {
		b.WriteString(s.FieldError.Render(m.fieldErr))
	} else {
		b.WriteString(s.Muted.Render("tab: next field • ctrl+s: continue • esc: back"))
	}
	return b.String()
}
