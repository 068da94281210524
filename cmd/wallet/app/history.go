package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/internal/api"
	"raulwallet/internal/session"
	"raulwallet/internal/wallet"
)

type transactionsMsg struct {
	resp api.TransactionsResponse
	err  error
}

// HistoryModel shows the account statement. The one-time code from the
// payload is spent on a single fetch during Init; filters and selection after
// that are purely local. Coming back here always means passing the gate on
// the account screen again.
type HistoryModel struct {
	deps Deps
	user wallet.Identity
	code string

	busy    bool
	spinner spinner.Model
	errText string

	all    []wallet.Transaction
	filter wallet.Filter
	cursor int
}

func NewHistory(deps Deps, payload session.History) HistoryModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	return HistoryModel{
		deps:    deps,
		user:    payload.User,
		code:    payload.Code,
		busy:    true,
		spinner: sp,
	}
}

func (m HistoryModel) Init() tea.Cmd {
	svc := m.deps.Service
	username, code := m.user.Username, m.code
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		resp, err := svc.Transactions(context.Background(), username, code)
		return transactionsMsg{resp: resp, err: err}
	})
}

// visible returns the transactions under the active filter.
func (m HistoryModel) visible() []wallet.Transaction {
	return wallet.Filtered(m.all, m.filter)
}

func (m *HistoryModel) setFilter(f wallet.Filter) {
	if m.filter != f {
		m.filter = f
		m.cursor = 0
	}
}

func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transactionsMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = humanError(msg.err)
			return m, nil
		}
		if !msg.resp.Success {
			m.errText = orDefault(msg.resp.Message, "could not load your statement")
			return m, nil
		}
		m.all = msg.resp.Transactions
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, navigate(screenAccount, session.Account{User: m.user})
		case "a":
			m.setFilter(wallet.FilterAll)
		case "s":
			m.setFilter(wallet.FilterSent)
		case "r":
			m.setFilter(wallet.FilterReceived)
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case "enter":
			list := m.visible()
			if m.cursor < len(list) {
				return m, navigate(screenReceipt, session.Receipt{
					User:     m.user,
					Transfer: list[m.cursor],
				})
			}
		}
	}
	return m, nil
}

func (m HistoryModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Statement"))
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + s.Muted.Render(" loading..."))
		return b.String()
	case m.errText != "":
		b.WriteString(s.Error.Render(m.errText))
		b.WriteString("\n\n")
		b.WriteString(s.Muted.Render("esc: back"))
		return b.String()
	}

	tabs := []struct {
		label string
		f     wallet.Filter
		key   string
	}{
		{"All", wallet.FilterAll, "a"},
		{"Sent", wallet.FilterSent, "s"},
		{"Received", wallet.FilterReceived, "r"},
	}
	var rendered []string
	for _, t := range tabs {
		label := fmt.Sprintf("%s (%d)", t.label, wallet.Count(m.all, t.f))
		if m.filter == t.f {
			rendered = append(rendered, s.Badge.Render(label))
		} else {
			rendered = append(rendered, s.Muted.Render(label))
		}
	}
	b.WriteString(strings.Join(rendered, "  "))
	b.WriteString("\n\n")

	list := m.visible()
	if len(list) == 0 {
		b.WriteString(s.Muted.Render("nothing here yet"))
	}
	for i, t := range list {
		amount := wallet.SignedAmount(t.Amount, t.Outgoing())
		amountStyle := s.AmountPos
		if t.Outgoing() {
			amountStyle = s.AmountNeg
		}
		who := t.Counterpart()
		line := fmt.Sprintf("%-14s %s  %s  %s",
			amountStyle.Render(amount),
			s.Body.Render(who.Name),
			s.Muted.Render(t.DisplayDescription()),
			s.Muted.Render(formatWhen(t.CreatedAt)))
		if i == m.cursor {
			line = s.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Muted.Render("a/s/r: filter • enter: details • esc: back"))
	return b.String()
}

// formatWhen renders a service timestamp. The service has reported both
// seconds and milliseconds over time, so large values are treated as millis.
func formatWhen(ts int64) string {
	if ts == 0 {
		return ""
	}
	if ts > 1_000_000_000_000 {
		ts /= 1000
	}
	return time.Unix(ts, 0).Format("02 Jan 2006 15:04")
}
