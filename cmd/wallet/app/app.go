// Package app wires the wallet screens into one Bubble Tea program. The root
// model owns navigation: screens never talk to each other directly, they emit
// a navigateMsg with a typed payload and the root builds a fresh destination
// model from it. Nothing identity-related survives outside those payloads, so
// quitting the program is a logout.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"raulwallet/cmd/wallet/ui"
	"raulwallet/internal/api"
	"raulwallet/internal/session"
)

// walletService is the slice of the HTTP client the screens use. Kept as an
// interface so screen tests can swap in a scripted fake.
type walletService interface {
	Register(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error)
	UserDetails(ctx context.Context, username, code string) (api.UserDetailsResponse, error)
	VerifyTotpSetup(ctx context.Context, username, code string) (api.VerifySetupResponse, error)
	VerifyTotp(ctx context.Context, username, code string) (api.VerifyTotpResponse, error)
	SearchUsers(ctx context.Context, query string) (api.SearchUsersResponse, error)
	Transfer(ctx context.Context, req api.TransferRequest) (api.TransferResponse, error)
	Transactions(ctx context.Context, username, code string) (api.TransactionsResponse, error)
}

// Deps carries what every screen needs.
type Deps struct {
	Service walletService
	Log     *zap.Logger
	Styles  ui.Styles
}

type screen int

const (
	screenSplash screen = iota
	screenAuth
	screenTotpSetup
	screenVerify
	screenAccount
	screenTransfer
	screenHistory
	screenReceipt
)

// navigateMsg moves the program to another screen. The payload is consumed by
// the destination's constructor and not kept anywhere else.
type navigateMsg struct {
	to      screen
	payload session.Payload
}

func navigate(to screen, payload session.Payload) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to, payload: payload} }
}

// noticeKind selects the status line style.
type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

// noticeDuration is how long a transient status line stays up.
const noticeDuration = 4 * time.Second

type noticeMsg struct {
	text string
	kind noticeKind
}

type noticeExpireMsg struct {
	seq int
}

func notify(kind noticeKind, text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text, kind: kind} }
}

// Model is the root program model.
type Model struct {
	deps   Deps
	width  int
	height int

	active   screen
	splash   SplashModel
	auth     AuthModel
	setup    SetupModel
	verify   VerifyModel
	account  AccountModel
	transfer TransferModel
	history  HistoryModel
	receipt  ReceiptModel

	help     ui.Help
	showHelp bool

	notice     string
	noticeKind noticeKind
	noticeSeq  int
}

// New builds the root model starting at the splash screen.
func New(deps Deps) Model {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return Model{
		deps:   deps,
		active: screenSplash,
		splash: NewSplash(deps.Styles),
		help:   ui.NewHelp(deps.Styles),
	}
}

// Init starts the splash timer.
func (m Model) Init() tea.Cmd {
	return m.splash.Init()
}

// helpAvailable reports whether '?' should open the overlay on the active
// screen. Screens with free-text fields keep the character for typing.
func (m Model) helpAvailable() bool {
	switch m.active {
	case screenSplash, screenAccount, screenHistory, screenReceipt, screenTotpSetup:
		return true
	}
	return false
}

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width - 4)
		return m.route(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			switch msg.String() {
			case "?", "esc", "q":
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "?" && m.helpAvailable() {
			m.showHelp = true
			return m, nil
		}
		return m.route(msg)

	case navigateMsg:
		return m.goTo(msg.to, msg.payload)

	case noticeMsg:
		m.notice = msg.text
		m.noticeKind = msg.kind
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
			return noticeExpireMsg{seq: seq}
		})

	case noticeExpireMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m.route(msg)
}

// route delivers a message to the active screen only; stale messages for a
// screen the user already left are dropped with it.
func (m Model) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case screenSplash:
		m.splash, cmd = m.splash.Update(msg)
	case screenAuth:
		m.auth, cmd = m.auth.Update(msg)
	case screenTotpSetup:
		m.setup, cmd = m.setup.Update(msg)
	case screenVerify:
		m.verify, cmd = m.verify.Update(msg)
	case screenAccount:
		m.account, cmd = m.account.Update(msg)
	case screenTransfer:
		m.transfer, cmd = m.transfer.Update(msg)
	case screenHistory:
		m.history, cmd = m.history.Update(msg)
	case screenReceipt:
		m.receipt, cmd = m.receipt.Update(msg)
	}
	return m, cmd
}

// goTo validates the payload and constructs a fresh destination model. An
// invalid or mistyped payload silently redirects to the nearest safe screen
// rather than rendering a broken page.
func (m Model) goTo(to screen, payload session.Payload) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch to {
	case screenAuth:
		m.active = screenAuth
		m.auth = NewAuth(m.deps)
		return m, m.auth.Init()

	case screenTotpSetup:
		p, ok := payload.(session.TotpSetup)
		if !ok || !p.Valid() {
			return m.redirect(to, screenAuth, nil)
		}
		m.active = screenTotpSetup
		m.setup = NewSetup(m.deps, p)
		return m, m.setup.Init()

	case screenVerify:
		p, _ := payload.(session.Verify)
		m.active = screenVerify
		m.verify = NewVerify(m.deps, p)
		return m, m.verify.Init()

	case screenAccount:
		p, ok := payload.(session.Account)
		if !ok || !p.Valid() {
			return m.redirect(to, screenAuth, nil)
		}
		m.active = screenAccount
		m.account = NewAccount(m.deps, p)
		return m, m.account.Init()

	case screenTransfer:
		p, ok := payload.(session.Account)
		if !ok || !p.Valid() {
			return m.redirect(to, screenAuth, nil)
		}
		m.active = screenTransfer
		m.transfer = NewTransfer(m.deps, p)
		return m, m.transfer.Init()

	case screenHistory:
		p, ok := payload.(session.History)
		if !ok || !p.Valid() {
			// A valid identity without a fresh code goes back to the account
			// screen, where the code gate lives.
			if ok && p.User.Username != "" {
				return m.redirect(to, screenAccount, session.Account{User: p.User})
			}
			return m.redirect(to, screenAuth, nil)
		}
		m.active = screenHistory
		m.history = NewHistory(m.deps, p)
		return m, m.history.Init()

	case screenReceipt:
		p, ok := payload.(session.Receipt)
		if !ok || !p.Valid() {
			if ok && p.User.Username != "" {
				return m.redirect(to, screenAccount, session.Account{User: p.User})
			}
			return m.redirect(to, screenAuth, nil)
		}
		m.active = screenReceipt
		m.receipt = NewReceipt(m.deps, p)
		return m, m.receipt.Init()
	}

	m.active = screenSplash
	m.splash = NewSplash(m.deps.Styles)
	return m, m.splash.Init()
}

func (m Model) redirect(wanted, to screen, safe session.Payload) (tea.Model, tea.Cmd) {
	m.deps.Log.Debug("navigation payload rejected",
		zap.Int("wanted", int(wanted)),
		zap.Int("redirect", int(to)))
	return m.goTo(to, safe)
}

// View renders the active screen inside the shared chrome.
func (m Model) View() string {
	s := m.deps.Styles

	var body string
	if m.showHelp {
		body = m.help.View()
	} else {
		switch m.active {
		case screenSplash:
			body = m.splash.View()
		case screenAuth:
			body = m.auth.View()
		case screenTotpSetup:
			body = m.setup.View()
		case screenVerify:
			body = m.verify.View()
		case screenAccount:
			body = m.account.View()
		case screenTransfer:
			body = m.transfer.View()
		case screenHistory:
			body = m.history.View()
		case screenReceipt:
			body = m.receipt.View()
		}
	}

	sections := []string{s.Content.Render(body)}
	if m.notice != "" {
		var line string
		switch m.noticeKind {
		case noticeSuccess:
			line = s.Success.Render(m.notice)
		case noticeError:
			line = s.Error.Render(m.notice)
		default:
			line = s.Info.Render(m.notice)
		}
		sections = append(sections, s.Footer.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
