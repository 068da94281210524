package app

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/internal/api"
	"raulwallet/internal/session"
	"raulwallet/internal/totp"
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

type loginResultMsg struct {
	username string
	resp     api.UserDetailsResponse
	err      error
}

type registerResultMsg struct {
	username string
	resp     api.RegisterResponse
	err      error
}

// AuthModel is the sign-in / sign-up screen. Login asks for the alias and a
// current authenticator code; the service only answers with the profile when
// the code checks out, so there is no password anywhere.
type AuthModel struct {
	deps Deps
	mode authMode

	loginUser textinput.Model
	loginCode textinput.Model

	regName  textinput.Model
	regUser  textinput.Model
	regEmail textinput.Model

	focus   int
	busy    bool
	spinner spinner.Model
	errText string
}

func NewAuth(deps Deps) AuthModel {
	mk := func(placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Width = 32
		return in
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	m := AuthModel{
		deps:      deps,
		loginUser: mk("alias", 64),
		loginCode: mk("123456", totp.Digits),
		regName:   mk("full name", 64),
		regUser:   mk("alias", 64),
		regEmail:  mk("you@example.com", 128),
		spinner:   sp,
	}
	m.loginCode.Width = 10
	m.loginUser.Focus()
	return m
}

func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// fields returns the focusable inputs for the current mode, in order.
func (m *AuthModel) fields() []*textinput.Model {
	if m.mode == modeRegister {
		return []*textinput.Model{&m.regName, &m.regUser, &m.regEmail}
	}
	return []*textinput.Model{&m.loginUser, &m.loginCode}
}

func (m *AuthModel) setFocus(i int) tea.Cmd {
	fields := m.fields()
	if i < 0 {
		i = len(fields) - 1
	}
	i %= len(fields)
	m.focus = i
	var cmd tea.Cmd
	for j, f := range fields {
		if j == i {
			cmd = f.Focus()
		} else {
			f.Blur()
		}
	}
	return cmd
}

func (m *AuthModel) toggleMode() tea.Cmd {
	if m.mode == modeLogin {
		m.mode = modeRegister
	} else {
		m.mode = modeLogin
	}
	m.errText = ""
	return m.setFocus(0)
}

func (m AuthModel) submit() (AuthModel, tea.Cmd) {
	if m.mode == modeRegister {
		name := strings.TrimSpace(m.regName.Value())
		username := strings.TrimSpace(m.regUser.Value())
		email := strings.TrimSpace(m.regEmail.Value())
		switch {
		case name == "":
			m.errText = "enter your name"
		case username == "":
			m.errText = "choose an alias"
		case email == "" || !strings.Contains(email, "@"):
			m.errText = "enter a valid email"
		default:
			m.busy = true
			m.errText = ""
			svc := m.deps.Service
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				resp, err := svc.Register(context.Background(), api.RegisterRequest{
					Name:     name,
					Username: username,
					Email:    email,
				})
				return registerResultMsg{username: username, resp: resp, err: err}
			})
		}
		return m, nil
	}

	username := strings.TrimSpace(m.loginUser.Value())
	code := m.loginCode.Value()
	switch {
	case username == "":
		m.errText = "enter your alias"
	case !totp.ValidFormat(code):
		m.errText = "enter the 6-digit code from your authenticator"
	default:
		m.busy = true
		m.errText = ""
		svc := m.deps.Service
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			resp, err := svc.UserDetails(context.Background(), username, code)
			return loginResultMsg{username: username, resp: resp, err: err}
		})
	}
	return m, nil
}

func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.err != nil {
			if api.IsVerificationRequired(msg.err) {
				// Account exists but enrollment never finished.
				return m, navigate(screenVerify, session.Verify{Alias: msg.username})
			}
			m.busy = false
			m.errText = humanError(msg.err)
			return m, nil
		}
		if !msg.resp.Success || msg.resp.User == nil {
			m.busy = false
			m.errText = orDefault(msg.resp.Message, "sign in failed")
			return m, nil
		}
		return m, navigate(screenAccount, session.Account{User: *msg.resp.User})

	case registerResultMsg:
		if msg.err != nil {
			m.busy = false
			m.errText = humanError(msg.err)
			return m, nil
		}
		if !msg.resp.Success || msg.resp.TotpSetup == nil {
			m.busy = false
			m.errText = orDefault(msg.resp.Message, "registration failed")
			return m, nil
		}
		return m, navigate(screenTotpSetup, session.TotpSetup{
			Alias:       msg.username,
			Secret:      msg.resp.TotpSetup.Secret,
			OtpauthURL:  msg.resp.TotpSetup.OtpauthURL,
			Instruction: msg.resp.TotpSetup.Instruction,
		})

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "ctrl+r":
			return m, m.toggleMode()
		case "enter":
			return m.submit()
		}
	}

	fields := m.fields()
	var cmd tea.Cmd
	*fields[m.focus], cmd = fields[m.focus].Update(msg)

	// The code field only ever holds digits.
	if m.mode == modeLogin && m.focus == 1 {
		if clean := totp.Sanitize(m.loginCode.Value()); clean != m.loginCode.Value() {
			m.loginCode.SetValue(clean)
			m.loginCode.CursorEnd()
		}
	}
	return m, cmd
}

func (m AuthModel) View() string {
	s := m.deps.Styles
	var b strings.Builder

	if m.mode == modeRegister {
		b.WriteString(s.Title.Render("Create your account"))
		b.WriteString("\n")
		b.WriteString(s.Label.Render("Name") + "\n" + m.regName.View() + "\n")
		b.WriteString(s.Label.Render("Alias") + "\n" + m.regUser.View() + "\n")
		b.WriteString(s.Label.Render("Email") + "\n" + m.regEmail.View() + "\n")
	} else {
		b.WriteString(s.Title.Render("Sign in"))
		b.WriteString("\n")
		b.WriteString(s.Label.Render("Alias") + "\n" + m.loginUser.View() + "\n")
		b.WriteString(s.Label.Render("Authenticator code") + "\n" + m.loginCode.View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + s.Muted.Render(" working..."))
	case m.errText != "":
		b.WriteString(s.FieldError.Render(m.errText))
	default:
		if m.mode == modeRegister {
			b.WriteString(s.Muted.Render("enter: create account • ctrl+r: sign in instead"))
		} else {
			b.WriteString(s.Muted.Render("enter: sign in • ctrl+r: create an account"))
		}
	}
	return b.String()
}

// humanError turns a failed call into a status line: the service's own
// message when there is one, a generic connectivity line otherwise.
func humanError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "cannot reach the wallet service, try again"
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
