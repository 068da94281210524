package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/cmd/wallet/ui"
)

// splashDuration is how long the banner stays before moving on by itself.
const splashDuration = 2 * time.Second

type splashDoneMsg struct{}

// SplashModel shows the banner, then hands off to the sign-in screen. Any
// key skips the wait.
type SplashModel struct {
	styles ui.Styles
}

func NewSplash(styles ui.Styles) SplashModel {
	return SplashModel{styles: styles}
}

func (m SplashModel) Init() tea.Cmd {
	return tea.Tick(splashDuration, func(time.Time) tea.Msg {
		return splashDoneMsg{}
	})
}

func (m SplashModel) Update(msg tea.Msg) (SplashModel, tea.Cmd) {
	switch msg.(type) {
	case splashDoneMsg, tea.KeyMsg:
		return m, navigate(screenAuth, nil)
	}
	return m, nil
}

func (m SplashModel) View() string {
	s := m.styles
	return ui.Logo(s) + "\n\n" +
		s.Subtitle.Render("  your wallet, in the terminal") + "\n\n" +
		s.Muted.Render("  press any key")
}
