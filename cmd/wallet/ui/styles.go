// Package ui provides the reusable terminal widgets and visual styling for
// the raulwallet client: theme-aware lipgloss styles, the step-up code gate,
// the debounced recipient search box, and the markdown help overlay.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Brand palette. Antd token colors carried over from the web client for the
// semantic states so toasts read the same.
var (
	// Light mode
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#222222")
	LightPrimary    = lipgloss.Color("#222222")
	LightAccent     = lipgloss.Color("#f5b301") // coin gold
	LightMuted      = lipgloss.Color("#8c8c8c")
	LightBorder     = lipgloss.Color("#d9d9d9")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark mode
	DarkBackground = lipgloss.Color("#141414")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#f5b301")
	DarkAccent     = lipgloss.Color("#f5b301")
	DarkMuted      = lipgloss.Color("#595959")
	DarkBorder     = lipgloss.Color("#434343")
	DarkCard       = lipgloss.Color("#1f1f1f")

	// Semantic colors, same in both modes
	Destructive = lipgloss.Color("#ff4d4f")
	Good        = lipgloss.Color("#52c41a")
	Caution     = lipgloss.Color("#faad14")
	Notice      = lipgloss.Color("#1677ff")
)

// Theme holds the active color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light scheme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark scheme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeByName resolves a configured theme name; anything other than "light"
// or "dark" falls back to terminal detection.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses the terminal background from COLORFGBG, defaulting to
// dark (the common terminal case).
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// Format is "foreground;background"; low background indexes are dark.
		parts := strings.Split(colorTerm, ";")
		if len(parts) >= 2 {
			if bgIdx, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
				if bgIdx >= 7 && bgIdx != 8 {
					return LightTheme()
				}
			}
		}
	}
	return DarkTheme()
}

// Styles holds every styled component the screens render with.
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Label    lipgloss.Style

	// Status line / toasts
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Card       lipgloss.Style
	Selected   lipgloss.Style
	Badge      lipgloss.Style
	Divider    lipgloss.Style
	Amount     lipgloss.Style
	AmountNeg  lipgloss.Style
	AmountPos  lipgloss.Style
	FieldError lipgloss.Style
	Spinner    lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Good).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Caution).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Notice),

		Card: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(1, 3).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Background).
			Background(theme.Accent).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#1a1a1a")).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Amount: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		AmountNeg: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		AmountPos: lipgloss.NewStyle().
			Foreground(Good).
			Bold(true),

		FieldError: lipgloss.NewStyle().
			Foreground(Destructive),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo is the splash banner.
func Logo(s Styles) string {
	logo := `
 ██████╗  █████╗ ██╗   ██╗██╗      ██████╗ ██████╗ ██╗███╗   ██╗
 ██╔══██╗██╔══██╗██║   ██║██║     ██╔════╝██╔═══██╗██║████╗  ██║
 ██████╔╝███████║██║   ██║██║     ██║     ██║   ██║██║██╔██╗ ██║
 ██╔══██╗██╔══██║██║   ██║██║     ██║     ██║   ██║██║██║╚██╗██║
 ██║  ██║██║  ██║╚██████╔╝███████╗╚██████╗╚██████╔╝██║██║ ╚████║
 ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝ ╚═════╝ ╚═════╝ ╚═╝╚═╝  ╚═══╝`
	return s.Title.Render(logo)
}

// RenderDivider returns a horizontal rule of the given width.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 40
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
