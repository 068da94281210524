package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# RaulCoin Wallet

A terminal client for the RaulCoin wallet service.

## Keys

| Key | Action |
|-----|--------|
| tab | next field |
| shift+tab | previous field |
| enter | confirm / select |
| esc | cancel / back |
| ? | toggle this help |
| ctrl+c | quit |

## Sending coins

Search for a recipient by name or alias (three characters minimum),
enter an amount and an optional note, then confirm with the 6-digit
code from your authenticator app. Every transfer needs a fresh code.

## History

Your account statement also sits behind a code check. Filter with
**a**ll, **s**ent and **r**eceived once it loads.
`

// Help renders the keybinding and usage overlay. The markdown render is
// done once on first View and cached; glamour is too slow to re-run every
// frame.
type Help struct {
	styles   Styles
	width    int
	rendered string
}

// NewHelp builds the overlay for the active theme.
func NewHelp(styles Styles) Help {
	return Help{styles: styles, width: 72}
}

// SetWidth adjusts the wrap width and invalidates the cached render.
func (h *Help) SetWidth(w int) {
	if w > 0 && w != h.width {
		h.width = w
		h.rendered = ""
	}
}

// View returns the rendered overlay.
func (h *Help) View() string {
	if h.rendered == "" {
		style := "light"
		if h.styles.Theme.IsDark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(h.width),
		)
		if err == nil {
			if out, err := r.Render(helpMarkdown); err == nil {
				h.rendered = out
			}
		}
		if h.rendered == "" {
			// Unstyled fallback if the renderer fails.
			h.rendered = helpMarkdown
		}
	}
	return strings.TrimRight(h.rendered, "\n") + "\n" +
		h.styles.Muted.Render("press ? or esc to close")
}
