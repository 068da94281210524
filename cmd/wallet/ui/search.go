package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/internal/wallet"
)

// SearchDebounce is the quiet period after the last keystroke before a
// directory query is issued.
const SearchDebounce = 300 * time.Millisecond

// SearchMinChars is the minimum query length; anything shorter forces an
// empty result set without touching the network.
const SearchMinChars = 3

// SearchBox resolves free-text input into a selected transfer recipient. It
// owns the debounce window and the stale-response bookkeeping; the caller
// performs the actual directory call when SearchQueryMsg fires and feeds the
// outcome back through SetResults, tagged with the query's sequence so late
// responses for superseded queries are discarded instead of rendered.
type SearchBox struct {
	input    textinput.Model
	styles   Styles
	debounce Debouncer

	// exclude is the acting user, structurally removed from every result set
	// so a self-transfer cannot even be selected.
	exclude string

	results   []wallet.Recipient
	cursor    int
	selected  *wallet.Recipient
	searching bool
}

// SearchQueryMsg asks the caller to run a directory query. Seq must be
// passed back to SetResults unchanged.
type SearchQueryMsg struct {
	Query string
	Seq   int
}

// NewSearchBox builds a resolver that excludes the given acting username.
func NewSearchBox(styles Styles, excludeUsername string) SearchBox {
	input := textinput.New()
	input.Placeholder = "name or alias"
	input.CharLimit = 64
	input.Width = 32

	return SearchBox{
		input:    input,
		styles:   styles,
		debounce: NewDebouncer(SearchDebounce),
		exclude:  excludeUsername,
	}
}

// Focus gives the query field keyboard focus.
func (b *SearchBox) Focus() tea.Cmd {
	return b.input.Focus()
}

// Blur removes keyboard focus.
func (b *SearchBox) Blur() {
	b.input.Blur()
}

// Focused reports whether the query field has focus.
func (b SearchBox) Focused() bool {
	return b.input.Focused()
}

// Selected returns the chosen recipient, or nil while still searching.
func (b SearchBox) Selected() *wallet.Recipient {
	return b.selected
}

// Query returns the current field text.
func (b SearchBox) Query() string {
	return b.input.Value()
}

// Searching reports whether a directory call should be in flight.
func (b SearchBox) Searching() bool {
	return b.searching
}

// Clear drops the selection, the query text and any results, returning the
// box to its initial empty state.
func (b *SearchBox) Clear() {
	b.selected = nil
	b.results = nil
	b.cursor = 0
	b.searching = false
	b.input.SetValue("")
	b.debounce.Cancel()
}

// SetResults applies a directory response. Responses whose sequence no
// longer matches the latest query are stale and dropped; the acting user is
// filtered out of whatever remains.
func (b *SearchBox) SetResults(seq int, users []wallet.Recipient) {
	if !b.debounce.Current(seq) {
		return
	}
	b.searching = false
	if b.selected != nil {
		return
	}

	filtered := make([]wallet.Recipient, 0, len(users))
	for _, u := range users {
		if u.Username == b.exclude {
			continue
		}
		filtered = append(filtered, u)
	}
	b.results = filtered
	if b.cursor >= len(filtered) {
		b.cursor = 0
	}
}

// SearchFailed clears the busy indicator after a failed directory call.
func (b *SearchBox) SearchFailed(seq int) {
	if b.debounce.Current(seq) {
		b.searching = false
		b.results = nil
	}
}

// Update handles key and debounce messages.
func (b SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd) {
	switch msg := msg.(type) {
	case DebounceMsg:
		if !b.debounce.Current(msg.Seq) {
			return b, nil // a newer keystroke superseded this window
		}
		query := strings.TrimSpace(b.input.Value())
		if len(query) < SearchMinChars {
			b.results = nil
			b.searching = false
			return b, nil
		}
		b.searching = true
		seq := msg.Seq
		return b, func() tea.Msg { return SearchQueryMsg{Query: query, Seq: seq} }

	case tea.KeyMsg:
		if !b.input.Focused() {
			return b, nil
		}
		switch msg.String() {
		case "up":
			if b.cursor > 0 {
				b.cursor--
			}
			return b, nil
		case "down":
			if b.cursor < len(b.results)-1 {
				b.cursor++
			}
			return b, nil
		case "enter":
			if b.selected == nil && b.cursor < len(b.results) {
				pick := b.results[b.cursor]
				b.selected = &pick
				b.results = nil
				b.cursor = 0
				b.searching = false
				b.input.SetValue(fmt.Sprintf("%s (@%s)", pick.Name, pick.Username))
				b.input.CursorEnd()
				b.debounce.Cancel()
			}
			return b, nil
		case "esc":
			b.Clear()
			return b, nil
		}

		// Any other key edits the query; editing a pinned selection unpins it
		// and starts over from the typed text.
		before := b.input.Value()
		if b.selected != nil {
			b.selected = nil
			b.input.SetValue("")
			before = ""
		}

		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)

		if b.input.Value() != before {
			_, tick := b.debounce.Reset()
			return b, tea.Batch(cmd, tick)
		}
		return b, cmd
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// View renders the query field, busy hint and result list.
func (b SearchBox) View() string {
	var sb strings.Builder
	sb.WriteString(b.styles.Label.Render("Recipient"))
	sb.WriteString("\n")
	sb.WriteString(b.input.View())
	sb.WriteString("\n")

	switch {
	case b.selected != nil:
		sb.WriteString(b.styles.Success.Render("✓ ") +
			b.styles.Body.Render(b.selected.Name+" @"+b.selected.Username) +
			b.styles.Muted.Render("  (esc to change)"))
	case b.searching:
		sb.WriteString(b.styles.Muted.Render("searching..."))
	case len(b.results) > 0:
		for i, u := range b.results {
			line := fmt.Sprintf(" %s  @%s", u.Name, u.Username)
			if i == b.cursor {
				sb.WriteString(b.styles.Selected.Render(line))
			} else {
				sb.WriteString(b.styles.Body.Render(line))
			}
			if i < len(b.results)-1 {
				sb.WriteString("\n")
			}
		}
	default:
		sb.WriteString(b.styles.Muted.Render("type at least 3 characters to search"))
	}
	return sb.String()
}
