package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Debouncer coalesces rapid events (keystrokes, mostly) into one delayed
// message. Each Reset bumps a sequence number and schedules a DebounceMsg
// carrying it; a message whose sequence no longer matches arrived after a
// newer event and must be ignored. The same sequence also tags in-flight
// work started from the debounced event, so stale completions can be
// discarded on arrival.
type Debouncer struct {
	seq      int
	duration time.Duration
}

// DebounceMsg fires when a debounce window elapses.
type DebounceMsg struct {
	Seq int
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(duration time.Duration) Debouncer {
	return Debouncer{duration: duration}
}

// Reset invalidates any pending window and schedules a new one. The returned
// command delivers DebounceMsg{seq} after the quiet period.
func (d *Debouncer) Reset() (int, tea.Cmd) {
	d.seq++
	seq := d.seq
	return seq, tea.Tick(d.duration, func(time.Time) tea.Msg {
		return DebounceMsg{Seq: seq}
	})
}

// Cancel invalidates any pending window without scheduling a new one.
func (d *Debouncer) Cancel() {
	d.seq++
}

// Current reports whether seq belongs to the most recent Reset.
func (d *Debouncer) Current(seq int) bool {
	return seq == d.seq
}
