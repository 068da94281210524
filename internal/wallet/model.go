// Package wallet holds the client-side domain types for the RaulCoin wallet:
// the authenticated identity snapshot, recipient candidates, and immutable
// transaction records as the remote service reports them.
package wallet

// Identity is the authenticated user's public profile snapshot. It is never
// stored centrally; every screen transition copies it forward, and the balance
// only changes when a fresh fetch or a completed transfer replaces it.
type Identity struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

// Recipient is a user-directory search result. Unlike Identity it carries no
// balance.
type Recipient struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Transaction types as reported by the service.
const (
	TypeSent     = "sent"
	TypeReceived = "received"
	TypeAward    = "award"
)

// Party identifies one side of a transfer. NewBalance is only populated on
// the sender side of a transfer response and is the authoritative post-
// transfer balance.
type Party struct {
	Name       string   `json:"name,omitempty"`
	Username   string   `json:"username,omitempty"`
	NewBalance *float64 `json:"newBalance,omitempty"`
}

// Transaction is an immutable record from the service. The service has
// historically reported participants both nested (from/to objects) and flat
// (fromName/fromUsername), so both shapes are retained and resolved through
// Counterpart.
type Transaction struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	CreatedAt   int64   `json:"createdAt"`

	From *Party `json:"from,omitempty"`
	To   *Party `json:"to,omitempty"`

	FromName     string `json:"fromName,omitempty"`
	FromUsername string `json:"fromUsername,omitempty"`
	ToName       string `json:"toName,omitempty"`
	ToUsername   string `json:"toUsername,omitempty"`
}

// Outgoing reports whether the transaction moves funds away from the viewer.
func (t Transaction) Outgoing() bool {
	return t.Type == TypeSent
}

// Counterpart resolves the other party of the transaction, preferring flat
// fields, then nested ones, falling back to "Unknown".
func (t Transaction) Counterpart() Recipient {
	var name, username string
	if t.Outgoing() {
		name = firstNonEmpty(t.ToName, partyName(t.To), t.ToUsername, partyUsername(t.To))
		username = firstNonEmpty(t.ToUsername, partyUsername(t.To))
	} else {
		name = firstNonEmpty(t.FromName, partyName(t.From), t.FromUsername, partyUsername(t.From))
		username = firstNonEmpty(t.FromUsername, partyUsername(t.From))
	}
	if name == "" {
		name = "Unknown"
	}
	return Recipient{Name: name, Username: username}
}

// DisplayDescription returns the description, or a type-appropriate default
// when the record has none.
func (t Transaction) DisplayDescription() string {
	if t.Description != "" {
		return t.Description
	}
	if t.Type == TypeAward {
		return "Award"
	}
	return "Transfer"
}

func partyName(p *Party) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func partyUsername(p *Party) string {
	if p == nil {
		return ""
	}
	return p.Username
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Filter selects a view over a fetched transaction list. Switching filters is
// purely local; it never refetches.
type Filter int

const (
	FilterAll Filter = iota
	FilterSent
	FilterReceived // received or award
)

// Matches reports whether t belongs to the filtered view.
func (f Filter) Matches(t Transaction) bool {
	switch f {
	case FilterSent:
		return t.Type == TypeSent
	case FilterReceived:
		return t.Type == TypeReceived || t.Type == TypeAward
	default:
		return true
	}
}

// Filtered returns the transactions matching f, preserving the order the
// service delivered.
func Filtered(list []Transaction, f Filter) []Transaction {
	if f == FilterAll {
		return list
	}
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count returns how many transactions match f.
func Count(list []Transaction, f Filter) int {
	n := 0
	for _, t := range list {
		if f.Matches(t) {
			n++
		}
	}
	return n
}
