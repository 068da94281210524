package wallet

import "errors"

// MaxDescriptionLen caps the optional transfer description.
const MaxDescriptionLen = 100

// Draft validation failures, one per violated clause so the form can show a
// specific message.
var (
	ErrNoRecipient         = errors.New("you must select a recipient")
	ErrInvalidAmount       = errors.New("you must enter a valid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDescriptionTooLong  = errors.New("description is too long")
)

// Draft is a transfer being composed: a selected recipient, a positive
// amount, and an optional description. It is validated client-side before any
// step-up challenge; the service remains the authority and may still reject.
type Draft struct {
	Recipient   *Recipient
	Amount      float64
	Description string
}

// Validate checks the draft against the sender's known balance. Violations
// are reported in priority order: recipient, then amount, then balance, then
// description length.
func (d Draft) Validate(balance float64) error {
	if d.Recipient == nil {
		return ErrNoRecipient
	}
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if d.Amount > balance {
		return ErrInsufficientBalance
	}
	if len(d.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Valid reports whether the continue control should be enabled.
func (d Draft) Valid(balance float64) bool {
	return d.Validate(balance) == nil
}
