// Package session defines the navigation payloads that carry state between
// screens. A payload is created at the moment of navigation, consumed once by
// the destination screen, and discarded; there is no session store of any
// kind, so restarting the program is a logout by construction.
package session

import "raulwallet/internal/wallet"

// Payload is implemented by every screen payload. Screens that receive an
// invalid payload must redirect to their safe entry screen instead of
// rendering in a broken state.
type Payload interface {
	Valid() bool
}

// Account carries the identity into the account screen. Also reused for the
// transfer screen, which needs the same shape.
type Account struct {
	User wallet.Identity
}

func (p Account) Valid() bool { return p.User.Username != "" }

// Verify carries the alias into the TOTP-setup verification screen. An empty
// alias is allowed; the field is then user-editable, matching first-time
// setup started from a direct link.
type Verify struct {
	Alias string
}

func (Verify) Valid() bool { return true }

// TotpSetup carries the enrollment material returned by registration.
type TotpSetup struct {
	Alias       string
	Secret      string
	OtpauthURL  string
	Instruction string
}

func (p TotpSetup) Valid() bool { return p.Secret != "" }

// History carries the identity plus the freshly verified one-time code the
// viewer spends on its single fetch. Entering history without both fields
// redirects to the account screen; there is no cached authorization.
type History struct {
	User wallet.Identity
	Code string
}

func (p History) Valid() bool { return p.User.Username != "" && p.Code != "" }

// Receipt carries one transaction and the current identity into the receipt
// screen.
type Receipt struct {
	User     wallet.Identity
	Transfer wallet.Transaction
}

func (p Receipt) Valid() bool {
	return p.Transfer.Type != "" || p.Transfer.CreatedAt != 0 || p.Transfer.Amount != 0
}
