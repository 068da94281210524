package session

import (
	"testing"

	"raulwallet/internal/wallet"
)

func TestPayloadValidity(t *testing.T) {
	user := wallet.Identity{Name: "Lucia", Username: "lucia", Balance: 1000}

	cases := []struct {
		name    string
		payload Payload
		want    bool
	}{
		{"account with user", Account{User: user}, true},
		{"account empty", Account{}, false},
		{"verify always renders", Verify{}, true},
		{"totp setup with secret", TotpSetup{Secret: "ABC"}, true},
		{"totp setup empty", TotpSetup{}, false},
		{"history with user and code", History{User: user, Code: "123456"}, true},
		{"history without code", History{User: user}, false},
		{"history without user", History{Code: "123456"}, false},
		{"receipt with transfer", Receipt{User: user, Transfer: wallet.Transaction{Type: wallet.TypeSent, Amount: 10}}, true},
		{"receipt empty", Receipt{User: user}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.payload.Valid(); got != c.want {
				t.Fatalf("Valid = %v, want %v", got, c.want)
			}
		})
	}
}
