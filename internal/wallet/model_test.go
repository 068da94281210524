package wallet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleHistory() []Transaction {
	return []Transaction{
		{Type: TypeSent, Amount: 200, CreatedAt: 400, ToName: "Bob", ToUsername: "bob"},
		{Type: TypeReceived, Amount: 50, CreatedAt: 300, FromName: "Ana", FromUsername: "ana"},
		{Type: TypeAward, Amount: 1000, CreatedAt: 200, Description: "Welcome award"},
		{Type: TypeSent, Amount: 10, CreatedAt: 100, To: &Party{Name: "Caro", Username: "caro"}},
	}
}

func TestFiltered(t *testing.T) {
	list := sampleHistory()

	if diff := cmp.Diff(list, Filtered(list, FilterAll)); diff != "" {
		t.Errorf("FilterAll mismatch (-want +got):\n%s", diff)
	}

	sent := Filtered(list, FilterSent)
	if len(sent) != 2 || sent[0].CreatedAt != 400 || sent[1].CreatedAt != 100 {
		t.Errorf("FilterSent kept wrong rows or reordered them: %+v", sent)
	}

	received := Filtered(list, FilterReceived)
	if len(received) != 2 {
		t.Fatalf("FilterReceived: got %d rows, want 2", len(received))
	}
	if received[0].Type != TypeReceived || received[1].Type != TypeAward {
		t.Errorf("FilterReceived must include awards: %+v", received)
	}

	if Count(list, FilterSent) != 2 || Count(list, FilterReceived) != 2 || Count(list, FilterAll) != 4 {
		t.Error("Count disagrees with Filtered")
	}
}

func TestCounterpartFallbacks(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		want Recipient
	}{
		{
			"sent flat fields",
			Transaction{Type: TypeSent, ToName: "Bob", ToUsername: "bob"},
			Recipient{Name: "Bob", Username: "bob"},
		},
		{
			"sent nested fields",
			Transaction{Type: TypeSent, To: &Party{Name: "Caro", Username: "caro"}},
			Recipient{Name: "Caro", Username: "caro"},
		},
		{
			"received prefers flat name",
			Transaction{Type: TypeReceived, FromName: "Ana", From: &Party{Name: "Other", Username: "ana"}},
			Recipient{Name: "Ana", Username: "ana"},
		},
		{
			"username stands in for missing name",
			Transaction{Type: TypeSent, ToUsername: "bob"},
			Recipient{Name: "bob", Username: "bob"},
		},
		{
			"nothing known",
			Transaction{Type: TypeReceived},
			Recipient{Name: "Unknown"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, c.tx.Counterpart()); diff != "" {
				t.Errorf("Counterpart mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDisplayDescription(t *testing.T) {
	if got := (Transaction{Description: "Lunch"}).DisplayDescription(); got != "Lunch" {
		t.Errorf("got %q", got)
	}
	if got := (Transaction{Type: TypeAward}).DisplayDescription(); got != "Award" {
		t.Errorf("award default: got %q", got)
	}
	if got := (Transaction{Type: TypeSent}).DisplayDescription(); got != "Transfer" {
		t.Errorf("transfer default: got %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0"},
		{200, "R$ 200"},
		{800, "R$ 800"},
		{1500, "R$ 1,500"},
		{1234567, "R$ 1,234,567"},
		{1500.25, "R$ 1,500.25"},
		{99.5, "R$ 99.5"},
		{-200, "R$ 200"},
	}
	for _, c := range cases {
		if got := FormatAmount(c.in); got != c.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", c.in, got, c.want)
		}
	}

	if got := SignedAmount(200, true); got != "- R$ 200" {
		t.Errorf("SignedAmount outgoing = %q", got)
	}
	if got := SignedAmount(200, false); got != "+ R$ 200" {
		t.Errorf("SignedAmount incoming = %q", got)
	}
}
