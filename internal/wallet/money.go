package wallet

import (
	"math"
	"strconv"
	"strings"
)

// Currency is the display symbol for RaulCoin amounts.
const Currency = "R$"

// FormatAmount renders an amount as "R$ 1,500" or "R$ 1,500.25": thousands
// grouped with commas, decimals shown only when present, always using the
// absolute value. Signs are the caller's concern (see SignedAmount).
func FormatAmount(amount float64) string {
	abs := math.Abs(amount)

	// Two-decimal precision matches what the service accepts.
	s := strconv.FormatFloat(abs, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")

	intPart, fracPart, _ := strings.Cut(s, ".")
	grouped := groupThousands(intPart)
	if fracPart != "" {
		grouped += "." + fracPart
	}
	return Currency + " " + grouped
}

// SignedAmount renders an amount with the direction prefix used on receipts
// and history rows: "-" for outgoing, "+" for incoming.
func SignedAmount(amount float64, outgoing bool) string {
	prefix := "+"
	if outgoing {
		prefix = "-"
	}
	return prefix + " " + FormatAmount(amount)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
