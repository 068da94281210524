// Package totp implements the time-based one-time codes (RFC 6238) the wallet
// service uses for step-up authentication, plus the input-format helpers the
// client needs for code fields.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Digits is the code length the service issues and accepts.
const Digits = 6

// Period is the TOTP time step.
const Period = 30 * time.Second

// Sanitize strips every non-digit rune from s and caps the result at Digits
// characters. Input fields apply it on every keystroke so non-digits never
// appear in the field value.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == Digits {
			break
		}
	}
	return b.String()
}

// ValidFormat reports whether s is exactly Digits digits.
func ValidFormat(s string) bool {
	if len(s) != Digits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewSecret returns a fresh base32-encoded 160-bit secret.
func NewSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// Generate computes the code for the given secret at the given time.
func Generate(secret string, at time.Time) (string, error) {
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalizeSecret(secret))
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}

	counter := uint64(at.Unix()) / uint64(Period/time.Second)
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 §5.3.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%06d", code%1_000_000), nil
}

// Verify checks code against the secret at the given time, accepting one time
// step of clock skew in either direction.
func Verify(secret, code string, at time.Time) bool {
	if !ValidFormat(code) {
		return false
	}
	for _, skew := range []time.Duration{0, -Period, Period} {
		want, err := Generate(secret, at.Add(skew))
		if err != nil {
			return false
		}
		if hmac.Equal([]byte(want), []byte(code)) {
			return true
		}
	}
	return false
}

// SetupURL builds the otpauth:// URL an authenticator app enrolls from.
func SetupURL(secret, account, issuer string) string {
	v := url.Values{}
	v.Set("secret", normalizeSecret(secret))
	v.Set("issuer", issuer)
	return fmt.Sprintf("otpauth://totp/%s:%s?%s",
		url.PathEscape(issuer), url.PathEscape(account), v.Encode())
}

func normalizeSecret(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}
