/*
Copyright © 2025 Logicos Software

params.go implements validation and generation of card parameter values.

Every card secret handled by cardprod is an opaque string with a fixed
shape: hex fields (admin keys, serial numbers, lock keys) and decimal
fields (PINs). Validation normalizes case and rejects anything outside
the required width or character class. Generation uses crypto/rand
only; decimal PINs are drawn one digit at a time so the digit
distribution is uniform.
*/
package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Record is implemented by every parameter record. CheckRequirements
// normalizes field case in place and must be safe to call repeatedly;
// it is re-run immediately before any destructive card operation.
type Record interface {
	CheckRequirements() error
}

// isHex reports whether every character of s is a hex digit.
func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// isDigits reports whether every character of s is a plain 0-9 digit.
// unicode.IsDigit is deliberately not used here: it accepts characters
// like superscripts that no card tool will.
func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// checkHexField validates a hex field of exactly width characters and
// returns the uppercase-normalized value.
func checkHexField(field, value string, width int) (string, error) {
	v := strings.ToUpper(value)
	if len(v) != width || !isHex(v) {
		return "", &ValidationError{
			Field:    field,
			Expected: fmt.Sprintf("exactly %d hex digits", width),
			Value:    value,
		}
	}
	return v, nil
}

// checkDigitField validates a decimal field of minLen to maxLen digits.
// Fixed-width fields pass the same value for both bounds.
func checkDigitField(field, value string, minLen, maxLen int) error {
	if len(value) < minLen || len(value) > maxLen || !isDigits(value) {
		expected := fmt.Sprintf("exactly %d decimal digits", minLen)
		if minLen != maxLen {
			expected = fmt.Sprintf("%d to %d decimal digits", minLen, maxLen)
		}
		return &ValidationError{
			Field:    field,
			Expected: expected,
			Value:    value,
		}
	}
	return nil
}

// randomHex generates width hex characters (width must be even) from
// crypto/rand, uppercase.
func randomHex(width int) (string, error) {
	b := make([]byte, width/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random source failed: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// randomPIN generates n decimal digits. Each digit is drawn
// independently with rand.Int rather than reducing one large random
// number, which would skew the digit distribution.
func randomPIN(n int) (string, error) {
	ten := big.NewInt(10)
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("random source failed: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
