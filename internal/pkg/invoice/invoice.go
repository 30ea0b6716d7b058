// internal/pkg/invoice/invoice.go
package invoice

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// SerialLength is the number of digits in a generated invoice serial.
const SerialLength = 12

// RandomSerial returns a random numeric string of n digits. Leading zeros
// are allowed, the value is an identifier, not a number.
func RandomSerial(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String()
}

// Format groups a serial into 5-character chunks starting every 4 characters,
// joined with '-'. The overlap is intentional: printed invoices in the field
// already carry this pattern and lookups match on it.
func Format(serial string) string {
	if serial == "" {
		return ""
	}
	var parts []string
	for i := 0; i < len(serial); i += 4 {
		end := i + 5
		if end > len(serial) {
			end = len(serial)
		}
		parts = append(parts, serial[i:end])
	}
	return strings.Join(parts, "-")
}
