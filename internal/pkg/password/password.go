// internal/pkg/password/password.go
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored hashes use the passlib pbkdf2_sha256 layout:
//
//	$pbkdf2-sha256$<rounds>$<salt>$<checksum>
//
// Salt and checksum are base64 without padding, with '+' swapped for '.'
// (passlib's "adapted base64" alphabet). Existing user rows were written by
// the previous backend in this format, so both sides must keep producing it.
const (
	prefix       = "$pbkdf2-sha256$"
	defaultRound = 29000
	saltSize     = 16
	keySize      = 32
)

var ab64 = base64.RawStdEncoding.WithPadding(base64.NoPadding)

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(ab64.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return ab64.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// Hash derives a salted PBKDF2-SHA256 hash of the plaintext.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plain), salt, defaultRound, keySize, sha256.New)
	return prefix + strconv.Itoa(defaultRound) + "$" + ab64Encode(salt) + "$" + ab64Encode(key), nil
}

// Verify reports whether plain matches the stored hash. A malformed hash
// verifies as false, never as an error, so callers cannot distinguish a bad
// password from a corrupt credential row.
func Verify(plain, encoded string) bool {
	if !strings.HasPrefix(encoded, prefix) {
		return false
	}

	parts := strings.Split(strings.TrimPrefix(encoded, prefix), "$")
	if len(parts) != 3 {
		return false
	}

	rounds, err := strconv.Atoi(parts[0])
	if err != nil || rounds <= 0 {
		return false
	}

	salt, err := ab64Decode(parts[1])
	if err != nil {
		return false
	}

	want, err := ab64Decode(parts[2])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(plain), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
