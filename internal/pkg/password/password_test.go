package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !strings.HasPrefix(hash, "$pbkdf2-sha256$29000$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if !Verify("s3cret-pass", hash) {
		t.Fatal("correct password did not verify")
	}
	if Verify("wrong-pass", hash) {
		t.Fatal("wrong password verified")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical, salt is not random")
	}
	if !Verify("same-password", h1) || !Verify("same-password", h2) {
		t.Fatal("salted hashes did not verify")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$pbkdf2-sha256$",
		"$pbkdf2-sha256$abc$salt$hash",
		"$pbkdf2-sha256$0$c2FsdA$aGFzaA",
		"$pbkdf2-sha256$29000$!!!$aGFzaA",
		"$bcrypt$10$somethingelse",
	}
	for _, c := range cases {
		if Verify("password", c) {
			t.Fatalf("malformed hash %q verified", c)
		}
	}
}
