package invoice

import "testing"

func TestRandomSerial(t *testing.T) {
	s := RandomSerial(SerialLength)
	if len(s) != SerialLength {
		t.Fatalf("expected %d digits, got %d", SerialLength, len(s))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit %q in serial %s", r, s)
		}
	}

	if RandomSerial(12) == RandomSerial(12) {
		t.Fatal("two serials collided, generator is not random")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"123", "123"},
		{"123456789012", "12345-56789-9012"},
		{"0000111122", "00001-11112-22"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Fatalf("Format(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
