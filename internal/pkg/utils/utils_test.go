package utils

import (
	"strings"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"ab", "****"},
		{"abcd", "****"},
		{"sk_live_12345", "sk*********45"},
	}
	for _, tc := range cases {
		if got := MaskSecret(tc.in); got != tc.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenerateReference(t *testing.T) {
	ref := GenerateReference()
	if !strings.HasPrefix(ref, "PS-") {
		t.Errorf("reference %q lacks prefix", ref)
	}
	if ref == GenerateReference() {
		t.Error("two references should not collide")
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", " on ", "yes"} {
		if !ParseBool(s) {
			t.Errorf("ParseBool(%q) = false", s)
		}
	}
	for _, s := range []string{"", "0", "false", "off", "no", "maybe"} {
		if ParseBool(s) {
			t.Errorf("ParseBool(%q) = true", s)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-4500:   "-4,500",
	}
	for n, want := range cases {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
