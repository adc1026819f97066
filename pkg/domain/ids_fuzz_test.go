//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseUserID(f *testing.F) {
	// Seed corpus with interesting inputs
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Errorf("ParseUserID(%q) returned nil ID without error", input)
		}
		if !utf8.ValidString(id.String()) {
			t.Errorf("ParseUserID(%q) produced non-UTF8 string form", input)
		}
	})
}

// FuzzParseCategory verifies the slug allowlist holds for arbitrary input.
func FuzzParseCategory(f *testing.F) {
	f.Add("groceries")
	f.Add("")
	f.Add("UPPER")
	f.Add("has space")
	f.Add("-leading")
	f.Add("trailing-")
	f.Add("ok-slug-42")

	f.Fuzz(func(t *testing.T, input string) {
		c, err := ParseCategory(input)
		if err != nil {
			return
		}
		for _, r := range c.String() {
			if !isCategoryRune(r) {
				t.Errorf("ParseCategory(%q) accepted invalid rune %q", input, r)
			}
		}
	})
}
