package sms

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctuation = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", ",", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"–", "-", "—", "-", "…", "...", "\u00a0", " ",
	"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O", "€", "EUR",
)

// ToASCII replaces typographic punctuation and strips diacritics so the text
// survives 7-bit carrier gateways. Anything left outside ASCII becomes '?'.
func ToASCII(s string) string {
	s = punctuation.Replace(s)

	//transformers keep state, so the chain is built per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > unicode.MaxASCII {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
