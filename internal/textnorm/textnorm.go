// Package textnorm folds free text into comparable forms: accents removed,
// case lowered and punctuation collapsed into single spaces.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold removes diacritics and lowercases s ("Predicción" -> "prediccion").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Tokens folds s and replaces every run of non letter/digit runes with a
// single space. The result is padded with one space on each side so whole
// words and phrases can be tested with ContainsPhrase.
func Tokens(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// ContainsPhrase reports whether phrase occurs as whole words inside
// tokens, which must come from Tokens. The phrase is normalized the same way.
func ContainsPhrase(tokens, phrase string) bool {
	p := strings.TrimSpace(Tokens(phrase))
	if p == "" {
		return false
	}
	return strings.Contains(tokens, " "+p+" ")
}

// Identifier turns a column header such as " Campaña Final " into
// "campana_final".
func Identifier(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(Tokens(s)), " ", "_")
}
