package period

import (
	"regexp"
	"strings"

	"aliados/internal/textnorm"
)

type month struct {
	num     int
	name    string
	aliases []string
	abbrevs []string
}

// months is evaluated in calendar order; when a question names more than
// one month the earliest entry here wins.
var months = []month{
	{1, "January", []string{"january", "enero"}, []string{"jan", "ene"}},
	{2, "February", []string{"february", "febrero"}, []string{"feb"}},
	{3, "March", []string{"march", "marzo"}, []string{"mar"}},
	{4, "April", []string{"april", "abril"}, []string{"apr", "abr"}},
	{5, "May", []string{"mayo"}, nil},
	{6, "June", []string{"june", "junio"}, []string{"jun"}},
	{7, "July", []string{"july", "julio"}, []string{"jul"}},
	{8, "August", []string{"august", "agosto"}, []string{"aug", "ago"}},
	{9, "September", []string{"september", "septiembre", "setiembre"}, []string{"sep", "sept", "set"}},
	{10, "October", []string{"october", "octubre"}, []string{"oct"}},
	{11, "November", []string{"november", "noviembre"}, []string{"nov"}},
	{12, "December", []string{"december", "diciembre"}, []string{"dec", "dic"}},
}

// The English "may" is also a modal verb, so it only names the month
// after a preposition or before a year.
var englishMay = regexp.MustCompile(` (?:in|of|during|for|since|until|by|from|to) may | may \d{4} `)

func (m month) mentionedIn(tokens string) bool {
	for _, a := range m.aliases {
		if textnorm.ContainsPhrase(tokens, a) {
			return true
		}
	}
	return m.num == 5 && englishMay.MatchString(tokens)
}

// periodNames is the regexp alternation of every spelling a period cell
// may use for m, longest first.
func (m month) periodNames() string {
	names := append([]string{strings.ToLower(m.name)}, m.aliases...)
	names = append(names, m.abbrevs...)
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, regexp.QuoteMeta(n))
		}
	}
	// Longer alternatives first so "sept" is tried before "sep".
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return strings.Join(out, "|")
}

func monthByNumber(n int) (month, bool) {
	if n < 1 || n > len(months) {
		return month{}, false
	}
	return months[n-1], true
}
