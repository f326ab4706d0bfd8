// Package period resolves the time window a question refers to and
// matches it against the free-text period cells of the source data.
//
// Period cells have no canonical format ("2025-09", "09/2025",
// "Septiembre 2025" all occur), so every pattern used to match them is
// built here and nowhere else.
package period

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"aliados/internal/textnorm"
)

var ErrNoYears = errors.New("at least one supported year is required")

// Kind is the shape of a resolved filter.
type Kind int

const (
	// Any places no constraint.
	Any Kind = iota
	// YearOnly matches every cell naming the year.
	YearOnly
	// MonthInDefaultYear matches a month the question named without a year,
	// in the most recent supported year.
	MonthInDefaultYear
	// YearMonth matches a month and year the question named.
	YearMonth
)

func (k Kind) String() string {
	switch k {
	case YearOnly:
		return "year"
	case MonthInDefaultYear:
		return "month_default_year"
	case YearMonth:
		return "year_month"
	default:
		return "any"
	}
}

// Filter is a per-question predicate over period cells. The zero value
// matches everything.
type Filter struct {
	kind    Kind
	year    int
	month   int
	pattern *regexp.Regexp
}

// Kind returns the filter kind.
func (f Filter) Kind() Kind { return f.kind }

// Year returns the year constraint, or 0.
func (f Filter) Year() int { return f.year }

// Month returns the month constraint (1-12), or 0.
func (f Filter) Month() int { return f.month }

// Constrained reports whether the filter rejects anything.
func (f Filter) Constrained() bool { return f.kind != Any }

// MatchPeriod reports whether a period cell falls inside the filter.
func (f Filter) MatchPeriod(cell string) bool {
	switch f.kind {
	case Any:
		return true
	case YearOnly:
		return strings.Contains(cell, strconv.Itoa(f.year))
	default:
		return f.pattern != nil && f.pattern.MatchString(cell)
	}
}

// Describe renders the filter for answers: "January 2025", "2025" or
// "all periods".
func (f Filter) Describe() string {
	switch f.kind {
	case YearOnly:
		return strconv.Itoa(f.year)
	case MonthInDefaultYear, YearMonth:
		return fmt.Sprintf("%s %d", MonthName(f.month), f.year)
	default:
		return "all periods"
	}
}

// Label is the short name of the filter inside a comparison: the month
// name when a month is set, otherwise the description.
func (f Filter) Label() string {
	if f.month != 0 {
		return MonthName(f.month)
	}
	return f.Describe()
}

// MonthName returns the English name of month n, or "" when out of range.
func MonthName(n int) string {
	m, ok := monthByNumber(n)
	if !ok {
		return ""
	}
	return m.name
}

// Mentions lists every month and supported year a question names. Months
// are in calendar order and years ascending, without duplicates.
type Mentions struct {
	Months []int
	Years  []int
}

// Resolver extracts periods from questions. It is immutable and safe for
// concurrent use.
type Resolver struct {
	years       []int
	defaultYear int
	patterns    map[[2]int]*regexp.Regexp
}

// NewResolver creates a resolver for the supported years. The most recent
// year becomes the default for questions naming only a month.
func NewResolver(years []int) (*Resolver, error) {
	var clean []int
	for _, y := range years {
		if y < 1000 || y > 9999 {
			return nil, fmt.Errorf("unsupported year %d: must have four digits", y)
		}
		if !slices.Contains(clean, y) {
			clean = append(clean, y)
		}
	}
	if len(clean) == 0 {
		return nil, ErrNoYears
	}

	r := &Resolver{
		years:       clean,
		defaultYear: slices.Max(clean),
		patterns:    make(map[[2]int]*regexp.Regexp, len(clean)*len(months)),
	}
	for _, y := range clean {
		for _, m := range months {
			r.patterns[[2]int{y, m.num}] = compileYearMonth(y, m)
		}
	}
	return r, nil
}

// Years returns the supported years in configured order.
func (r *Resolver) Years() []int { return slices.Clone(r.years) }

// DefaultYear returns the most recent supported year.
func (r *Resolver) DefaultYear() int { return r.defaultYear }

// Resolve builds the filter for question:
//  1. month and year named: that month of that year
//  2. only a year: the whole year
//  3. only a month: that month of the default year
//  4. neither: no constraint
func (r *Resolver) Resolve(question string) Filter {
	tokens := textnorm.Tokens(question)
	m := firstMonth(tokens)
	y := r.firstYear(tokens)

	switch {
	case m != 0 && y != 0:
		return r.ForMonth(y, m)
	case y != 0:
		return r.ForYear(y)
	case m != 0:
		f := r.ForMonth(r.defaultYear, m)
		f.kind = MonthInDefaultYear
		return f
	default:
		return Filter{}
	}
}

// Mentions returns every month and supported year named in question.
func (r *Resolver) Mentions(question string) Mentions {
	tokens := textnorm.Tokens(question)
	var out Mentions
	for _, m := range months {
		if m.mentionedIn(tokens) {
			out.Months = append(out.Months, m.num)
		}
	}
	for _, y := range r.years {
		if textnorm.ContainsPhrase(tokens, strconv.Itoa(y)) {
			out.Years = append(out.Years, y)
		}
	}
	slices.Sort(out.Years)
	return out
}

// ForYear returns a filter matching every cell naming year.
func (r *Resolver) ForYear(year int) Filter {
	return Filter{kind: YearOnly, year: year}
}

// ForMonth returns a filter matching month of year. Months outside 1-12
// yield the year filter.
func (r *Resolver) ForMonth(year, month int) Filter {
	m, ok := monthByNumber(month)
	if !ok {
		return r.ForYear(year)
	}
	p, ok := r.patterns[[2]int{year, month}]
	if !ok {
		p = compileYearMonth(year, m)
	}
	return Filter{kind: YearMonth, year: year, month: month, pattern: p}
}

func firstMonth(tokens string) int {
	for _, m := range months {
		if m.mentionedIn(tokens) {
			return m.num
		}
	}
	return 0
}

func (r *Resolver) firstYear(tokens string) int {
	for _, y := range r.years {
		if textnorm.ContainsPhrase(tokens, strconv.Itoa(y)) {
			return y
		}
	}
	return 0
}

// compileYearMonth matches the year and month in either order, numeric
// ("2025-01", "202501", "1/2025") or named ("Enero 2025",
// "septiembre de 2025", "2025 Sep"). A numeric month touching a letter is
// a quarter or week code ("Q1 2025", "2025-W01"), not a month.
func compileYearMonth(year int, m month) *regexp.Regexp {
	y := strconv.Itoa(year)
	num := fmt.Sprintf("%02d", m.num)
	if m.num < 10 {
		num = "0?" + strconv.Itoa(m.num)
	}
	names := m.periodNames()
	expr := fmt.Sprintf(
		`(?i)%[1]s[^0-9A-Za-z]{0,3}%[2]s(?:[^0-9A-Za-z]|$)|(?:^|[^0-9A-Za-z])%[2]s[^0-9A-Za-z]{0,3}%[1]s|\b(?:%[3]s)\b\W*(?:de\W+|of\W+)?%[1]s|%[1]s\W*(?:%[3]s)\b`,
		y, num, names,
	)
	return regexp.MustCompile(expr)
}
