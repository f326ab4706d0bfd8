package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Leading glyphs of every answer.
const (
	GlyphSuccess    = "✅"
	GlyphError      = "❌"
	GlyphAuth       = "🔐"
	GlyphReport     = "📊"
	GlyphPrediction = "🎯"
	GlyphComparison = "🆚"
	GlyphHelp       = "🤖"
	GlyphStats      = "📈"
)

// DefaultCurrency prefixes revenue amounts.
const DefaultCurrency = "S/"

// Formatter renders results as markdown text.
type Formatter struct {
	Currency string
}

// NewFormatter creates a formatter. An empty currency uses DefaultCurrency.
func NewFormatter(currency string) Formatter {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	return Formatter{Currency: currency}
}

func (f Formatter) money(v float64) string {
	return f.Currency + " " + humanize.FormatFloat("#,###.##", v)
}

func count(v float64) string {
	return humanize.FormatFloat("#,###.", v)
}

func within(s Scope) string {
	if !s.Period.Constrained() {
		return " across all periods"
	}
	return " in " + s.Period.Describe()
}

// NoData renders the message for an empty selection.
func NoData(s Scope) string {
	return fmt.Sprintf("%s No data found for %s%s.", GlyphError, s.Subject(), within(s))
}

// Performance renders a performance result.
func (f Formatter) Performance(p Performance) string {
	if p.Status == StatusNoData {
		return NoData(p.Scope)
	}
	title := "Performance of " + p.Scope.Partner
	if p.Scope.Global() {
		title = "Global performance"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s**%s:\n\n", GlyphReport, title, within(p.Scope))
	fmt.Fprintf(&b, "• **Total units:** %s\n", count(p.TotalUnits))
	fmt.Fprintf(&b, "• **Total revenue:** %s\n", f.money(p.TotalRevenue))
	fmt.Fprintf(&b, "• **Records analyzed:** %s", humanize.Comma(int64(p.RecordCount)))
	return b.String()
}

var bucketLabels = map[Bucket]string{
	Excellent: "🟢 Excellent - Above goal",
	Good:      "🟢 Good - Close to goal",
	Fair:      "🟡 Fair - In progress",
	Critical:  "🔴 Critical - Far from goal",
}

// BucketLabel renders a bucket with its traffic light.
func BucketLabel(b Bucket) string {
	return bucketLabels[b]
}

func attainmentLine(a Attainment) string {
	if !a.Defined {
		return "• Attainment: no goal defined"
	}
	return fmt.Sprintf("• Attainment: %.1f%% → %s", a.Ratio, BucketLabel(a.Bucket))
}

// Prediction renders a goal attainment result.
func (f Formatter) Prediction(p Prediction) string {
	switch p.Status {
	case StatusNoGoal:
		return fmt.Sprintf("%s No goal defined for %s%s.", GlyphError, p.Scope.Subject(), within(p.Scope))
	case StatusNoData:
		return NoData(p.Scope)
	}
	title := "Goal attainment forecast - " + p.Scope.Partner
	if p.Scope.Global() {
		title = "Global goal attainment forecast"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s**%s:\n\n", GlyphPrediction, title, within(p.Scope))
	b.WriteString("**UNITS:**\n")
	fmt.Fprintf(&b, "• Achieved: %s / Goal: %s\n", count(p.Units.Achieved), count(p.Units.Target))
	b.WriteString(attainmentLine(p.Units) + "\n\n")
	b.WriteString("**REVENUE:**\n")
	fmt.Fprintf(&b, "• Achieved: %s / Goal: %s\n", f.money(p.Revenue.Achieved), f.money(p.Revenue.Target))
	b.WriteString(attainmentLine(p.Revenue))
	return b.String()
}

// Comparison renders a period comparison.
func (f Formatter) Comparison(c Comparison) string {
	if c.Status == StatusInsufficientData {
		return fmt.Sprintf("%s Not enough data from different periods to compare for %s (%s).",
			GlyphError, c.Subject(), c.Window)
	}
	title := "Period comparison - " + c.Partner
	if c.Partner == "" {
		title = "Global period comparison"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s (%s)**:\n\n", GlyphComparison, title, c.Window)
	for _, s := range c.Slices {
		fmt.Fprintf(&b, "**%s:**\n", s.Label)
		fmt.Fprintf(&b, "• Units: %s\n", count(s.Units))
		fmt.Fprintf(&b, "• Revenue: %s\n\n", f.money(s.Revenue))
	}
	bu, br := c.Slices[c.BestUnits], c.Slices[c.BestRevenue]
	b.WriteString("**SUMMARY:**\n")
	fmt.Fprintf(&b, "• Best in units: %s (%s)\n", bu.Label, count(bu.Units))
	fmt.Fprintf(&b, "• Best in revenue: %s (%s)", br.Label, f.money(br.Revenue))
	return b.String()
}

// QuickStats renders a one line summary.
func (f Formatter) QuickStats(q QuickStats) string {
	if q.Records == 0 {
		return GlyphError + " No data available."
	}
	campaigns := "campaigns"
	if q.Campaigns == 1 {
		campaigns = "campaign"
	}
	return fmt.Sprintf("%s Stats: %s units, %s revenue, %d %s",
		GlyphStats, count(q.Units), f.money(q.Revenue), q.Campaigns, campaigns)
}

// Dashboard is the fixed answer to dashboard requests.
func Dashboard() string {
	return GlyphReport + " The dashboard is already visible in the left panel. What else can I help you with?"
}

// Help lists what can be asked. It answers unrecognized questions.
func Help() string {
	return GlyphHelp + " I did not understand your question. I can help you with:\n" +
		"• Partner performance\n" +
		"• Goal attainment forecasts\n" +
		"• Comparisons between periods\n" +
		"• Questions about sales and signups"
}
