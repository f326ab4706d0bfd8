package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPerformance(t *testing.T) {
	f := NewFormatter("")
	r := resolver(t)

	got := f.Performance(Performance{
		Scope:        Scope{Partner: "CLARO", Period: r.Resolve("january")},
		TotalUnits:   1234,
		TotalRevenue: 5000,
		RecordCount:  1500,
	})
	assert.Equal(t, "📊 **Performance of CLARO** in January 2025:\n\n"+
		"• **Total units:** 1,234\n"+
		"• **Total revenue:** S/ 5,000.00\n"+
		"• **Records analyzed:** 1,500", got)

	global := f.Performance(Performance{Scope: Scope{}, TotalUnits: 1, TotalRevenue: 2, RecordCount: 1})
	assert.True(t, strings.HasPrefix(global, "📊 **Global performance** across all periods:"))
}

func TestFormatNoData(t *testing.T) {
	f := NewFormatter("S/")
	r := resolver(t)

	got := f.Performance(Performance{Scope: Scope{Partner: "ATENTO", Period: r.Resolve("2024")}, Status: StatusNoData})
	assert.Equal(t, "❌ No data found for ATENTO in 2024.", got)

	got = f.Performance(Performance{Status: StatusNoData})
	assert.Equal(t, "❌ No data found for Global across all periods.", got)
}

func TestFormatPrediction(t *testing.T) {
	f := NewFormatter("$")
	r := resolver(t)
	scope := Scope{Partner: "CLARO", Period: r.Resolve("enero")}

	got := f.Prediction(Prediction{
		Scope:   scope,
		Units:   NewAttainment(100, 150),
		Revenue: NewAttainment(5000, 6000),
	})
	assert.Equal(t, "🎯 **Goal attainment forecast - CLARO** in January 2025:\n\n"+
		"**UNITS:**\n"+
		"• Achieved: 100 / Goal: 150\n"+
		"• Attainment: 66.7% → 🟡 Fair - In progress\n\n"+
		"**REVENUE:**\n"+
		"• Achieved: $ 5,000.00 / Goal: $ 6,000.00\n"+
		"• Attainment: 83.3% → 🟢 Good - Close to goal", got)

	partial := f.Prediction(Prediction{Scope: scope, Units: NewAttainment(100, 50), Revenue: NewAttainment(10, 0)})
	assert.Contains(t, partial, "• Attainment: 200.0% → 🟢 Excellent - Above goal")
	assert.Contains(t, partial, "• Attainment: no goal defined")

	assert.Equal(t, "❌ No goal defined for COS in January 2025.",
		f.Prediction(Prediction{Scope: Scope{Partner: "COS", Period: scope.Period}, Status: StatusNoGoal}))
	assert.Equal(t, "❌ No data found for COS in January 2025.",
		f.Prediction(Prediction{Scope: Scope{Partner: "COS", Period: scope.Period}, Status: StatusNoData}))
}

func TestFormatComparison(t *testing.T) {
	f := NewFormatter("S/")
	c := Comparison{
		Partner: "NEXA",
		Window:  "2025",
		Slices: []Slice{
			{Label: "January", Units: 10, Revenue: 100},
			{Label: "March", Units: 30, Revenue: 50},
		},
		BestUnits:   1,
		BestRevenue: 0,
	}
	assert.Equal(t, "🆚 **Period comparison - NEXA (2025)**:\n\n"+
		"**January:**\n• Units: 10\n• Revenue: S/ 100.00\n\n"+
		"**March:**\n• Units: 30\n• Revenue: S/ 50.00\n\n"+
		"**SUMMARY:**\n"+
		"• Best in units: March (30)\n"+
		"• Best in revenue: January (S/ 100.00)", f.Comparison(c))

	insufficient := f.Comparison(Comparison{Window: "2024 vs 2025", Status: StatusInsufficientData})
	assert.Equal(t, "❌ Not enough data from different periods to compare for Global (2024 vs 2025).", insufficient)
}

func TestFormatQuickStats(t *testing.T) {
	f := NewFormatter("S/")
	assert.Equal(t, "📈 Stats: 3 units, S/ 30.00 revenue, 2 campaigns",
		f.QuickStats(QuickStats{Units: 3, Revenue: 30, Campaigns: 2, Records: 2}))
	assert.Equal(t, "📈 Stats: 1 units, S/ 1.00 revenue, 1 campaign",
		f.QuickStats(QuickStats{Units: 1, Revenue: 1, Campaigns: 1, Records: 1}))
	assert.Equal(t, "❌ No data available.", f.QuickStats(QuickStats{}))
}

func TestFixedMessages(t *testing.T) {
	assert.True(t, strings.HasPrefix(Dashboard(), GlyphReport))
	assert.True(t, strings.HasPrefix(Help(), GlyphHelp))
	assert.Contains(t, Help(), "Goal attainment")
	for _, b := range []Bucket{Critical, Fair, Good, Excellent} {
		assert.NotEmpty(t, BucketLabel(b))
	}
}
