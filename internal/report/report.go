// Package report aggregates filtered datasets into performance, goal
// attainment and period comparison results. Results are plain values;
// rendering them as text lives in format.go.
package report

import (
	"math"

	"aliados/internal/dataset"
	"aliados/internal/period"
)

// Status tells a usable result apart from the recoverable empty cases.
type Status int

const (
	StatusOK Status = iota
	StatusNoData
	StatusNoGoal
	StatusInsufficientData
)

func (s Status) String() string {
	switch s {
	case StatusNoData:
		return "no_data"
	case StatusNoGoal:
		return "no_goal"
	case StatusInsufficientData:
		return "insufficient_data"
	default:
		return "ok"
	}
}

// Scope is the partner and period a result refers to. An empty Partner
// means every partner.
type Scope struct {
	Partner string
	Period  period.Filter
}

// Global reports whether the scope covers every partner.
func (s Scope) Global() bool { return s.Partner == "" }

// Subject names the partner, or "Global".
func (s Scope) Subject() string {
	if s.Global() {
		return "Global"
	}
	return s.Partner
}

// Performance is the summed activity of a scope.
type Performance struct {
	Scope        Scope
	Status       Status
	TotalUnits   float64
	TotalRevenue float64
	RecordCount  int
}

// ComputePerformance sums activity, which must already be filtered to
// scope. An empty selection yields StatusNoData, never a zero total.
func ComputePerformance(scope Scope, activity *dataset.Dataset) Performance {
	p := Performance{Scope: scope}
	if activity.Empty() {
		p.Status = StatusNoData
		return p
	}
	t := activity.Totals()
	p.TotalUnits = t.Units
	p.TotalRevenue = t.Revenue
	p.RecordCount = t.Records
	return p
}

// Bucket is an attainment severity, ordered from worst to best.
type Bucket int

const (
	Critical Bucket = iota
	Fair
	Good
	Excellent
)

func (b Bucket) String() string {
	switch b {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Fair:
		return "fair"
	default:
		return "critical"
	}
}

// Thresholds are the lowest ratios, in percent, of each bucket above
// Critical.
const (
	ExcellentThreshold = 90.0
	GoodThreshold      = 80.0
	FairThreshold      = 60.0
)

// Classify buckets an attainment percentage. Every value has a bucket:
// anything above 100 is Excellent, anything negative or NaN is Critical.
func Classify(ratio float64) Bucket {
	switch {
	case math.IsNaN(ratio):
		return Critical
	case ratio >= ExcellentThreshold:
		return Excellent
	case ratio >= GoodThreshold:
		return Good
	case ratio >= FairThreshold:
		return Fair
	default:
		return Critical
	}
}

// Attainment compares one achieved metric with its goal. Ratio and Bucket
// are only meaningful when Defined, which requires a positive target.
type Attainment struct {
	Achieved float64
	Target   float64
	Defined  bool
	Ratio    float64
	Bucket   Bucket
}

// NewAttainment computes achieved/target as a percentage.
func NewAttainment(achieved, target float64) Attainment {
	a := Attainment{Achieved: achieved, Target: target}
	if target > 0 {
		a.Defined = true
		a.Ratio = achieved / target * 100
		a.Bucket = Classify(a.Ratio)
	}
	return a
}

// Prediction is the goal attainment of a scope for units and revenue.
type Prediction struct {
	Scope           Scope
	Status          Status
	Units           Attainment
	Revenue         Attainment
	ActivityRecords int
	GoalRecords     int
}

// ComputePrediction compares activity against goals, both already
// filtered to the same scope. Missing goals take precedence over missing
// activity: with no positive target there is nothing to predict against.
// Each metric is judged on its own target, so a units goal without a
// revenue goal still answers, with the revenue attainment undefined.
func ComputePrediction(scope Scope, activity, goals *dataset.Dataset) Prediction {
	achieved := activity.Totals()
	target := goals.Totals()
	p := Prediction{
		Scope:           scope,
		Units:           NewAttainment(achieved.Units, target.Units),
		Revenue:         NewAttainment(achieved.Revenue, target.Revenue),
		ActivityRecords: achieved.Records,
		GoalRecords:     target.Records,
	}
	switch {
	case !p.Units.Defined && !p.Revenue.Defined:
		p.Status = StatusNoGoal
	case activity.Empty():
		p.Status = StatusNoData
	}
	return p
}

// Slice is one period of a comparison.
type Slice struct {
	Label   string
	Filter  period.Filter
	Units   float64
	Revenue float64
	Records int
}

// Comparison lists per-period totals and the best period per metric.
type Comparison struct {
	Partner string
	// Window describes the compared periods, such as "2025" or "2024 vs 2025".
	Window      string
	Status      Status
	Slices      []Slice
	BestUnits   int
	BestRevenue int
}

// Subject names the partner, or "Global".
func (c Comparison) Subject() string {
	return Scope{Partner: c.Partner}.Subject()
}

// ComputeComparison totals activity, already filtered to the partner,
// within each candidate period. Empty periods are dropped. Fewer than two
// remaining periods yields StatusInsufficientData. On equal totals the
// earliest candidate is best.
func ComputeComparison(partner, window string, activity *dataset.Dataset, candidates []period.Filter) Comparison {
	c := Comparison{Partner: partner, Window: window, BestUnits: -1, BestRevenue: -1}
	for _, f := range candidates {
		slice := dataset.Apply(activity, nil, f)
		if slice.Empty() {
			continue
		}
		t := slice.Totals()
		c.Slices = append(c.Slices, Slice{
			Label:   f.Label(),
			Filter:  f,
			Units:   t.Units,
			Revenue: t.Revenue,
			Records: t.Records,
		})
	}
	if len(c.Slices) < 2 {
		c.Status = StatusInsufficientData
		return c
	}
	c.BestUnits, c.BestRevenue = 0, 0
	for i, s := range c.Slices {
		if s.Units > c.Slices[c.BestUnits].Units {
			c.BestUnits = i
		}
		if s.Revenue > c.Slices[c.BestRevenue].Revenue {
			c.BestRevenue = i
		}
	}
	return c
}

// QuickStats summarizes a partner's activity without any period filter.
type QuickStats struct {
	Partner   string
	Units     float64
	Revenue   float64
	Campaigns int
	Records   int
}

// ComputeQuickStats totals activity, already filtered to the partner.
func ComputeQuickStats(partner string, activity *dataset.Dataset) QuickStats {
	t := activity.Totals()
	return QuickStats{
		Partner:   partner,
		Units:     t.Units,
		Revenue:   t.Revenue,
		Campaigns: activity.DistinctLabels(),
		Records:   t.Records,
	}
}
