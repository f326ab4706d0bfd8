package report

import (
	"strconv"
	"strings"

	"aliados/internal/dataset"
	"aliados/internal/partners"
	"aliados/internal/period"
)

// DefaultComparisonMonths is how many months of a year are compared when
// the question names fewer than two periods.
const DefaultComparisonMonths = 12

// Generator resolves a question's period, filters both datasets to the
// same partner and period, and computes results. It holds only immutable
// state and is safe for concurrent use.
type Generator struct {
	directory        *partners.Directory
	resolver         *period.Resolver
	activity         *dataset.Dataset
	goals            *dataset.Dataset
	comparisonMonths int
}

// Config holds the collaborators of a Generator.
type Config struct {
	Directory        *partners.Directory
	Resolver         *period.Resolver
	Activity         *dataset.Dataset
	Goals            *dataset.Dataset
	ComparisonMonths int
}

// NewGenerator creates a generator. Nil datasets are treated as empty.
func NewGenerator(cfg Config) *Generator {
	months := cfg.ComparisonMonths
	if months < 2 || months > 12 {
		months = DefaultComparisonMonths
	}
	activity, goals := cfg.Activity, cfg.Goals
	if activity == nil {
		activity = dataset.New(dataset.Activity, nil)
	}
	if goals == nil {
		goals = dataset.New(dataset.Goal, nil)
	}
	return &Generator{
		directory:        cfg.Directory,
		resolver:         cfg.Resolver,
		activity:         activity,
		goals:            goals,
		comparisonMonths: months,
	}
}

// Scope resolves the period of question for partner.
func (g *Generator) Scope(partner, question string) Scope {
	return Scope{Partner: partner, Period: g.resolver.Resolve(question)}
}

func (g *Generator) slice(ds *dataset.Dataset, scope Scope) *dataset.Dataset {
	var pf dataset.PeriodFilter
	if scope.Period.Constrained() {
		pf = scope.Period
	}
	return dataset.Apply(ds, g.directory.Selector(scope.Partner), pf)
}

// Performance answers a performance question.
func (g *Generator) Performance(partner, question string) Performance {
	scope := g.Scope(partner, question)
	return ComputePerformance(scope, g.slice(g.activity, scope))
}

// Prediction answers a goal attainment question.
func (g *Generator) Prediction(partner, question string) Prediction {
	scope := g.Scope(partner, question)
	return ComputePrediction(scope, g.slice(g.activity, scope), g.slice(g.goals, scope))
}

// Comparison answers a comparison question. The compared periods are, in
// order of preference: the years named when two or more are, the months
// named when two or more are, otherwise the first months of the named
// year (or the default year).
func (g *Generator) Comparison(partner, question string) Comparison {
	activity := g.directory.FilterByPartner(g.activity, partner)
	mentions := g.resolver.Mentions(question)

	year := g.resolver.DefaultYear()
	if len(mentions.Years) == 1 {
		year = mentions.Years[0]
	}

	var (
		candidates []period.Filter
		window     string
	)
	switch {
	case len(mentions.Years) >= 2:
		labels := make([]string, len(mentions.Years))
		for i, y := range mentions.Years {
			candidates = append(candidates, g.resolver.ForYear(y))
			labels[i] = strconv.Itoa(y)
		}
		window = strings.Join(labels, " vs ")
	case len(mentions.Months) >= 2:
		for _, m := range mentions.Months {
			candidates = append(candidates, g.resolver.ForMonth(year, m))
		}
		window = strconv.Itoa(year)
	default:
		for m := 1; m <= g.comparisonMonths; m++ {
			candidates = append(candidates, g.resolver.ForMonth(year, m))
		}
		window = strconv.Itoa(year)
	}
	return ComputeComparison(partner, window, activity, candidates)
}

// QuickStats totals everything known about partner, or every partner
// when partner is empty.
func (g *Generator) QuickStats(partner string) QuickStats {
	return ComputeQuickStats(partner, g.directory.FilterByPartner(g.activity, partner))
}

// Sizes returns the number of activity and goal records loaded.
func (g *Generator) Sizes() (activity, goals int) {
	return g.activity.Len(), g.goals.Len()
}

