package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"aliados/internal/dataset"
	"aliados/internal/intent"
	"aliados/internal/logger"
	"aliados/internal/models"
	"aliados/internal/partners"
	"aliados/internal/period"
	"aliados/internal/report"
)

var (
	admin  = &models.Identity{Username: "root", Role: models.RoleAdmin}
	atento = &models.Identity{Username: "atento", Role: models.RolePartner, HomePartner: "ATENTO"}
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveAnswer(in, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, in+"/"+outcome)
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(context.Context, string) intent.Intent {
	panic("boom")
}

func newEngine(t *testing.T, activity, goals []dataset.Record, opts ...func(*Options)) *Engine {
	t.Helper()
	res, err := period.NewResolver([]int{2024, 2025})
	require.NoError(t, err)
	dir := partners.Default()
	o := Options{
		Classifier: intent.NewKeywordClassifier(intent.DefaultTable()),
		Directory:  dir,
		Reports: report.NewGenerator(report.Config{
			Directory: dir,
			Resolver:  res,
			Activity:  dataset.New(dataset.Activity, activity),
			Goals:     dataset.New(dataset.Goal, goals),
		}),
		Formatter: report.NewFormatter("S/"),
		Logger:    logger.NewNoOpLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	e, err := New(o)
	require.NoError(t, err)
	return e
}

func sampleActivity() []dataset.Record {
	return []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 100, Revenue: 5000},
		{CampaignLabel: "COS WHATSAPP", Period: "2025-01", Units: 40, Revenue: 400},
		{CampaignLabel: "COS WHATSAPP", Period: "2025-02", Units: 60, Revenue: 600},
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestScenarioPerformanceForAdmin(t *testing.T) {
	e := newEngine(t, []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 100, Revenue: 5000},
	}, nil)

	ans := e.Answer(context.Background(), "how did CLARO do in january", admin)
	assert.Equal(t, "performance", ans.Intent)
	assert.Equal(t, models.OutcomeAnswered, ans.Outcome)
	assert.Equal(t, "CLARO", ans.Partner)
	assert.Equal(t, "January 2025", ans.Period)
	assert.Contains(t, ans.Text, "**Performance of CLARO** in January 2025")
	assert.Contains(t, ans.Text, "**Total units:** 100\n")
	assert.Contains(t, ans.Text, "**Total revenue:** S/ 5,000.00")
}

func TestScenarioNoGoalDefined(t *testing.T) {
	e := newEngine(t, sampleActivity(), []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 150, Revenue: 6000},
	})

	ans := e.Answer(context.Background(), "will COS meet the goal in january?", admin)
	assert.Equal(t, "prediction", ans.Intent)
	assert.Equal(t, models.OutcomeNoGoal, ans.Outcome)
	assert.Equal(t, "❌ No goal defined for COS in January 2025.", ans.Text)
}

func TestScenarioPartnerCannotWidenScope(t *testing.T) {
	e := newEngine(t, sampleActivity(), nil)

	for _, q := range []string{"how did CLARO do in january", "sales of COS", "global sales"} {
		ans := e.Answer(context.Background(), q, atento)
		assert.Equal(t, "ATENTO", ans.Partner, q)
		assert.NotContains(t, ans.Text, "CLARO", q)
	}

	ans := e.Answer(context.Background(), "how did CLARO do in january", atento)
	assert.Contains(t, ans.Text, "**Performance of ATENTO** in January 2025")
	assert.Contains(t, ans.Text, "**Total units:** 100\n")
}

func TestScenarioUnrecognized(t *testing.T) {
	e := newEngine(t, sampleActivity(), nil)
	for _, q := range []string{"", "   ", "\t\n", "asdf qwerty", "🙂", strings.Repeat("x", 5000)} {
		ans := e.Answer(context.Background(), q, admin)
		assert.Equal(t, models.OutcomeUnrecognized, ans.Outcome, "%q", q)
		assert.Equal(t, report.Help(), ans.Text)
	}
}

func TestAnswerPaths(t *testing.T) {
	e := newEngine(t, sampleActivity(), []dataset.Record{
		{CampaignLabel: "COS WHATSAPP", Period: "2025-01", Units: 50, Revenue: 500},
	})
	ctx := context.Background()

	tests := []struct {
		name     string
		question string
		caller   *models.Identity
		intent   string
		outcome  string
		prefix   string
	}{
		{"no identity", "sales", nil, "unknown", models.OutcomeForbidden, report.GlyphAuth},
		{"unlinked partner", "sales", &models.Identity{Username: "x", Role: models.RolePartner}, "unknown", models.OutcomeForbidden, report.GlyphError},
		{"dashboard", "open the dashboard", admin, "dashboard", models.OutcomeInfo, report.GlyphReport},
		{"prediction", "will COS meet the goal in january", admin, "prediction", models.OutcomeAnswered, report.GlyphPrediction},
		{"comparison", "compare COS months", admin, "comparison", models.OutcomeAnswered, report.GlyphComparison},
		{"insufficient comparison", "compare ATENTO", admin, "comparison", models.OutcomeInsufficientData, report.GlyphError},
		{"no data", "sales of NEXA", admin, "performance", models.OutcomeNoData, report.GlyphError},
		{"global", "sales 2025", admin, "performance", models.OutcomeAnswered, report.GlyphReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := e.Answer(ctx, tt.question, tt.caller)
			assert.Equal(t, tt.intent, ans.Intent)
			assert.Equal(t, tt.outcome, ans.Outcome)
			assert.True(t, strings.HasPrefix(ans.Text, tt.prefix), ans.Text)
			assert.Equal(t, ans.Text, e.Respond(ctx, tt.question, tt.caller))
		})
	}
}

func TestAnswerRecoversAndLogsIncident(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := &recordingObserver{}
	e := newEngine(t, sampleActivity(), nil, func(o *Options) {
		o.Classifier = panickingClassifier{}
		o.Logger = logger.NewZapAdapter(zap.New(core))
		o.Observer = rec
	})

	var ans Answer
	require.NotPanics(t, func() {
		ans = e.Answer(context.Background(), "sales", admin)
	})
	assert.Equal(t, models.OutcomeInternalError, ans.Outcome)
	require.NotEmpty(t, ans.IncidentID)
	assert.Equal(t, Apology(ans.IncidentID), ans.Text)

	entries := logs.FilterMessage("answer failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, ans.IncidentID, entries[0].ContextMap()["incident_id"])
	assert.Equal(t, "boom", entries[0].ContextMap()["panic"])
	assert.Equal(t, []string{"unknown/internal_error"}, rec.outcomes)
}

func TestObserverSeesEveryAnswer(t *testing.T) {
	rec := &recordingObserver{}
	e := newEngine(t, sampleActivity(), nil, func(o *Options) { o.Observer = rec })

	e.Respond(context.Background(), "sales", admin)
	e.Respond(context.Background(), "hola", admin)
	e.Respond(context.Background(), "sales", nil)
	assert.Equal(t, []string{"performance/answered", "unknown/unrecognized", "unknown/forbidden"}, rec.outcomes)
}

func TestQuickStats(t *testing.T) {
	e := newEngine(t, sampleActivity(), nil)

	q, text, err := e.QuickStats(atento, "COS")
	require.NoError(t, err)
	assert.Equal(t, "ATENTO", q.Partner)
	assert.Equal(t, 100.0, q.Units)
	assert.True(t, strings.HasPrefix(text, report.GlyphStats))

	q, _, err = e.QuickStats(admin, "cos")
	require.NoError(t, err)
	assert.Equal(t, "COS", q.Partner)
	assert.Equal(t, 100.0, q.Units)

	q, _, err = e.QuickStats(admin, "")
	require.NoError(t, err)
	assert.Equal(t, 200.0, q.Units)

	_, _, err = e.QuickStats(nil, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = e.QuickStats(&models.Identity{Role: models.RolePartner}, "")
	assert.ErrorIs(t, err, ErrUnlinked)
}

func TestAnswerConcurrent(t *testing.T) {
	e := newEngine(t, sampleActivity(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ans := e.Answer(context.Background(), "how did COS do in february", admin)
			assert.Contains(t, ans.Text, "**Total units:** 60\n")
		}()
	}
	wg.Wait()
}

func TestMessages(t *testing.T) {
	assert.True(t, strings.HasPrefix(AuthPrompt(), report.GlyphAuth))
	assert.Equal(t, "✅ Hello CLARO! You can now ask me about performance, goal attainment or period comparisons.", Greeting("CLARO"))
	assert.True(t, strings.HasPrefix(Unlinked(), report.GlyphError))
}
