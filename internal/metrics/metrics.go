package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"aliados/internal/logger"
	"aliados/internal/models"
)

var questionsDesc = prometheus.NewDesc(
	"aliados_questions_total",
	"Total questions answered by intent and outcome",
	[]string{"intent", "outcome"},
	nil,
)

// StatsSource returns the persisted answer counters.
type StatsSource interface {
	GetAllIntentStats(ctx context.Context) ([]models.IntentStat, error)
}

// AnswerSink accumulates one count per answer.
type AnswerSink interface {
	Add(intent, outcome string)
}

// QuestionCollector is a custom Prometheus collector that reads answer
// counts from the stats source on each scrape.
type QuestionCollector struct {
	source StatsSource
	log    logger.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *QuestionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- questionsDesc
}

// Collect emits every stored counter.
func (c *QuestionCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.source.GetAllIntentStats(ctx)
	if err != nil {
		c.log.Error("failed to collect question metrics", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, s := range stats {
		ch <- prometheus.MustNewConstMetric(
			questionsDesc,
			prometheus.CounterValue,
			float64(s.Count),
			s.Intent,
			s.Outcome,
		)
	}
}

// Recorder observes answers and logins. It implements engine.Observer.
type Recorder struct {
	sink     AnswerSink
	duration *prometheus.HistogramVec
	logins   *prometheus.CounterVec
}

// NewRecorder registers the question collector and the answer and login
// metrics with reg.
func NewRecorder(reg prometheus.Registerer, source StatsSource, sink AnswerSink, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	factory := promauto.With(reg)
	reg.MustRegister(&QuestionCollector{source: source, log: log.With(map[string]interface{}{"component": "metrics"})})

	return &Recorder{
		sink: sink,
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aliados_answer_duration_seconds",
				Help:    "Time spent producing an answer",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"intent"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aliados_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveAnswer records one answer.
func (r *Recorder) ObserveAnswer(intent, outcome string, elapsed time.Duration) {
	r.duration.WithLabelValues(intent).Observe(elapsed.Seconds())
	if r.sink != nil {
		r.sink.Add(intent, outcome)
	}
}

// ObserveLogin records one login attempt.
func (r *Recorder) ObserveLogin(result string) {
	r.logins.WithLabelValues(result).Inc()
}
