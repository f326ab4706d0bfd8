// Package engine answers a caller's question: it classifies the intent,
// pins the partner the caller may see, and renders the matching report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"aliados/internal/intent"
	"aliados/internal/logger"
	"aliados/internal/models"
	"aliados/internal/partners"
	"aliados/internal/report"
)

// Answer is a rendered reply plus what was resolved to produce it.
type Answer struct {
	Text       string `json:"content"`
	Intent     string `json:"intent"`
	Outcome    string `json:"outcome"`
	Partner    string `json:"partner,omitempty"`
	Period     string `json:"period,omitempty"`
	IncidentID string `json:"incident_id,omitempty"`
}

// Observer is notified of every answer.
type Observer interface {
	ObserveAnswer(intent, outcome string, elapsed time.Duration)
}

// Options holds the collaborators of an Engine.
type Options struct {
	Classifier intent.Classifier
	Directory  *partners.Directory
	Reports    *report.Generator
	Formatter  report.Formatter
	Logger     logger.Logger
	Observer   Observer
}

// Engine is safe for concurrent use; it holds no per-request state.
type Engine struct {
	classifier intent.Classifier
	directory  *partners.Directory
	reports    *report.Generator
	formatter  report.Formatter
	log        logger.Logger
	observer   Observer
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Classifier == nil:
		return nil, errors.New("engine: classifier is required")
	case opts.Directory == nil:
		return nil, errors.New("engine: partner directory is required")
	case opts.Reports == nil:
		return nil, errors.New("engine: report generator is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	f := opts.Formatter
	if f.Currency == "" {
		f = report.NewFormatter("")
	}
	return &Engine{
		classifier: opts.Classifier,
		directory:  opts.Directory,
		reports:    opts.Reports,
		formatter:  f,
		log:        log.With(map[string]interface{}{"component": "engine"}),
		observer:   opts.Observer,
	}, nil
}

// Directory returns the partner directory.
func (e *Engine) Directory() *partners.Directory { return e.directory }

// Respond answers question for caller and returns the text only.
func (e *Engine) Respond(ctx context.Context, question string, caller *models.Identity) string {
	return e.Answer(ctx, question, caller).Text
}

// Answer answers question for caller. It never panics: unexpected failures
// are logged with an incident id and turned into an apology.
func (e *Engine) Answer(ctx context.Context, question string, caller *models.Identity) (ans Answer) {
	start := time.Now()
	ans.Intent = intent.Unknown.String()
	defer func() {
		if r := recover(); r != nil {
			ans = e.incident(ans, caller, r)
		}
		if e.observer != nil {
			e.observer.ObserveAnswer(ans.Intent, ans.Outcome, time.Since(start))
		}
	}()

	if caller == nil {
		ans.Text = AuthPrompt()
		ans.Outcome = models.OutcomeForbidden
		return ans
	}
	partner, ok := e.PartnerFor(question, caller)
	if !ok {
		ans.Text = Unlinked()
		ans.Outcome = models.OutcomeForbidden
		return ans
	}
	ans.Partner = partner

	in := e.classifier.Classify(ctx, question)
	ans.Intent = in.String()

	switch in {
	case intent.Performance:
		p := e.reports.Performance(partner, question)
		ans.Period = p.Scope.Period.Describe()
		ans.Outcome = outcome(p.Status)
		ans.Text = e.formatter.Performance(p)
	case intent.Prediction:
		p := e.reports.Prediction(partner, question)
		ans.Period = p.Scope.Period.Describe()
		ans.Outcome = outcome(p.Status)
		ans.Text = e.formatter.Prediction(p)
	case intent.Comparison:
		c := e.reports.Comparison(partner, question)
		ans.Period = c.Window
		ans.Outcome = outcome(c.Status)
		ans.Text = e.formatter.Comparison(c)
	case intent.Dashboard:
		ans.Outcome = models.OutcomeInfo
		ans.Text = report.Dashboard()
	case intent.Unknown:
		ans.Outcome = models.OutcomeUnrecognized
		ans.Text = report.Help()
	default:
		panic(fmt.Sprintf("unhandled intent %d", in))
	}
	return ans
}

// PartnerFor returns the partner a question is scoped to. Admins get the
// partner named in the question, or "" for every partner. Everyone else
// is pinned to their home partner whatever the question says; ok is false
// when they have none.
func (e *Engine) PartnerFor(question string, caller *models.Identity) (partner string, ok bool) {
	if caller.IsAdmin() {
		return e.directory.Detect(question), true
	}
	home := strings.TrimSpace(caller.HomePartner)
	if home == "" {
		return "", false
	}
	return partners.Canonical(home), true
}

// QuickStats returns the activity summary visible to caller. Admins may
// name any partner, or none for every partner.
func (e *Engine) QuickStats(caller *models.Identity, partner string) (report.QuickStats, string, error) {
	if caller == nil {
		return report.QuickStats{}, "", ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		home, ok := e.PartnerFor("", caller)
		if !ok {
			return report.QuickStats{}, "", ErrUnlinked
		}
		partner = home
	} else if partner != "" {
		partner = partners.Canonical(partner)
	}
	q := e.reports.QuickStats(partner)
	return q, e.formatter.QuickStats(q), nil
}

// Sizes returns the number of activity and goal records loaded.
func (e *Engine) Sizes() (activity, goals int) {
	return e.reports.Sizes()
}

func (e *Engine) incident(ans Answer, caller *models.Identity, cause interface{}) Answer {
	id := uuid.NewString()
	username := ""
	if caller != nil {
		username = caller.Username
	}
	e.log.Error("answer failed", map[string]interface{}{
		"incident_id": id,
		"username":    username,
		"intent":      ans.Intent,
		"panic":       fmt.Sprint(cause),
		"stack":       string(debug.Stack()),
	})
	return Answer{
		Text:       Apology(id),
		Intent:     ans.Intent,
		Outcome:    models.OutcomeInternalError,
		Partner:    ans.Partner,
		IncidentID: id,
	}
}

func outcome(s report.Status) string {
	switch s {
	case report.StatusNoData:
		return models.OutcomeNoData
	case report.StatusNoGoal:
		return models.OutcomeNoGoal
	case report.StatusInsufficientData:
		return models.OutcomeInsufficientData
	default:
		return models.OutcomeAnswered
	}
}
