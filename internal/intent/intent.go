// Package intent classifies free-text questions into the closed set of
// things the engine can answer.
package intent

import (
	"context"
	"fmt"
	"strings"
)

// Intent is what a question asks for.
type Intent int

const (
	Unknown Intent = iota
	Performance
	Prediction
	Comparison
	Dashboard
)

var names = [...]string{
	Unknown:     "unknown",
	Performance: "performance",
	Prediction:  "prediction",
	Comparison:  "comparison",
	Dashboard:   "dashboard",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(names) {
		return names[Unknown]
	}
	return names[i]
}

// Parse returns the intent named s.
func Parse(s string) (Intent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Intent(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown intent %q", s)
}

// Classifier maps a question to an intent. Implementations must return the
// same intent for the same question and keyword table.
type Classifier interface {
	Classify(ctx context.Context, question string) Intent
}

// Category is one row of the keyword table.
type Category struct {
	Intent   Intent
	Keywords []string
}

// Table is an ordered keyword table. Order matters: the keyword strategy
// returns the first category with a match, and the embedding strategy
// breaks score ties in favour of the earlier keyword.
type Table []Category

// Entry is a keyword table row as written in the directory file.
type Entry struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// ParseTable converts directory file entries into a table.
func ParseTable(entries []Entry) (Table, error) {
	t := make(Table, 0, len(entries))
	for _, e := range entries {
		in, err := Parse(e.Intent)
		if err != nil {
			return nil, err
		}
		if in == Unknown {
			return nil, fmt.Errorf("intent %q cannot have keywords", e.Intent)
		}
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("intent %q has no keywords", e.Intent)
		}
		t = append(t, Category{Intent: in, Keywords: append([]string(nil), e.Keywords...)})
	}
	return t, nil
}

// DefaultTable returns the built-in table. Dashboard and comparison come
// first because their questions usually also contain performance words
// ("export the sales", "compare sales").
func DefaultTable() Table {
	return Table{
		{Dashboard, []string{
			"dashboard", "power bi", "archivo para power bi", "exportar a power bi", "exportar",
			"visualizacion", "export", "visualization", "chart",
		}},
		{Comparison, []string{
			"versus", "vs", "comparar", "compara", "comparacion", "comparativo", "diferencia",
			"mejor periodo", "compare", "comparison", "difference", "better period", "best period",
		}},
		{Prediction, []string{
			"prediccion", "predecir", "cumplira", "va a cumplir", "cerca de la meta", "lejos de la meta",
			"pronostico", "proyeccion", "cumplimiento", "meta", "prediction", "predict", "forecast",
			"will meet", "will reach", "meet the goal", "reach the goal", "near the goal", "far from the goal",
			"goal", "target", "attainment",
		}},
		{Performance, []string{
			"desempeno", "rendimiento", "eficiencia", "como le fue", "resultado", "resultados", "ventas",
			"altas", "ingresos", "performance", "efficiency", "result", "results", "sales", "signups",
			"revenue", "how did",
		}},
	}
}

// keywords flattens the table, keeping table order.
func (t Table) keywords() ([]string, []Intent) {
	var kws []string
	var intents []Intent
	for _, c := range t {
		for _, k := range c.Keywords {
			kws = append(kws, k)
			intents = append(intents, c.Intent)
		}
	}
	return kws, intents
}
