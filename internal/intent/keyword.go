package intent

import (
	"context"

	"aliados/internal/textnorm"
)

// KeywordClassifier matches whole-word keywords, ignoring accents and case.
type KeywordClassifier struct {
	table Table
}

// NewKeywordClassifier creates a classifier over table.
func NewKeywordClassifier(table Table) *KeywordClassifier {
	return &KeywordClassifier{table: table}
}

// Classify returns the first category in table order with a keyword in
// question, or Unknown.
func (k *KeywordClassifier) Classify(_ context.Context, question string) Intent {
	tokens := textnorm.Tokens(question)
	for _, c := range k.table {
		for _, kw := range c.Keywords {
			if textnorm.ContainsPhrase(tokens, kw) {
				return c.Intent
			}
		}
	}
	return Unknown
}
