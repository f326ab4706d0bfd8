package intent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"aliados/internal/logger"
	"aliados/internal/textnorm"
)

// DefaultThreshold is the minimum cosine similarity a keyword must exceed.
const DefaultThreshold = 0.3

// Embedder turns texts into vectors. The same text must always produce
// the same vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingClassifier picks the intent of the keyword most similar to the
// question, provided the similarity exceeds the threshold.
type EmbeddingClassifier struct {
	embedder  Embedder
	threshold float64
	keywords  []string
	intents   []Intent
	vectors   [][]float64
	fallback  Classifier
	log       logger.Logger
}

// NewEmbeddingClassifier embeds every keyword of table once up front. When
// the embedder fails on a question the keyword strategy answers instead.
func NewEmbeddingClassifier(ctx context.Context, embedder Embedder, table Table, threshold float64, log logger.Logger) (*EmbeddingClassifier, error) {
	kws, intents := table.keywords()
	if len(kws) == 0 {
		return nil, errors.New("keyword table is empty")
	}
	folded := make([]string, len(kws))
	for i, k := range kws {
		folded[i] = textnorm.Fold(k)
	}
	vectors, err := embedder.Embed(ctx, folded)
	if err != nil {
		return nil, fmt.Errorf("embedding keywords: %w", err)
	}
	if len(vectors) != len(kws) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d keywords", len(vectors), len(kws))
	}
	return &EmbeddingClassifier{
		embedder:  embedder,
		threshold: threshold,
		keywords:  kws,
		intents:   intents,
		vectors:   vectors,
		fallback:  NewKeywordClassifier(table),
		log:       log,
	}, nil
}

// Classify implements Classifier.
func (e *EmbeddingClassifier) Classify(ctx context.Context, question string) Intent {
	q := textnorm.Fold(strings.TrimSpace(question))
	if q == "" {
		return Unknown
	}
	vecs, err := e.embedder.Embed(ctx, []string{q})
	if err == nil && len(vecs) != 1 {
		err = fmt.Errorf("embedder returned %d vectors for 1 question", len(vecs))
	}
	if err != nil {
		e.log.Warn("question embedding failed, using keyword match", map[string]interface{}{
			"error": err.Error(),
		})
		return e.fallback.Classify(ctx, question)
	}

	best, bestScore := -1, 0.0
	for i, v := range e.vectors {
		score := CosineSimilarity(vecs[0], v)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore <= e.threshold {
		return Unknown
	}
	e.log.Debug("intent classified", map[string]interface{}{
		"intent":  e.intents[best].String(),
		"keyword": e.keywords[best],
		"score":   bestScore,
	})
	return e.intents[best]
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when their lengths differ or either is a zero vector.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, aMag, bMag float64
	for i := range a {
		dot += a[i] * b[i]
		aMag += a[i] * a[i]
		bMag += b[i] * b[i]
	}
	if aMag == 0 || bMag == 0 {
		return 0
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag))
}
