package jobs

import (
	"context"
	"sync"
	"time"

	"aliados/internal/logger"
)

// IntentStatWriter persists answer counters.
type IntentStatWriter interface {
	IncrementIntentStat(ctx context.Context, intent, outcome string, delta int64) error
}

type statKey struct {
	intent  string
	outcome string
}

// StatsFlusher batches answer counts in memory and writes them to the
// database on a fixed interval.
type StatsFlusher struct {
	writer   IntentStatWriter
	interval time.Duration
	log      logger.Logger

	mu      sync.Mutex
	pending map[statKey]int64
}

// NewStatsFlusher creates a new stats flusher.
func NewStatsFlusher(writer IntentStatWriter, interval time.Duration, log logger.Logger) *StatsFlusher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &StatsFlusher{
		writer:   writer,
		interval: interval,
		log:      log.With(map[string]interface{}{"component": "stats_flusher"}),
		pending:  make(map[statKey]int64),
	}
}

// Add counts one answer.
func (f *StatsFlusher) Add(intent, outcome string) {
	f.mu.Lock()
	f.pending[statKey{intent, outcome}]++
	f.mu.Unlock()
}

// Start flushes every interval until ctx is done, then flushes once more.
func (f *StatsFlusher) Start(ctx context.Context) {
	f.log.Info("stats flusher started", map[string]interface{}{"interval": f.interval.String()})

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is done; the final flush needs its own deadline.
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			f.Flush(final)
			cancel()
			f.log.Info("stats flusher stopped", nil)
			return
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush writes every pending count. Counts that fail to write are kept for
// the next flush. It returns the number of counters written.
func (f *StatsFlusher) Flush(ctx context.Context) int {
	f.mu.Lock()
	batch := f.pending
	f.pending = make(map[statKey]int64, len(batch))
	f.mu.Unlock()

	written := 0
	for k, delta := range batch {
		if err := f.writer.IncrementIntentStat(ctx, k.intent, k.outcome, delta); err != nil {
			f.log.Warn("failed to write answer counter", map[string]interface{}{
				"intent":  k.intent,
				"outcome": k.outcome,
				"error":   err.Error(),
			})
			f.mu.Lock()
			f.pending[k] += delta
			f.mu.Unlock()
			continue
		}
		written++
	}
	return written
}
