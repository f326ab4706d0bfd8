package metrics

import (
	"context"
	"sort"
	"sync"
	"time"

	"aliados/internal/models"
)

// MemoryStats keeps answer counters in process when no database is
// configured. It is both the sink and the source of the collector.
type MemoryStats struct {
	mu    sync.Mutex
	stats map[[2]string]*models.IntentStat
}

// NewMemoryStats creates an empty counter set.
func NewMemoryStats() *MemoryStats {
	return &MemoryStats{stats: make(map[[2]string]*models.IntentStat)}
}

// Add counts one answer.
func (m *MemoryStats) Add(intent, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{intent, outcome}
	s, ok := m.stats[key]
	if !ok {
		s = &models.IntentStat{Intent: intent, Outcome: outcome}
		m.stats[key] = s
	}
	s.Count++
	s.LastSeenAt = time.Now()
}

// GetAllIntentStats returns a snapshot ordered by intent then outcome.
func (m *MemoryStats) GetAllIntentStats(context.Context) ([]models.IntentStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.IntentStat, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Intent != out[j].Intent {
			return out[i].Intent < out[j].Intent
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}
