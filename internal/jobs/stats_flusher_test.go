package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu     sync.Mutex
	counts map[statKey]int64
	fail   bool
}

func (w *memWriter) IncrementIntentStat(_ context.Context, intent, outcome string, delta int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("write failed")
	}
	if w.counts == nil {
		w.counts = map[statKey]int64{}
	}
	w.counts[statKey{intent, outcome}] += delta
	return nil
}

func (w *memWriter) get(intent, outcome string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[statKey{intent, outcome}]
}

func TestFlushBatches(t *testing.T) {
	w := &memWriter{}
	f := NewStatsFlusher(w, time.Hour, nil)

	f.Add("performance", "answered")
	f.Add("performance", "answered")
	f.Add("unknown", "unrecognized")

	assert.Equal(t, 2, f.Flush(context.Background()))
	assert.Equal(t, int64(2), w.get("performance", "answered"))
	assert.Equal(t, int64(1), w.get("unknown", "unrecognized"))

	assert.Zero(t, f.Flush(context.Background()))
}

func TestFlushKeepsFailedCounts(t *testing.T) {
	w := &memWriter{fail: true}
	f := NewStatsFlusher(w, time.Hour, nil)

	f.Add("comparison", "answered")
	assert.Zero(t, f.Flush(context.Background()))

	w.mu.Lock()
	w.fail = false
	w.mu.Unlock()
	f.Add("comparison", "answered")

	assert.Equal(t, 1, f.Flush(context.Background()))
	assert.Equal(t, int64(2), w.get("comparison", "answered"))
}

func TestStartFlushesOnShutdown(t *testing.T) {
	w := &memWriter{}
	f := NewStatsFlusher(w, time.Hour, nil)
	f.Add("dashboard", "info")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("flusher did not stop")
	}
	require.Equal(t, int64(1), w.get("dashboard", "info"))
}

func TestConcurrentAdd(t *testing.T) {
	w := &memWriter{}
	f := NewStatsFlusher(w, time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Add("prediction", "answered")
		}()
	}
	wg.Wait()

	f.Flush(context.Background())
	assert.Equal(t, int64(50), w.get("prediction", "answered"))
}
