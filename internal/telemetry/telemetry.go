package telemetry

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Publisher receives named numeric values, one call per key per tick.
type Publisher interface {
	PutNumber(key string, v float64)
}

// Table keeps the latest value of every key plus a bounded history. It may be
// read from another goroutine while a loop publishes into it.
type Table struct {
	mu       sync.RWMutex
	values   map[string]float64
	history  map[string][]float64
	capacity int
}

func NewTable(capacity int) *Table {
	return &Table{
		values:   make(map[string]float64),
		history:  make(map[string][]float64),
		capacity: capacity,
	}
}

func (t *Table) PutNumber(key string, v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = v
	if t.capacity <= 0 {
		return
	}
	h := append(t.history[key], v)
	if len(h) > t.capacity {
		h = h[len(h)-t.capacity:]
	}
	t.history[key] = h
}

func (t *Table) Get(key string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok
}

// History returns a copy of the retained values for key, oldest first.
func (t *Table) History(key string) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h := t.history[key]
	out := make([]float64, len(h))
	copy(out, h)
	return out
}

func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *Table) Snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// LogSink writes every published value as a debug log entry.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("telemetry")}
}

func (s *LogSink) PutNumber(key string, v float64) {
	s.logger.Debug("publish", zap.String("key", key), zap.Float64("value", v))
}

// Multi fans every value out to each publisher in order.
type Multi []Publisher

func (m Multi) PutNumber(key string, v float64) {
	for _, p := range m {
		p.PutNumber(key, v)
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) PutNumber(string, float64) {}
