package numerator

import (
	"context"
	"sync"
	"time"
)

// MockGenerator is an in-memory Generator for unit tests.
// Without NextFunc it counts per scheme period, starting at 1.
type MockGenerator struct {
	NextFunc func(ctx context.Context, scheme Scheme, at time.Time) (string, error)

	mu       sync.Mutex
	counters map[string]int64
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, scheme Scheme, at time.Time) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, scheme, at)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	key := scheme.DocumentType + ":" + scheme.PeriodKey(at)
	m.counters[key]++
	return scheme.Format(at, m.counters[key]), nil
}

var _ Generator = (*MockGenerator)(nil)
