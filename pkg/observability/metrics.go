package observability

import (
	"sync"
	"time"
)

// Metric names.
const (
	MetricCalendarRequests    = "calendar.list.requests"
	MetricCalendarDuration    = "calendar.list.duration"
	MetricOccurrencesExpanded = "calendar.occurrences.expanded"
	MetricCacheHit            = "calendar.cache.hit"
	MetricCacheMiss           = "calendar.cache.miss"
	MetricSeriesCreated       = "calendar.series.created"
	MetricOutboxPublished     = "outbox.published"
	MetricOutboxFailed        = "outbox.failed"
	MetricOutboxDead          = "outbox.dead"
	MetricEventsConsumed      = "eventbus.consumed"
	MetricBreakerTransitions  = "breaker.transitions"
)

// Metrics records counters and timings.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is a metric label.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics keeps metrics in maps; used by tests and the CLI stats
// output.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[formatKey(name, tags)] += value
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(name, tags)
	m.timings[key] = append(m.timings[key], duration)
}

// GetCounter returns the current value of a counter.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[formatKey(name, tags)]
}

// GetTimings returns all recorded timings.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]time.Duration(nil), m.timings[formatKey(name, tags)]...)
}

func formatKey(name string, tags []Tag) string {
	key := name
	for _, t := range tags {
		key += ":" + t.Key + "=" + t.Value
	}
	return key
}
