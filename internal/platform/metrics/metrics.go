// Package metrics provides the passive sink the cache and the pricing
// resolver report hit/miss/latency figures to.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names.
const (
	CacheHit          = "cache_hit_total"
	CacheMiss         = "cache_miss_total"
	CacheError        = "cache_error_total"
	CacheCoalesced    = "cache_coalesced_total"
	CacheBust         = "cache_bust_total"
	CacheLoadDuration = "cache_load_duration_seconds"

	PricingItemResolved  = "pricing_items_resolved_total"
	PricingItemUnmatched = "pricing_items_unmatched_total"
	PricingBatchFailed   = "pricing_batches_failed_total"
	PricingDuration      = "pricing_resolve_duration_seconds"
)

// Sink records counters and latency observations keyed by metric name and
// operation. Implementations must be safe for concurrent use and must not block.
type Sink interface {
	Inc(name, operation string)
	Observe(name, operation string, d time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Inc(string, string)                    {}
func (Nop) Observe(string, string, time.Duration) {}

// InMemory keeps counts in a map. Used by tests.
type InMemory struct {
	mu           sync.Mutex
	counters     map[string]int64
	observations map[string][]time.Duration
}

// NewInMemory creates an empty in-memory sink.
func NewInMemory() *InMemory {
	return &InMemory{
		counters:     make(map[string]int64),
		observations: make(map[string][]time.Duration),
	}
}

func key(name, operation string) string {
	return name + "{" + operation + "}"
}

func (m *InMemory) Inc(name, operation string) {
	m.mu.Lock()
	m.counters[key(name, operation)]++
	m.mu.Unlock()
}

func (m *InMemory) Observe(name, operation string, d time.Duration) {
	m.mu.Lock()
	k := key(name, operation)
	m.observations[k] = append(m.observations[k], d)
	m.mu.Unlock()
}

// Count returns the counter for name and operation.
func (m *InMemory) Count(name, operation string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key(name, operation)]
}

// Total sums a counter across all operations.
func (m *InMemory) Total(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for k, v := range m.counters {
		if strings.HasPrefix(k, name+"{") {
			total += v
		}
	}
	return total
}

// Observations returns how many latency samples were recorded.
func (m *InMemory) Observations(name, operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observations[key(name, operation)])
}

// Snapshot returns counters sorted by key, for debugging output.
func (m *InMemory) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.counters))
	for k := range m.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = m.counters[k]
	}
	return out
}
