package observability

import (
	"sort"
	"sync"
	"time"
)

// Metrics records completed chat turns.
type Metrics interface {
	RecordTurn(labels TurnLabels, latency time.Duration)
}

// TurnLabels contains metric dimensions.
type TurnLabels struct {
	Provider string `json:"provider"`
	Mode     string `json:"mode"`
	Status   string `json:"status"`
}

// TurnStats is the aggregate for one label set
type TurnStats struct {
	TurnLabels
	Count        int64         `json:"count"`
	TotalLatency time.Duration `json:"total_latency_ns"`
}

// Counters is an in-memory Metrics implementation. Values reset on restart.
type Counters struct {
	mu    sync.Mutex
	stats map[TurnLabels]*TurnStats
}

// NewCounters creates an empty counter set
func NewCounters() *Counters {
	return &Counters{stats: make(map[TurnLabels]*TurnStats)}
}

// RecordTurn implements Metrics
func (c *Counters) RecordTurn(labels TurnLabels, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stats[labels]
	if !ok {
		s = &TurnStats{TurnLabels: labels}
		c.stats[labels] = s
	}
	s.Count++
	s.TotalLatency += latency
}

// Snapshot returns a copy of the counters sorted by provider, mode, status
func (c *Counters) Snapshot() []TurnStats {
	c.mu.Lock()
	out := make([]TurnStats, 0, len(c.stats))
	for _, s := range c.stats {
		out = append(out, *s)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		return a.Status < b.Status
	})
	return out
}
