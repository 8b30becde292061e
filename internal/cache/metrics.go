package cache

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "pricetracker"

// Stats counts cache outcomes. It is safe for concurrent use and doubles
// as a prometheus.Collector.
type Stats struct {
	hits   atomic.Uint64
	misses atomic.Uint64
	sets   atomic.Uint64
	errors atomic.Uint64

	lookupsDesc *prometheus.Desc
	writesDesc  *prometheus.Desc
	errorsDesc  *prometheus.Desc
}

// StatsSnapshot is the JSON form of Stats served by /api/cache/stats.
type StatsSnapshot struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{
		lookupsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "cache", "lookups_total"),
			"Response cache lookups by result.",
			[]string{"result"}, nil,
		),
		writesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "cache", "writes_total"),
			"Responses stored in the cache.",
			nil, nil,
		),
		errorsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "cache", "errors_total"),
			"Cache backend failures that were served uncached.",
			nil, nil,
		),
	}
}

func (s *Stats) hit() { s.hits.Add(1) }
func (s *Stats) miss() { s.misses.Add(1) }
func (s *Stats) set() { s.sets.Add(1) }
func (s *Stats) failure() { s.errors.Add(1) }

// Snapshot returns a consistent-enough copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Sets:   s.sets.Load(),
		Errors: s.errors.Load(),
	}
	if total := snap.Hits + snap.Misses; total > 0 {
		snap.HitRate = float64(snap.Hits) / float64(total)
	}
	return snap
}

// Describe is part of the prometheus.Collector interface.
func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.lookupsDesc
	ch <- s.writesDesc
	ch <- s.errorsDesc
}

// Collect is part of the prometheus.Collector interface.
func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	snap := s.Snapshot()
	ch <- prometheus.MustNewConstMetric(s.lookupsDesc, prometheus.CounterValue, float64(snap.Hits), "hit")
	ch <- prometheus.MustNewConstMetric(s.lookupsDesc, prometheus.CounterValue, float64(snap.Misses), "miss")
	ch <- prometheus.MustNewConstMetric(s.writesDesc, prometheus.CounterValue, float64(snap.Sets))
	ch <- prometheus.MustNewConstMetric(s.errorsDesc, prometheus.CounterValue, float64(snap.Errors))
}
