package perf

import (
	"sort"
	"sync"
	"time"
)

// DefaultRingSize is the default capacity of the sample ring.
const DefaultRingSize = 8192

// SampleKind distinguishes HTTP request samples from database query samples.
type SampleKind uint8

const (
	KindRequest SampleKind = iota
	KindQuery
)

// Sample is a single timing record.
type Sample struct {
	Kind       SampleKind
	Label      string // HTTP route or database operation
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps recent timing samples in a fixed-size ring.
// Recording is cheap; aggregation happens only when Snapshot is called.
type Collector struct {
	mu      sync.Mutex
	samples []Sample
	pos     int
	total   int64
}

// NewCollector creates a collector with the given ring capacity.
// PRE: size > 0 (non-positive falls back to DefaultRingSize)
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{samples: make([]Sample, size)}
}

// Record stores a sample, overwriting the oldest once the ring is full.
// PRE: s has a non-zero Timestamp
// POST: Sample stored, total count incremented
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.samples[c.pos] = s
	c.pos = (c.pos + 1) % len(c.samples)
	c.total++
	c.mu.Unlock()
}

// TotalRecorded returns the number of samples ever recorded.
func (c *Collector) TotalRecorded() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// LabelStat aggregates timing for one route or query operation.
type LabelStat struct {
	Label   string
	Count   int
	AvgMs   float64
	MaxMs   float64
	TotalMs float64
}

// Snapshot holds aggregated timing data computed on read.
type Snapshot struct {
	TotalRecorded int64
	RequestP50Ms  float64
	RequestP95Ms  float64
	RequestP99Ms  float64
	SlowestRoutes []LabelStat
	SlowestOps    []LabelStat
}

// Snapshot aggregates samples recorded since the given time.
// Sorting makes this comparatively expensive — call it from the admin
// endpoint, not per request.
// PRE: topN > 0
// POST: Returns percentiles and the slowest routes/operations by average
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Sample, len(c.samples))
	copy(buf, c.samples)
	total := c.total
	c.mu.Unlock()

	var durations []float64
	routes := make(map[string]*LabelStat)
	ops := make(map[string]*LabelStat)

	for _, s := range buf {
		if s.Timestamp.IsZero() || s.Timestamp.Before(since) {
			continue
		}
		byLabel := ops
		if s.Kind == KindRequest {
			byLabel = routes
			durations = append(durations, s.DurationMs)
		}
		stat, ok := byLabel[s.Label]
		if !ok {
			stat = &LabelStat{Label: s.Label}
			byLabel[s.Label] = stat
		}
		stat.Count++
		stat.TotalMs += s.DurationMs
		if s.DurationMs > stat.MaxMs {
			stat.MaxMs = s.DurationMs
		}
	}

	snap := Snapshot{
		TotalRecorded: total,
		SlowestRoutes: slowest(routes, topN),
		SlowestOps:    slowest(ops, topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile returns the nearest-rank p-th percentile from a sorted slice.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// slowest returns the top N labels ordered by average duration descending.
func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AvgMs > list[j].AvgMs })
	if len(list) > n {
		list = list[:n]
	}
	return list
}
