package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket set.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRejectedInFlight
	MetricGoogleLoginSuccess
	MetricGoogleLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricLogout
	MetricForcedLogoutExpired
	MetricForcedLogoutUnauthorized
	MetricHydrateAuthenticated
	MetricHydrateAnonymous
	MetricHydrateExpired
	MetricHydrateCorrupt
	MetricFetchBlockedExpired
	MetricFetchUnauthorized
	MetricGuardChecks
	MetricStoreSaveFailure
	MetricLoginLatency

	MetricIDCount
)

// HistogramBuckets is the number of fixed latency buckets.
const HistogramBuckets = 8

// Bucket upper bounds in milliseconds; the last bucket is +Inf.
var bucketBoundsMillis = [HistogramBuckets - 1]int64{5, 10, 25, 50, 100, 250, 1000}

// BucketBoundsMillis returns the histogram bucket upper bounds.
func BucketBoundsMillis() []int64 {
	out := make([]int64, len(bucketBoundsMillis))
	copy(out, bucketBoundsMillis[:])
	return out
}

// Config controls metric collection.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// paddedCounter occupies its own cache line to avoid false sharing
// between adjacent hot counters.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics holds atomic counters and optional latency histograms. The
// zero-value-disabled pattern makes every method a no-op when metrics
// are off.
type Metrics struct {
	cfg        Config
	counters   [MetricIDCount]paddedCounter
	histograms [MetricIDCount][HistogramBuckets]atomic.Uint64
}

// New creates a [Metrics] instance. When cfg.Enabled is false, all
// operations are no-ops and New returns nil (safe to call through).
func New(cfg Config) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{cfg: cfg}
}

// Inc atomically increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.cfg.EnableLatency || id >= MetricIDCount {
		return
	}

	millis := d.Milliseconds()
	bucket := HistogramBuckets - 1
	for i, bound := range bucketBoundsMillis {
		if millis <= bound {
			bucket = i
			break
		}
	}
	m.histograms[id][bucket].Add(1)
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// Snapshot returns a deep copy of current counter and histogram values.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.cfg.EnableLatency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			buckets := make([]uint64, HistogramBuckets)
			var total uint64
			for i := range buckets {
				buckets[i] = m.histograms[id][i].Load()
				total += buckets[i]
			}
			if total > 0 {
				snap.Histograms[id] = buckets
			}
		}
	}

	return snap
}
