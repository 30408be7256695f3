package adminguard

import "sync/atomic"

// MetricID identifies a single engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful admin logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts failed credential or TOTP checks.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins rejected by the attempt window.
	MetricLoginRateLimited
	// MetricTOTPRequired counts logins that stopped at the second-factor step.
	MetricTOTPRequired
	// MetricAutoBlocked counts automatic block promotions.
	MetricAutoBlocked
	// MetricBlockedHit counts requests rejected by the blocklist gate.
	MetricBlockedHit
	// MetricTokenRejected counts failed bearer-token validations.
	MetricTokenRejected
	// MetricRequestThrottled counts generic fixed-window limiter rejections.
	MetricRequestThrottled
	// MetricManualBlock counts operator-issued block operations.
	MetricManualBlock
	// MetricManualUnblock counts operator-issued unblock operations.
	MetricManualUnblock

	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's lock-free counters. All methods are safe for
// concurrent use; a nil *Metrics is a valid no-op receiver.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func NewMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. The result is detached from live state.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	return s
}
