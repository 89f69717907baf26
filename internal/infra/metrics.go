package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	quotesServed    atomic.Uint64
	tradesConfirmed atomic.Uint64
	tradesRejected  atomic.Uint64
	slippageAborts  atomic.Uint64
	errorsTotal     atomic.Uint64

	// Settlement latency tracking
	settleLatencySumNs atomic.Int64
	settleLatencyCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordQuote records a served quote.
func (m *Metrics) RecordQuote() {
	m.quotesServed.Add(1)
}

// RecordTradeConfirmed records a confirmed trade with its settlement latency.
func (m *Metrics) RecordTradeConfirmed(latencyNs int64) {
	m.tradesConfirmed.Add(1)
	m.settleLatencySumNs.Add(latencyNs)
	m.settleLatencyCount.Add(1)
}

// RecordTradeRejected records a trade rejected or failed by settlement.
func (m *Metrics) RecordTradeRejected() {
	m.tradesRejected.Add(1)
}

// RecordSlippageAbort records a trade aborted at re-validation.
func (m *Metrics) RecordSlippageAbort() {
	m.slippageAborts.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementConnections increments active gateway connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active gateway connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	QuotesServed       uint64
	TradesConfirmed    uint64
	TradesRejected     uint64
	SlippageAborts     uint64
	ErrorsTotal        uint64
	AvgSettleLatencyNs int64
	ActiveConnections  int32
	Timestamp          time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.settleLatencyCount.Load()
	if count > 0 {
		avgLatency = m.settleLatencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		QuotesServed:       m.quotesServed.Load(),
		TradesConfirmed:    m.tradesConfirmed.Load(),
		TradesRejected:     m.tradesRejected.Load(),
		SlippageAborts:     m.slippageAborts.Load(),
		ErrorsTotal:        m.errorsTotal.Load(),
		AvgSettleLatencyNs: avgLatency,
		ActiveConnections:  m.activeConnections.Load(),
		Timestamp:          time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.quotesServed.Store(0)
	m.tradesConfirmed.Store(0)
	m.tradesRejected.Store(0)
	m.slippageAborts.Store(0)
	m.errorsTotal.Store(0)
	m.settleLatencySumNs.Store(0)
	m.settleLatencyCount.Store(0)
	m.activeConnections.Store(0)
}
