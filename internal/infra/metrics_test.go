package infra

import (
	"testing"
)

func TestMetrics_RecordTradeConfirmed(t *testing.T) {
	m := &Metrics{}

	m.RecordTradeConfirmed(1000)
	m.RecordTradeConfirmed(2000)
	m.RecordTradeConfirmed(3000)

	snap := m.Snapshot()

	if snap.TradesConfirmed != 3 {
		t.Errorf("Expected 3 confirmed trades, got %d", snap.TradesConfirmed)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgSettleLatencyNs != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgSettleLatencyNs)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := &Metrics{}

	m.RecordQuote()
	m.RecordQuote()
	m.RecordSlippageAbort()
	m.RecordTradeRejected()

	snap := m.Snapshot()
	if snap.QuotesServed != 2 {
		t.Errorf("Expected 2 quotes, got %d", snap.QuotesServed)
	}
	if snap.SlippageAborts != 1 {
		t.Errorf("Expected 1 slippage abort, got %d", snap.SlippageAborts)
	}
	if snap.TradesRejected != 1 {
		t.Errorf("Expected 1 rejected trade, got %d", snap.TradesRejected)
	}
}

func TestMetrics_Connections(t *testing.T) {
	m := &Metrics{}

	m.IncrementConnections()
	m.IncrementConnections()

	snap := m.Snapshot()
	if snap.ActiveConnections != 2 {
		t.Errorf("Expected 2 connections, got %d", snap.ActiveConnections)
	}

	m.DecrementConnections()
	snap = m.Snapshot()
	if snap.ActiveConnections != 1 {
		t.Errorf("Expected 1 connection, got %d", snap.ActiveConnections)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}
	m.RecordQuote()
	m.RecordTradeConfirmed(500)
	m.Reset()

	snap := m.Snapshot()
	if snap.QuotesServed != 0 || snap.TradesConfirmed != 0 || snap.AvgSettleLatencyNs != 0 {
		t.Errorf("Expected zeroed metrics after reset, got %+v", snap)
	}
}
