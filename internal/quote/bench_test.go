package quote

import (
	"testing"

	"launchpad_go/internal/domain"

	"github.com/shopspring/decimal"
)

// BenchmarkGetQuote_Linear measures the hot quoting path for the cheapest
// curve shape (pure decimal arithmetic, no transcendental math).
func BenchmarkGetQuote_Linear(b *testing.B) {
	engine := NewEngine()
	cfg, state := linearState()
	amount := decimal.NewFromInt(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.GetQuote(cfg, state, amount, domain.DirectionBuy); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkGetQuote_Exponential covers the float64 round-trip taken by
// curves with transcendental pricing.
func BenchmarkGetQuote_Exponential(b *testing.B) {
	engine := NewEngine()
	cfg := domain.NewExponentialCurve(dec("0.001"), dec("3.4"))
	state := domain.ReserveState{
		CurveID:       "tok-exp",
		CurrentSupply: decimal.NewFromInt(500_000),
		TotalSupply:   decimal.NewFromInt(1_000_000),
		SolReserves:   decimal.NewFromInt(250),
	}
	amount := decimal.NewFromInt(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.GetQuote(cfg, state, amount, domain.DirectionSell); err != nil {
			b.Fatal(err)
		}
	}
}
