package curve

import (
	"errors"
	"testing"

	"launchpad_go/internal/domain"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSpotPrice_Linear(t *testing.T) {
	cfg := domain.NewLinearCurve(dec("0.001"), dec("0.0000001"))

	price, err := SpotPrice(cfg, dec("0.1"))
	if err != nil {
		t.Fatalf("SpotPrice failed: %v", err)
	}

	// 0.001 + 0.0000001 * 0.1 = 0.00100001
	if !price.Equal(dec("0.00100001")) {
		t.Errorf("expected 0.00100001, got %s", price)
	}
}

func TestSpotPrice_Exponential(t *testing.T) {
	cfg := domain.NewExponentialCurve(dec("0.01"), dec("2"))

	price, err := SpotPrice(cfg, dec("0.55"))
	if err != nil {
		t.Fatalf("SpotPrice failed: %v", err)
	}

	// 0.01 * e^1.1 ≈ 0.0300417
	lo, hi := dec("0.03004"), dec("0.03005")
	if price.LessThan(lo) || price.GreaterThan(hi) {
		t.Errorf("expected price in [%s, %s], got %s", lo, hi, price)
	}
}

func TestSpotPrice_Logarithmic(t *testing.T) {
	cfg := domain.NewLogarithmicCurve(dec("0.5"), dec("10"))

	price, err := SpotPrice(cfg, dec("0.5"))
	if err != nil {
		t.Fatalf("SpotPrice failed: %v", err)
	}

	// 0.5 * ln(6) ≈ 0.8959
	lo, hi := dec("0.895"), dec("0.897")
	if price.LessThan(lo) || price.GreaterThan(hi) {
		t.Errorf("expected price in [%s, %s], got %s", lo, hi, price)
	}

	// ratio 0 prices at zero: ln(1) = 0
	price, err = SpotPrice(cfg, decimal.Zero)
	if err != nil {
		t.Fatalf("SpotPrice at zero ratio failed: %v", err)
	}
	if !price.IsZero() {
		t.Errorf("expected zero price at ratio 0, got %s", price)
	}
}

func TestSpotPrice_Monotonic(t *testing.T) {
	configs := map[string]domain.CurveConfig{
		"linear":      domain.NewLinearCurve(dec("0.001"), dec("0.5")),
		"exponential": domain.NewExponentialCurve(dec("0.01"), dec("3")),
		"logarithmic": domain.NewLogarithmicCurve(dec("0.1"), dec("8")),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			prev := decimal.NewFromInt(-1)
			for r := 0; r <= 10; r++ {
				ratio := decimal.NewFromInt(int64(r)).Div(decimal.NewFromInt(10))
				price, err := SpotPrice(cfg, ratio)
				if err != nil {
					t.Fatalf("SpotPrice(%s) failed: %v", ratio, err)
				}
				if price.LessThan(prev) {
					t.Errorf("price decreased at ratio %s: %s < %s", ratio, price, prev)
				}
				prev = price
			}
		})
	}
}

func TestSpotPrice_InvalidConfig(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		cfg := domain.CurveConfig{Type: "PARABOLIC", BasePrice: dec("1")}
		_, err := SpotPrice(cfg, dec("0.5"))
		if !errors.Is(err, domain.ErrInvalidCurveType) {
			t.Errorf("expected ErrInvalidCurveType, got %v", err)
		}
	})

	t.Run("zero slope", func(t *testing.T) {
		cfg := domain.NewLinearCurve(dec("1"), decimal.Zero)
		_, err := SpotPrice(cfg, dec("0.5"))
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("log base at 1", func(t *testing.T) {
		cfg := domain.NewLogarithmicCurve(dec("1"), dec("1"))
		_, err := SpotPrice(cfg, dec("0.5"))
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("negative base price", func(t *testing.T) {
		cfg := domain.NewLinearCurve(dec("-1"), dec("0.1"))
		_, err := SpotPrice(cfg, dec("0.5"))
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("config errors are not retriable", func(t *testing.T) {
		cfg := domain.NewLinearCurve(dec("1"), decimal.Zero)
		_, err := SpotPrice(cfg, dec("0.5"))
		if domain.IsRetriable(err) {
			t.Error("config error must not be retriable")
		}
		if !domain.IsCurveConfigError(err) {
			t.Error("expected a curve config error")
		}
	})
}

func TestTradeRatio(t *testing.T) {
	state := domain.ReserveState{
		CurveID:       "tok-1",
		CurrentSupply: decimal.NewFromInt(500_000),
		TotalSupply:   decimal.NewFromInt(1_000_000),
	}
	amount := decimal.NewFromInt(50_000)

	t.Run("buy uses pre-trade ratio", func(t *testing.T) {
		ratio, err := TradeRatio(state, amount, domain.DirectionBuy)
		if err != nil {
			t.Fatalf("TradeRatio failed: %v", err)
		}
		if !ratio.Equal(dec("0.5")) {
			t.Errorf("expected 0.5, got %s", ratio)
		}
	})

	t.Run("sell uses post-trade ratio", func(t *testing.T) {
		ratio, err := TradeRatio(state, amount, domain.DirectionSell)
		if err != nil {
			t.Fatalf("TradeRatio failed: %v", err)
		}
		if !ratio.Equal(dec("0.55")) {
			t.Errorf("expected 0.55, got %s", ratio)
		}
	})

	t.Run("zero total supply overflows", func(t *testing.T) {
		degenerate := domain.ReserveState{CurveID: "tok-1", TotalSupply: decimal.Zero}
		_, err := TradeRatio(degenerate, amount, domain.DirectionBuy)
		if !errors.Is(err, domain.ErrMathOverflow) {
			t.Errorf("expected ErrMathOverflow, got %v", err)
		}
	})
}

func TestIntegratedCost_SinglePoint(t *testing.T) {
	cfg := domain.NewLinearCurve(dec("0.001"), dec("0.0000001"))
	state := domain.ReserveState{
		CurveID:       "tok-1",
		CurrentSupply: decimal.NewFromInt(100_000),
		TotalSupply:   decimal.NewFromInt(1_000_000),
	}
	amount := decimal.NewFromInt(1000)

	cost, err := IntegratedCost(cfg, state, amount, domain.DirectionBuy)
	if err != nil {
		t.Fatalf("IntegratedCost failed: %v", err)
	}

	// One spot evaluation at the pre-trade ratio, times amount:
	// 0.00100001 * 1000 = 1.00001
	if !cost.Equal(dec("1.00001")) {
		t.Errorf("expected 1.00001, got %s", cost)
	}
}
