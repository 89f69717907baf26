// Package quote turns raw curve prices into caller-facing, risk-adjusted
// quotes.
package quote

import (
	"time"

	"launchpad_go/internal/curve"
	"launchpad_go/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// Fixed directional guards: a 2% buffer protecting the counterparty-side
	// reserve. Buys pay slightly above spot, sells receive slightly below.
	// Tuned product constants; see also CurveConfig.ImpactMultiplier.
	buyGuard  = decimal.RequireFromString("1.02")
	sellGuard = decimal.RequireFromString("0.98")

	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Engine produces quotes from a curve config and a reserve-state snapshot.
// It is stateless and performs no I/O; identical inputs yield identical
// quotes apart from the timestamp.
type Engine struct{}

// NewEngine creates a quote engine.
func NewEngine() *Engine {
	return &Engine{}
}

// GetQuote prices a trade of the given amount and direction against the
// curve at the supplied reserve-state snapshot.
//
// totalCost = adjustedSpot * amount * (1 + impact/100), where adjustedSpot
// carries the directional guard and impact the per-curve-family multiplier.
func (e *Engine) GetQuote(cfg domain.CurveConfig, state domain.ReserveState, amount decimal.Decimal, direction domain.Direction) (*domain.Quote, error) {
	if !direction.Valid() {
		return nil, domain.Errf("quote", domain.ErrInvalidAmount, "unknown direction %q", direction)
	}
	if !amount.IsPositive() {
		return nil, domain.Errf("quote", domain.ErrInvalidAmount, "amount must be positive, got %s", amount)
	}

	ratio, err := curve.TradeRatio(state, amount, direction)
	if err != nil {
		return nil, err
	}

	spot, err := curve.SpotPrice(cfg, ratio)
	if err != nil {
		return nil, err
	}

	// TradeRatio has already rejected a non-positive total supply.
	impact := amount.Div(state.TotalSupply).Mul(hundred).Mul(cfg.ImpactMultiplier())

	guard := buyGuard
	if direction == domain.DirectionSell {
		guard = sellGuard
	}
	adjusted := spot.Mul(guard)

	totalCost := adjusted.Mul(amount).Mul(one.Add(impact.Div(hundred)))
	if totalCost.Sign() <= 0 {
		return nil, domain.Errf("quote", domain.ErrMathOverflow,
			"degenerate total cost %s for amount %s", totalCost, amount)
	}

	return &domain.Quote{
		CurveID:           state.CurveID,
		Direction:         direction,
		Amount:            amount,
		SpotPrice:         spot,
		AdjustedSpotPrice: adjusted,
		PriceImpactPct:    impact,
		TotalCost:         totalCost,
		QuotedAt:          time.Now(),
	}, nil
}
