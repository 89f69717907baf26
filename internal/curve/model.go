// Package curve implements the pure bonding-curve price model. It has no
// side effects and performs no I/O.
//
// Pricing is single-point by design: a trade is priced at one representative
// supply ratio (the pre-trade ratio for buys, the post-trade ratio for
// sells), not integrated continuously over the trade range. A continuous
// integral would be more accurate but changes observable trade costs, so it
// must ship as a versioned curve revision, not a silent substitution.
package curve

import (
	"math"

	"launchpad_go/internal/domain"

	"github.com/shopspring/decimal"
)

// SpotPrice returns the instantaneous price at the given supply ratio.
//
//	Linear:      base + slope * ratio
//	Exponential: base * e^(exponent * ratio)
//	Logarithmic: base * ln(1 + logBase * ratio)
//
// Fails with a curve configuration error for an unknown type or an
// out-of-bound shape parameter, and with ErrMathOverflow if the result is
// not finite.
func SpotPrice(cfg domain.CurveConfig, supplyRatio decimal.Decimal) (decimal.Decimal, error) {
	if err := cfg.Validate(); err != nil {
		return decimal.Zero, err
	}

	switch cfg.Type {
	case domain.CurveLinear:
		// Pure decimal arithmetic, exact.
		return cfg.BasePrice.Add(cfg.Slope.Mul(supplyRatio)), nil

	case domain.CurveExponential:
		x := cfg.Exponent.Mul(supplyRatio).InexactFloat64()
		e := math.Exp(x)
		if !isFinite(e) {
			return decimal.Zero, domain.Errf("spot price", domain.ErrMathOverflow,
				"exp(%v) is not finite", x)
		}
		return cfg.BasePrice.Mul(decimal.NewFromFloat(e)), nil

	case domain.CurveLogarithmic:
		v := decimal.NewFromInt(1).Add(cfg.LogBase.Mul(supplyRatio)).InexactFloat64()
		l := math.Log(v)
		if !isFinite(l) {
			return decimal.Zero, domain.Errf("spot price", domain.ErrMathOverflow,
				"ln(%v) is not finite", v)
		}
		return cfg.BasePrice.Mul(decimal.NewFromFloat(l)), nil

	default:
		// Unreachable after Validate, kept as a hard guard.
		return decimal.Zero, domain.Errf("spot price", domain.ErrInvalidCurveType,
			"unknown curve type %q", cfg.Type)
	}
}

// TradeRatio computes the supply ratio a trade of the given size prices
// against. Buys use the pre-trade ratio currentSupply/totalSupply; sells use
// the post-trade ratio (currentSupply+amount)/totalSupply, reflecting that
// selling into a curve that will hold more relative reserve pressure costs
// more per unit. The asymmetry is a deliberate pricing convention.
//
// Fails with ErrMathOverflow on a non-positive total supply rather than
// dividing silently.
func TradeRatio(state domain.ReserveState, amount decimal.Decimal, direction domain.Direction) (decimal.Decimal, error) {
	if !state.TotalSupply.IsPositive() {
		return decimal.Zero, domain.Errf("trade ratio", domain.ErrMathOverflow,
			"total supply must be positive, got %s", state.TotalSupply)
	}

	supply := state.CurrentSupply
	if direction == domain.DirectionSell {
		supply = supply.Add(amount)
	}
	return supply.Div(state.TotalSupply), nil
}

// IntegratedCost returns the total cost of trading amount units: the spot
// price at the direction-appropriate ratio times the amount. See the package
// comment for why this is a single-point evaluation.
func IntegratedCost(cfg domain.CurveConfig, state domain.ReserveState, amount decimal.Decimal, direction domain.Direction) (decimal.Decimal, error) {
	ratio, err := TradeRatio(state, amount, direction)
	if err != nil {
		return decimal.Zero, err
	}

	spot, err := SpotPrice(cfg, ratio)
	if err != nil {
		return decimal.Zero, err
	}
	return spot.Mul(amount), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
