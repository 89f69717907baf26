package domain

import (
	"github.com/shopspring/decimal"
)

// CurveType identifies the price-curve family of a token.
type CurveType string

const (
	CurveLinear      CurveType = "LINEAR"
	CurveExponential CurveType = "EXPONENTIAL"
	CurveLogarithmic CurveType = "LOGARITHMIC"
)

// CurveConfig holds the immutable per-token curve parameters. Exactly one
// shape parameter is meaningful per curve type: Slope for Linear, Exponent
// for Exponential, LogBase for Logarithmic. The other fields are ignored.
// A config is created once at token launch and never mutated; a different
// curve requires a new token.
type CurveConfig struct {
	Type      CurveType       `json:"curve_type"`
	BasePrice decimal.Decimal `json:"base_price"`
	Slope     decimal.Decimal `json:"slope,omitempty"`
	Exponent  decimal.Decimal `json:"exponent,omitempty"`
	LogBase   decimal.Decimal `json:"log_base,omitempty"`
}

// NewLinearCurve builds a Linear curve config: price = base + slope * ratio.
func NewLinearCurve(basePrice, slope decimal.Decimal) CurveConfig {
	return CurveConfig{Type: CurveLinear, BasePrice: basePrice, Slope: slope}
}

// NewExponentialCurve builds an Exponential curve config: price = base * e^(exponent * ratio).
func NewExponentialCurve(basePrice, exponent decimal.Decimal) CurveConfig {
	return CurveConfig{Type: CurveExponential, BasePrice: basePrice, Exponent: exponent}
}

// NewLogarithmicCurve builds a Logarithmic curve config: price = base * ln(1 + logBase * ratio).
func NewLogarithmicCurve(basePrice, logBase decimal.Decimal) CurveConfig {
	return CurveConfig{Type: CurveLogarithmic, BasePrice: basePrice, LogBase: logBase}
}

// Validate checks that the base price is positive and the shape parameter
// matching the curve type satisfies its bound (slope > 0, exponent > 0,
// logBase > 1).
func (c CurveConfig) Validate() error {
	if !c.BasePrice.IsPositive() {
		return Errf("curve config", ErrInvalidParameter, "base price must be positive, got %s", c.BasePrice)
	}

	switch c.Type {
	case CurveLinear:
		if !c.Slope.IsPositive() {
			return Errf("curve config", ErrInvalidParameter, "linear slope must be positive, got %s", c.Slope)
		}
	case CurveExponential:
		if !c.Exponent.IsPositive() {
			return Errf("curve config", ErrInvalidParameter, "exponent must be positive, got %s", c.Exponent)
		}
	case CurveLogarithmic:
		if c.LogBase.Cmp(decimal.NewFromInt(1)) <= 0 {
			return Errf("curve config", ErrInvalidParameter, "log base must be greater than 1, got %s", c.LogBase)
		}
	default:
		return Errf("curve config", ErrInvalidCurveType, "unknown curve type %q", c.Type)
	}

	return nil
}

// ImpactMultiplier returns the fixed per-curve-family risk weighting applied
// to price impact: exponential curves are more sensitive to trade size,
// logarithmic curves less so. These are tuned product constants, not derived
// from the curve's second derivative; changing them changes observable costs.
func (c CurveConfig) ImpactMultiplier() decimal.Decimal {
	switch c.Type {
	case CurveExponential:
		return decimal.RequireFromString("1.5")
	case CurveLogarithmic:
		return decimal.RequireFromString("0.75")
	default:
		return decimal.NewFromInt(1)
	}
}
