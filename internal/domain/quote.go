package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a trade against the curve.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// Quote is an ephemeral pricing result for one amount in one direction.
// TotalCost prices the amount along the curve trajectory from the current
// supply ratio (spot price, directional guard, and impact applied), not
// merely spot * amount. A quote is amount-specific and must be re-validated
// at submit time, never reused indefinitely.
type Quote struct {
	CurveID           string          `json:"curve_id"`
	Direction         Direction       `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	SpotPrice         decimal.Decimal `json:"spot_price"`
	AdjustedSpotPrice decimal.Decimal `json:"adjusted_spot_price"`
	PriceImpactPct    decimal.Decimal `json:"price_impact_pct"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	QuotedAt          time.Time       `json:"quoted_at"`
}

// TradeIntent is the caller's acceptance of a quote: the trading account,
// the size and direction (which must match the quote), and the maximum
// adverse deviation from the quoted cost the caller will tolerate.
type TradeIntent struct {
	Account          string          `json:"account"`
	Amount           decimal.Decimal `json:"amount"`
	Direction        Direction       `json:"direction"`
	SlippageBoundPct decimal.Decimal `json:"slippage_bound_pct"`
}
