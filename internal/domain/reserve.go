package domain

import "github.com/shopspring/decimal"

// ReserveAsset is the reserve-currency symbol backing every curve.
const ReserveAsset = "SOL"

// ReserveState is a point-in-time snapshot of a curve instance's supply and
// backing liquidity. The settlement layer owns this state; the core only
// reads snapshots and never treats one as source of truth across the
// quote -> submit boundary.
type ReserveState struct {
	CurveID       string          `json:"curve_id"`
	CurrentSupply decimal.Decimal `json:"current_supply"` // circulating token units
	TotalSupply   decimal.Decimal `json:"total_supply"`   // supply ceiling
	SolReserves   decimal.Decimal `json:"sol_reserves"`   // backing liquidity
}

// RemainingSupply returns the token units still held by the curve.
func (s ReserveState) RemainingSupply() decimal.Decimal {
	return s.TotalSupply.Sub(s.CurrentSupply)
}

// TokenAsset returns the ledger asset key for a curve instance's token units.
func TokenAsset(curveID string) string {
	return "token:" + curveID
}

// CurveSupplyAccount returns the ledger account holding a curve's undistributed
// token supply.
func CurveSupplyAccount(curveID string) string {
	return "curve:" + curveID + ":supply"
}

// CurveReserveAccount returns the ledger account holding a curve's reserve
// currency.
func CurveReserveAccount(curveID string) string {
	return "curve:" + curveID + ":reserve"
}
