package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenInfo is the persisted token registry row. The curve columns are the
// immutable CurveConfig flattened for storage; they are written once at
// launch and never updated.
type TokenInfo struct {
	ID          string          `gorm:"primaryKey" json:"id"` // curve instance ID
	Symbol      string          `gorm:"index" json:"symbol"`
	Name        string          `json:"name"`
	LogoPath    string          `json:"logo_path"`
	CurveType   string          `json:"curve_type"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Slope       decimal.Decimal `json:"slope"`
	Exponent    decimal.Decimal `json:"exponent"`
	LogBase     decimal.Decimal `json:"log_base"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CurveConfig reconstructs the typed curve configuration from the flattened
// columns. The result is validated by the caller.
func (t *TokenInfo) CurveConfig() CurveConfig {
	return CurveConfig{
		Type:      CurveType(t.CurveType),
		BasePrice: t.BasePrice,
		Slope:     t.Slope,
		Exponent:  t.Exponent,
		LogBase:   t.LogBase,
	}
}

// TradeRecord is the persisted history row for one trade attempt outcome.
type TradeRecord struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	TokenID   string          `gorm:"index" json:"token_id"`
	Account   string          `json:"account"`
	Direction string          `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
	Cost      decimal.Decimal `json:"cost"`
	ImpactPct decimal.Decimal `json:"impact_pct"`
	Status    string          `gorm:"index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
