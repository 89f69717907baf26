package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReserveStateProvider supplies a consistent point-in-time snapshot of a
// curve instance's supply and reserves. Fails with ErrNotFound if the curve
// instance does not exist.
type ReserveStateProvider interface {
	Fetch(ctx context.Context, curveID string) (ReserveState, error)
}

// SettlementLayer is the narrow submit/confirm contract against the external
// system of record. Submit performs at most one submission attempt; retries
// on transient failure belong to the caller. An instruction's legs are
// applied all-or-nothing.
type SettlementLayer interface {
	Submit(ctx context.Context, instr *SettlementInstruction) (*SettlementReceipt, error)
	Confirm(ctx context.Context, receipt *SettlementReceipt) (SettlementStatus, error)
}

// BalanceProvider reads current account balances from the settlement layer,
// used to verify the trader side can cover its debit before submission.
type BalanceProvider interface {
	Balance(ctx context.Context, account, asset string) (decimal.Decimal, error)
}

// CurveConfigStore loads the immutable curve configuration for a curve
// instance. Malformed stored parameters surface as curve configuration
// errors; unknown instances as ErrNotFound.
type CurveConfigStore interface {
	Load(curveID string) (CurveConfig, error)
}
