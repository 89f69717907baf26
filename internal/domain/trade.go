package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade attempt states: Quoted -> Bounded -> Submitted -> Confirmed | Rejected | Failed.
const (
	TradeStatusQuoted    = "QUOTED"
	TradeStatusBounded   = "BOUNDED"
	TradeStatusSubmitted = "SUBMITTED"
	TradeStatusConfirmed = "CONFIRMED"
	TradeStatusRejected  = "REJECTED"
	TradeStatusFailed    = "FAILED"
)

// BoundedTrade is an accepted quote with its worst-case acceptable price
// computed. For a buy, MaxCost caps what the trader will pay; for a sell,
// MinReturn floors what the trader will receive.
type BoundedTrade struct {
	Quote     Quote
	Intent    TradeIntent
	MaxCost   decimal.Decimal // buys only
	MinReturn decimal.Decimal // sells only
}

// BalanceMove is a single balance movement inside a settlement instruction.
type BalanceMove struct {
	FromAccount string          `json:"from"`
	ToAccount   string          `json:"to"`
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
}

// SettlementInstruction is an ordered set of balance movements that the
// settlement layer must apply as a single atomic unit: either every leg
// commits or none does. Sequencing between legs carries no meaning.
type SettlementInstruction struct {
	ID      string        `json:"id"`
	CurveID string        `json:"curve_id"`
	Legs    []BalanceMove `json:"legs"`
}

// SettlementReceipt identifies a submitted instruction awaiting confirmation.
type SettlementReceipt struct {
	ID            string    `json:"id"`
	InstructionID string    `json:"instruction_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SettlementStatus is the terminal outcome reported by the settlement layer.
type SettlementStatus string

const (
	SettlementConfirmed SettlementStatus = "CONFIRMED"
	SettlementRejected  SettlementStatus = "REJECTED"
	// SettlementPartial signals partial application of an instruction's legs.
	// The core treats this as a settlement failure, never as success.
	SettlementPartial SettlementStatus = "PARTIAL"
)

// TradeResult describes a confirmed trade.
type TradeResult struct {
	TradeID      string             `json:"trade_id"`
	CurveID      string             `json:"curve_id"`
	Account      string             `json:"account"`
	Direction    Direction          `json:"direction"`
	Amount       decimal.Decimal    `json:"amount"`
	ExecutedCost decimal.Decimal    `json:"executed_cost"`
	Status       string             `json:"status"`
	Receipt      *SettlementReceipt `json:"receipt,omitempty"`
	ExecutedAt   time.Time          `json:"executed_at"`
}
