// Package executor converts an accepted quote into an atomic settlement
// instruction and drives it to confirmation.
//
// A trade attempt moves Quoted -> Bounded -> Submitted -> Confirmed,
// Rejected or Failed. The only ordering the executor owns is
// read-then-recompute-then-submit inside a single attempt: immediately
// before submission the reserve state is re-fetched and the quote recomputed
// against it, so a stale price is never executed. There is exactly one
// submission per call; retries after transient settlement failures are the
// caller's decision, as is re-quoting after a slippage abort. Once submitted,
// an attempt is not cancellable.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"launchpad_go/internal/domain"
	"launchpad_go/internal/quote"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// Executor builds and settles bonding-curve trades.
type Executor struct {
	states   domain.ReserveStateProvider
	ledger   domain.SettlementLayer
	balances domain.BalanceProvider
	quotes   *quote.Engine
	logger   *slog.Logger
}

// New creates an executor. The settlement layer is an explicit dependency;
// the executor holds no process-wide state.
func New(states domain.ReserveStateProvider, ledger domain.SettlementLayer, balances domain.BalanceProvider, quotes *quote.Engine) *Executor {
	return &Executor{
		states:   states,
		ledger:   ledger,
		balances: balances,
		quotes:   quotes,
		logger:   slog.Default().With("module", "executor"),
	}
}

// Prepare computes the worst-case acceptable price for an accepted quote:
// MaxCost for buys, MinReturn for sells. A quote is amount-specific and
// non-fungible across sizes, so the intent must match it exactly.
func (x *Executor) Prepare(q *domain.Quote, intent domain.TradeIntent) (*domain.BoundedTrade, error) {
	if !intent.Amount.Equal(q.Amount) {
		return nil, domain.Errf("prepare", domain.ErrInvalidAmount,
			"intent amount %s does not match quoted amount %s", intent.Amount, q.Amount)
	}
	if intent.Direction != q.Direction {
		return nil, domain.Errf("prepare", domain.ErrInvalidAmount,
			"intent direction %s does not match quoted direction %s", intent.Direction, q.Direction)
	}
	if intent.SlippageBoundPct.IsNegative() {
		return nil, domain.Errf("prepare", domain.ErrInvalidAmount,
			"slippage bound must be non-negative, got %s", intent.SlippageBoundPct)
	}

	bt := &domain.BoundedTrade{Quote: *q, Intent: intent}
	bound := intent.SlippageBoundPct.Div(hundred)
	if q.Direction == domain.DirectionBuy {
		bt.MaxCost = q.TotalCost.Mul(one.Add(bound))
	} else {
		bt.MinReturn = q.TotalCost.Mul(one.Sub(bound))
	}
	return bt, nil
}

// BuildInstruction produces the atomic two-leg balance movement for a bounded
// trade and verifies both sides can cover their debits against the given
// reserve-state snapshot. Atomicity, not leg sequencing, is the requirement:
// the settlement layer applies both legs or neither.
func (x *Executor) BuildInstruction(ctx context.Context, state domain.ReserveState, bt *domain.BoundedTrade) (*domain.SettlementInstruction, error) {
	curveID := bt.Quote.CurveID
	trader := bt.Intent.Account
	tokenAsset := domain.TokenAsset(curveID)

	instr := &domain.SettlementInstruction{
		ID:      uuid.NewString(),
		CurveID: curveID,
	}

	switch bt.Quote.Direction {
	case domain.DirectionBuy:
		funds, err := x.balances.Balance(ctx, trader, domain.ReserveAsset)
		if err != nil {
			return nil, err
		}
		if funds.LessThan(bt.Quote.TotalCost) {
			return nil, domain.Errf("build", domain.ErrInsufficientBalance,
				"account %s holds %s %s, trade needs %s", trader, funds, domain.ReserveAsset, bt.Quote.TotalCost)
		}
		if state.RemainingSupply().LessThan(bt.Quote.Amount) {
			return nil, domain.Errf("build", domain.ErrInsufficientLiquidity,
				"curve %s has %s token units left, trade needs %s", curveID, state.RemainingSupply(), bt.Quote.Amount)
		}
		instr.Legs = []domain.BalanceMove{
			{FromAccount: trader, ToAccount: domain.CurveReserveAccount(curveID), Asset: domain.ReserveAsset, Amount: bt.Quote.TotalCost},
			{FromAccount: domain.CurveSupplyAccount(curveID), ToAccount: trader, Asset: tokenAsset, Amount: bt.Quote.Amount},
		}

	case domain.DirectionSell:
		tokens, err := x.balances.Balance(ctx, trader, tokenAsset)
		if err != nil {
			return nil, err
		}
		if tokens.LessThan(bt.Quote.Amount) {
			return nil, domain.Errf("build", domain.ErrInsufficientBalance,
				"account %s holds %s token units, trade needs %s", trader, tokens, bt.Quote.Amount)
		}
		if state.SolReserves.LessThan(bt.Quote.TotalCost) {
			return nil, domain.Errf("build", domain.ErrInsufficientLiquidity,
				"curve %s reserves %s %s cannot cover return %s", curveID, state.SolReserves, domain.ReserveAsset, bt.Quote.TotalCost)
		}
		instr.Legs = []domain.BalanceMove{
			{FromAccount: trader, ToAccount: domain.CurveSupplyAccount(curveID), Asset: tokenAsset, Amount: bt.Quote.Amount},
			{FromAccount: domain.CurveReserveAccount(curveID), ToAccount: trader, Asset: domain.ReserveAsset, Amount: bt.Quote.TotalCost},
		}

	default:
		return nil, domain.Errf("build", domain.ErrInvalidAmount, "unknown direction %q", bt.Quote.Direction)
	}

	return instr, nil
}

// SubmitAndConfirm re-validates the bounded trade against a fresh reserve
// state, then hands the instruction to the settlement layer and blocks until
// it is finalized or rejected. If the freshly recomputed cost falls outside
// the prepared bound nothing is submitted and ErrSlippageExceeded is
// returned so the caller can re-quote.
func (x *Executor) SubmitAndConfirm(ctx context.Context, cfg domain.CurveConfig, bt *domain.BoundedTrade, instr *domain.SettlementInstruction) (*domain.TradeResult, error) {
	fresh, err := x.states.Fetch(ctx, bt.Quote.CurveID)
	if err != nil {
		return nil, err
	}

	requote, err := x.quotes.GetQuote(cfg, fresh, bt.Quote.Amount, bt.Quote.Direction)
	if err != nil {
		return nil, err
	}

	if bt.Quote.Direction == domain.DirectionBuy {
		if requote.TotalCost.GreaterThan(bt.MaxCost) {
			return nil, domain.Errf("submit", domain.ErrSlippageExceeded,
				"cost moved to %s, bound %s", requote.TotalCost, bt.MaxCost)
		}
	} else {
		if requote.TotalCost.LessThan(bt.MinReturn) {
			return nil, domain.Errf("submit", domain.ErrSlippageExceeded,
				"return moved to %s, bound %s", requote.TotalCost, bt.MinReturn)
		}
	}

	receipt, err := x.ledger.Submit(ctx, instr)
	if err != nil {
		return nil, wrapSettlement("submit", err)
	}

	status, err := x.ledger.Confirm(ctx, receipt)
	if err != nil {
		return nil, wrapSettlement("confirm", err)
	}

	switch status {
	case domain.SettlementConfirmed:
		x.logger.Info("Trade confirmed",
			"curve", bt.Quote.CurveID,
			"direction", string(bt.Quote.Direction),
			"amount", bt.Quote.Amount.String(),
			"cost", bt.Quote.TotalCost.String())
		return &domain.TradeResult{
			TradeID:      uuid.NewString(),
			CurveID:      bt.Quote.CurveID,
			Account:      bt.Intent.Account,
			Direction:    bt.Quote.Direction,
			Amount:       bt.Quote.Amount,
			ExecutedCost: bt.Quote.TotalCost,
			Status:       domain.TradeStatusConfirmed,
			Receipt:      receipt,
			ExecutedAt:   time.Now(),
		}, nil
	case domain.SettlementRejected:
		return nil, domain.Errf("confirm", domain.ErrSettlementFailure,
			"instruction %s rejected by settlement layer", instr.ID)
	default:
		// Partial application must never surface as success.
		return nil, domain.Errf("confirm", domain.ErrSettlementFailure,
			"instruction %s reported status %q", instr.ID, status)
	}
}

// Execute runs the full attempt: bound the quote, build the instruction,
// re-validate and settle. It performs at most one submission.
func (x *Executor) Execute(ctx context.Context, cfg domain.CurveConfig, q *domain.Quote, intent domain.TradeIntent) (*domain.TradeResult, error) {
	bt, err := x.Prepare(q, intent)
	if err != nil {
		return nil, err
	}

	state, err := x.states.Fetch(ctx, q.CurveID)
	if err != nil {
		return nil, err
	}

	instr, err := x.BuildInstruction(ctx, state, bt)
	if err != nil {
		return nil, err
	}

	return x.SubmitAndConfirm(ctx, cfg, bt, instr)
}

// wrapSettlement keeps typed domain errors intact and classifies everything
// else from the settlement transport as a settlement failure.
func wrapSettlement(op string, err error) error {
	var te *domain.TradeError
	if errors.As(err, &te) {
		return err
	}
	return domain.Errf(op, domain.ErrSettlementFailure, "%v", err)
}
