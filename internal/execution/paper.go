// Package execution provides an in-process settlement ledger for paper
// trading and tests. It implements the same submit/confirm contract as the
// remote gateway, including per-curve single-writer admission and
// all-or-nothing instruction application.
package execution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"launchpad_go/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaperLedger is an in-memory system of record: per-account, per-asset
// balances plus the curve instances launched against it. All mutation goes
// through Submit/Confirm; an instruction's legs commit together or not at
// all.
type PaperLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]decimal.Decimal // account -> asset -> amount
	curves   map[string]decimal.Decimal            // curveID -> total supply
	pending  map[string]*domain.SettlementInstruction
	inFlight map[string]bool // curveID -> submission awaiting confirm
	logger   *slog.Logger
}

// NewPaperLedger creates an empty paper ledger.
func NewPaperLedger() *PaperLedger {
	return &PaperLedger{
		balances: make(map[string]map[string]decimal.Decimal),
		curves:   make(map[string]decimal.Decimal),
		pending:  make(map[string]*domain.SettlementInstruction),
		inFlight: make(map[string]bool),
		logger:   slog.Default().With("module", "paper_ledger"),
	}
}

// Launch provisions a curve instance: the full token supply is credited to
// the curve's supply account and an empty reserve account is created.
func (p *PaperLedger) Launch(curveID string, totalSupply decimal.Decimal) error {
	if !totalSupply.IsPositive() {
		return domain.Errf("launch", domain.ErrInvalidParameter,
			"total supply must be positive, got %s", totalSupply)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.curves[curveID]; exists {
		return domain.Errf("launch", domain.ErrInvalidParameter, "curve %s already launched", curveID)
	}
	p.curves[curveID] = totalSupply
	p.credit(domain.CurveSupplyAccount(curveID), domain.TokenAsset(curveID), totalSupply)
	p.credit(domain.CurveReserveAccount(curveID), domain.ReserveAsset, decimal.Zero)

	p.logger.Info("Curve launched", "curve", curveID, "total_supply", totalSupply.String())
	return nil
}

// Deposit credits an account, used to fund traders in paper mode.
func (p *PaperLedger) Deposit(account, asset string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credit(account, asset, amount)
}

// Fetch returns a consistent snapshot of a curve's supply and reserves.
func (p *PaperLedger) Fetch(_ context.Context, curveID string) (domain.ReserveState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	total, ok := p.curves[curveID]
	if !ok {
		return domain.ReserveState{}, domain.Errf("fetch", domain.ErrNotFound, "curve %s", curveID)
	}

	held := p.balance(domain.CurveSupplyAccount(curveID), domain.TokenAsset(curveID))
	return domain.ReserveState{
		CurveID:       curveID,
		CurrentSupply: total.Sub(held), // circulating = ceiling - still held by the curve
		TotalSupply:   total,
		SolReserves:   p.balance(domain.CurveReserveAccount(curveID), domain.ReserveAsset),
	}, nil
}

// Balance returns an account's balance for one asset.
func (p *PaperLedger) Balance(_ context.Context, account, asset string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance(account, asset), nil
}

// Submit accepts an instruction for settlement. Only one submission per
// curve may be in flight: a concurrent second submission fails immediately
// and the caller must re-quote.
func (p *PaperLedger) Submit(_ context.Context, instr *domain.SettlementInstruction) (*domain.SettlementReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.curves[instr.CurveID]; !ok {
		return nil, domain.Errf("submit", domain.ErrNotFound, "curve %s", instr.CurveID)
	}
	if p.inFlight[instr.CurveID] {
		return nil, domain.Errf("submit", domain.ErrSettlementFailure,
			"curve %s already has a submission in flight", instr.CurveID)
	}
	if len(instr.Legs) == 0 {
		return nil, domain.Errf("submit", domain.ErrSettlementFailure, "instruction %s has no legs", instr.ID)
	}

	p.inFlight[instr.CurveID] = true
	p.pending[instr.ID] = instr

	return &domain.SettlementReceipt{
		ID:            uuid.NewString(),
		InstructionID: instr.ID,
		SubmittedAt:   time.Now(),
	}, nil
}

// Confirm applies the pending instruction atomically. Every debit is checked
// before any balance moves; a single uncoverable leg rejects the whole
// instruction and no leg is applied.
func (p *PaperLedger) Confirm(_ context.Context, receipt *domain.SettlementReceipt) (domain.SettlementStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	instr, ok := p.pending[receipt.InstructionID]
	if !ok {
		return "", domain.Errf("confirm", domain.ErrSettlementFailure,
			"no pending instruction %s", receipt.InstructionID)
	}
	delete(p.pending, receipt.InstructionID)
	delete(p.inFlight, instr.CurveID)

	// Validate all debits first.
	for _, leg := range instr.Legs {
		if p.balance(leg.FromAccount, leg.Asset).LessThan(leg.Amount) {
			p.logger.Warn("Instruction rejected",
				"instruction", instr.ID,
				"account", leg.FromAccount,
				"asset", leg.Asset)
			return domain.SettlementRejected, nil
		}
	}

	// Apply all legs.
	for _, leg := range instr.Legs {
		p.debit(leg.FromAccount, leg.Asset, leg.Amount)
		p.credit(leg.ToAccount, leg.Asset, leg.Amount)
	}

	return domain.SettlementConfirmed, nil
}

// Snapshot returns a copy of all balances (for state dumps and tests).
func (p *PaperLedger) Snapshot() map[string]map[string]decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]map[string]decimal.Decimal, len(p.balances))
	for acc, assets := range p.balances {
		cp := make(map[string]decimal.Decimal, len(assets))
		for asset, amt := range assets {
			cp[asset] = amt
		}
		out[acc] = cp
	}
	return out
}

// balance, credit and debit require p.mu held.

func (p *PaperLedger) balance(account, asset string) decimal.Decimal {
	return p.balances[account][asset]
}

func (p *PaperLedger) credit(account, asset string, amount decimal.Decimal) {
	assets, ok := p.balances[account]
	if !ok {
		assets = make(map[string]decimal.Decimal)
		p.balances[account] = assets
	}
	assets[asset] = assets[asset].Add(amount)
}

func (p *PaperLedger) debit(account, asset string, amount decimal.Decimal) {
	p.balances[account][asset] = p.balances[account][asset].Sub(amount)
}
