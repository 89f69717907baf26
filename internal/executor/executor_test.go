package executor

import (
	"context"
	"errors"
	"testing"

	"launchpad_go/internal/domain"
	"launchpad_go/internal/quote"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// stubStates returns queued reserve states in fetch order, repeating the
// last one once the queue is drained.
type stubStates struct {
	queue   []domain.ReserveState
	fetches int
}

func (s *stubStates) Fetch(_ context.Context, curveID string) (domain.ReserveState, error) {
	if len(s.queue) == 0 {
		return domain.ReserveState{}, domain.Errf("fetch", domain.ErrNotFound, "curve %s", curveID)
	}
	s.fetches++
	if len(s.queue) > 1 {
		st := s.queue[0]
		s.queue = s.queue[1:]
		return st, nil
	}
	return s.queue[0], nil
}

type stubLedger struct {
	submitCalled  bool
	confirmStatus domain.SettlementStatus
	submitErr     error
}

func (l *stubLedger) Submit(_ context.Context, instr *domain.SettlementInstruction) (*domain.SettlementReceipt, error) {
	l.submitCalled = true
	if l.submitErr != nil {
		return nil, l.submitErr
	}
	return &domain.SettlementReceipt{ID: "rcpt-1", InstructionID: instr.ID}, nil
}

func (l *stubLedger) Confirm(_ context.Context, _ *domain.SettlementReceipt) (domain.SettlementStatus, error) {
	if l.confirmStatus == "" {
		return domain.SettlementConfirmed, nil
	}
	return l.confirmStatus, nil
}

type stubBalances map[string]map[string]decimal.Decimal

func (b stubBalances) Balance(_ context.Context, account, asset string) (decimal.Decimal, error) {
	return b[account][asset], nil
}

func testFixture() (domain.CurveConfig, domain.ReserveState) {
	cfg := domain.NewLinearCurve(dec("0.001"), dec("0.0000001"))
	state := domain.ReserveState{
		CurveID:       "tok-1",
		CurrentSupply: decimal.NewFromInt(100_000),
		TotalSupply:   decimal.NewFromInt(1_000_000),
		SolReserves:   decimal.NewFromInt(500),
	}
	return cfg, state
}

func richTrader(cost decimal.Decimal) stubBalances {
	return stubBalances{
		"alice": {
			domain.ReserveAsset:        cost.Mul(dec("10")),
			domain.TokenAsset("tok-1"): decimal.NewFromInt(1_000_000),
		},
	}
}

func TestPrepare_Bounds(t *testing.T) {
	cfg, state := testFixture()
	eng := quote.NewEngine()
	x := New(&stubStates{queue: []domain.ReserveState{state}}, &stubLedger{}, stubBalances{}, eng)

	q, err := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	t.Run("buy max cost", func(t *testing.T) {
		bt, err := x.Prepare(q, domain.TradeIntent{
			Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy,
			SlippageBoundPct: dec("1"),
		})
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		want := q.TotalCost.Mul(dec("1.01"))
		if !bt.MaxCost.Equal(want) {
			t.Errorf("MaxCost: expected %s, got %s", want, bt.MaxCost)
		}
	})

	t.Run("sell min return", func(t *testing.T) {
		sq, err := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionSell)
		if err != nil {
			t.Fatalf("sell quote failed: %v", err)
		}
		bt, err := x.Prepare(sq, domain.TradeIntent{
			Account: "alice", Amount: sq.Amount, Direction: domain.DirectionSell,
			SlippageBoundPct: dec("2"),
		})
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		want := sq.TotalCost.Mul(dec("0.98"))
		if !bt.MinReturn.Equal(want) {
			t.Errorf("MinReturn: expected %s, got %s", want, bt.MinReturn)
		}
	})

	t.Run("amount mismatch", func(t *testing.T) {
		_, err := x.Prepare(q, domain.TradeIntent{
			Account: "alice", Amount: decimal.NewFromInt(999), Direction: domain.DirectionBuy,
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("negative slippage bound", func(t *testing.T) {
		_, err := x.Prepare(q, domain.TradeIntent{
			Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy,
			SlippageBoundPct: dec("-1"),
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestBuildInstruction_Legs(t *testing.T) {
	cfg, state := testFixture()
	eng := quote.NewEngine()

	q, err := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	x := New(&stubStates{queue: []domain.ReserveState{state}}, &stubLedger{}, richTrader(q.TotalCost), eng)

	bt, err := x.Prepare(q, domain.TradeIntent{Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	instr, err := x.BuildInstruction(context.Background(), state, bt)
	if err != nil {
		t.Fatalf("BuildInstruction failed: %v", err)
	}

	if len(instr.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(instr.Legs))
	}
	// Reserve currency: trader -> curve reserve account.
	if instr.Legs[0].FromAccount != "alice" || instr.Legs[0].Asset != domain.ReserveAsset {
		t.Errorf("unexpected first leg: %+v", instr.Legs[0])
	}
	if !instr.Legs[0].Amount.Equal(q.TotalCost) {
		t.Errorf("cost leg amount: expected %s, got %s", q.TotalCost, instr.Legs[0].Amount)
	}
	// Tokens: curve supply account -> trader.
	if instr.Legs[1].ToAccount != "alice" || instr.Legs[1].Asset != domain.TokenAsset("tok-1") {
		t.Errorf("unexpected second leg: %+v", instr.Legs[1])
	}
}

func TestBuildInstruction_InsufficientBalance(t *testing.T) {
	cfg, state := testFixture()
	eng := quote.NewEngine()

	q, _ := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	poor := stubBalances{"bob": {domain.ReserveAsset: dec("0.0001")}}
	x := New(&stubStates{queue: []domain.ReserveState{state}}, &stubLedger{}, poor, eng)

	bt, _ := x.Prepare(q, domain.TradeIntent{Account: "bob", Amount: q.Amount, Direction: domain.DirectionBuy})
	_, err := x.BuildInstruction(context.Background(), state, bt)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestBuildInstruction_InsufficientLiquidity(t *testing.T) {
	cfg, state := testFixture()
	state.SolReserves = dec("0.0001") // cannot cover the sell return
	eng := quote.NewEngine()

	q, err := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionSell)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	x := New(&stubStates{queue: []domain.ReserveState{state}}, &stubLedger{}, richTrader(q.TotalCost), eng)

	bt, _ := x.Prepare(q, domain.TradeIntent{Account: "alice", Amount: q.Amount, Direction: domain.DirectionSell})
	_, err = x.BuildInstruction(context.Background(), state, bt)
	if !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Errorf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestExecute_RoundTripUnchangedState(t *testing.T) {
	cfg, state := testFixture()
	eng := quote.NewEngine()
	ledger := &stubLedger{}

	q, err := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	x := New(&stubStates{queue: []domain.ReserveState{state}}, ledger, richTrader(q.TotalCost), eng)

	// No intervening state change: a zero slippage bound must still settle.
	res, err := x.Execute(context.Background(), cfg, q, domain.TradeIntent{
		Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy,
		SlippageBoundPct: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Status != domain.TradeStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", res.Status)
	}
	if !ledger.submitCalled {
		t.Error("expected a submission")
	}
	if !res.ExecutedCost.Equal(q.TotalCost) {
		t.Errorf("executed cost: expected %s, got %s", q.TotalCost, res.ExecutedCost)
	}
}

func TestExecute_SlippageExceeded_NeverSubmits(t *testing.T) {
	// A steep curve so the intervening supply move prices well outside the
	// bound.
	cfg := domain.NewLinearCurve(dec("0.001"), dec("0.001"))
	_, state := testFixture()
	eng := quote.NewEngine()
	ledger := &stubLedger{}

	q, err := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	// The price moves sharply between quote and submit: the re-validation
	// fetch sees a much higher supply ratio.
	moved := state
	moved.CurrentSupply = decimal.NewFromInt(900_000)
	states := &stubStates{queue: []domain.ReserveState{state, moved}}

	x := New(states, ledger, richTrader(q.TotalCost), eng)

	_, err = x.Execute(context.Background(), cfg, q, domain.TradeIntent{
		Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy,
		SlippageBoundPct: dec("0.5"),
	})
	if !errors.Is(err, domain.ErrSlippageExceeded) {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
	if ledger.submitCalled {
		t.Error("settlement layer must not be called after a slippage abort")
	}
	if !domain.IsRetriable(err) {
		t.Error("slippage abort should be retriable via a fresh quote")
	}
}

func TestSubmitAndConfirm_RejectedIsFailure(t *testing.T) {
	cfg, state := testFixture()
	eng := quote.NewEngine()
	ledger := &stubLedger{confirmStatus: domain.SettlementRejected}

	q, _ := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	x := New(&stubStates{queue: []domain.ReserveState{state}}, ledger, richTrader(q.TotalCost), eng)

	_, err := x.Execute(context.Background(), cfg, q, domain.TradeIntent{
		Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy,
		SlippageBoundPct: dec("5"),
	})
	if !errors.Is(err, domain.ErrSettlementFailure) {
		t.Errorf("expected ErrSettlementFailure, got %v", err)
	}
}

func TestSubmitAndConfirm_PartialIsFailure(t *testing.T) {
	cfg, state := testFixture()
	eng := quote.NewEngine()
	ledger := &stubLedger{confirmStatus: domain.SettlementPartial}

	q, _ := eng.GetQuote(cfg, state, decimal.NewFromInt(1000), domain.DirectionBuy)
	x := New(&stubStates{queue: []domain.ReserveState{state}}, ledger, richTrader(q.TotalCost), eng)

	_, err := x.Execute(context.Background(), cfg, q, domain.TradeIntent{
		Account: "alice", Amount: q.Amount, Direction: domain.DirectionBuy,
		SlippageBoundPct: dec("5"),
	})
	if !errors.Is(err, domain.ErrSettlementFailure) {
		t.Errorf("partial application must surface as settlement failure, got %v", err)
	}
}
