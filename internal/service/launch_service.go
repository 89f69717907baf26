// Package service exposes the launch platform's caller-facing API: quoting
// and trade execution by curve instance ID, plus token launch. This is the
// only surface presented upward; HTTP/UI translation lives outside.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"launchpad_go/internal/domain"
	"launchpad_go/internal/executor"
	"launchpad_go/internal/infra"
	"launchpad_go/internal/quote"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TokenStore persists the token registry and trade history, and serves
// immutable curve configs.
type TokenStore interface {
	CreateToken(token *domain.TokenInfo) error
	GetToken(id string) (*domain.TokenInfo, error)
	SaveTrade(record *domain.TradeRecord) error
	Load(curveID string) (domain.CurveConfig, error)
}

// Provisioner creates a curve instance's accounts in the settlement layer.
type Provisioner interface {
	Launch(curveID string, totalSupply decimal.Decimal) error
}

// LaunchRequest describes a token to launch.
type LaunchRequest struct {
	Symbol      string
	Name        string
	Curve       domain.CurveConfig
	TotalSupply decimal.Decimal
}

// LaunchService wires the pricing core to its collaborators.
type LaunchService struct {
	mu          sync.RWMutex
	configCache map[string]domain.CurveConfig

	store       TokenStore
	states      domain.ReserveStateProvider
	exec        *executor.Executor
	quotes      *quote.Engine
	provisioner Provisioner

	maxSlippagePct decimal.Decimal
	metrics        *infra.Metrics
	logger         *slog.Logger
}

// NewLaunchService creates the service. maxSlippagePct caps the bound a
// caller may request; zero means no cap.
func NewLaunchService(store TokenStore, states domain.ReserveStateProvider, exec *executor.Executor, quotes *quote.Engine, provisioner Provisioner, maxSlippagePct decimal.Decimal) *LaunchService {
	return &LaunchService{
		configCache:    make(map[string]domain.CurveConfig),
		store:          store,
		states:         states,
		exec:           exec,
		quotes:         quotes,
		provisioner:    provisioner,
		maxSlippagePct: maxSlippagePct,
		metrics:        infra.GlobalMetrics,
		logger:         slog.Default().With("module", "launch_service"),
	}
}

// loadConfig returns the immutable curve config for an instance, caching
// after the first load.
func (s *LaunchService) loadConfig(curveID string) (domain.CurveConfig, error) {
	s.mu.RLock()
	cfg, ok := s.configCache[curveID]
	s.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	cfg, err := s.store.Load(curveID)
	if err != nil {
		return domain.CurveConfig{}, err
	}

	s.mu.Lock()
	s.configCache[curveID] = cfg
	s.mu.Unlock()
	return cfg, nil
}

// GetQuote prices a trade against the current reserve-state snapshot. The
// quote is a pure computation; abandoning it has no side effects.
func (s *LaunchService) GetQuote(ctx context.Context, curveID string, amount decimal.Decimal, direction domain.Direction) (*domain.Quote, error) {
	cfg, err := s.loadConfig(curveID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.Fetch(ctx, curveID)
	if err != nil {
		return nil, err
	}

	q, err := s.quotes.GetQuote(cfg, state, amount, direction)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordQuote()
	return q, nil
}

// ExecuteTrade quotes, bounds and settles a trade in one call. Exactly one
// settlement submission is attempted; on a slippage abort the caller decides
// whether to retry with a fresh quote.
func (s *LaunchService) ExecuteTrade(ctx context.Context, curveID, account string, amount decimal.Decimal, direction domain.Direction, slippageBoundPct decimal.Decimal) (*domain.TradeResult, error) {
	if s.maxSlippagePct.IsPositive() && slippageBoundPct.GreaterThan(s.maxSlippagePct) {
		return nil, domain.Errf("execute", domain.ErrInvalidAmount,
			"slippage bound %s exceeds maximum %s", slippageBoundPct, s.maxSlippagePct)
	}

	cfg, err := s.loadConfig(curveID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.Fetch(ctx, curveID)
	if err != nil {
		return nil, err
	}

	q, err := s.quotes.GetQuote(cfg, state, amount, direction)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordQuote()

	intent := domain.TradeIntent{
		Account:          account,
		Amount:           amount,
		Direction:        direction,
		SlippageBoundPct: slippageBoundPct,
	}

	started := time.Now()
	result, err := s.exec.Execute(ctx, cfg, q, intent)
	if err != nil {
		s.recordFailure(curveID, account, q, err)
		return nil, err
	}

	s.metrics.RecordTradeConfirmed(time.Since(started).Nanoseconds())
	s.saveRecord(&domain.TradeRecord{
		ID:        result.TradeID,
		TokenID:   curveID,
		Account:   account,
		Direction: string(direction),
		Amount:    amount,
		Cost:      result.ExecutedCost,
		ImpactPct: q.PriceImpactPct,
		Status:    result.Status,
		CreatedAt: result.ExecutedAt,
	})

	// The pre-trade snapshot is stale now; log the refreshed state so the
	// settled reserves are observable.
	if fresh, ferr := s.states.Fetch(ctx, curveID); ferr == nil {
		s.logger.Info("Reserve state refreshed",
			"curve", curveID,
			"current_supply", fresh.CurrentSupply.String(),
			"sol_reserves", fresh.SolReserves.String())
	}

	return result, nil
}

// LaunchToken creates a token with its immutable curve config and provisions
// the curve's accounts in the settlement layer.
func (s *LaunchService) LaunchToken(ctx context.Context, req LaunchRequest) (*domain.TokenInfo, error) {
	if err := req.Curve.Validate(); err != nil {
		return nil, err
	}
	if !req.TotalSupply.IsPositive() {
		return nil, domain.Errf("launch", domain.ErrInvalidParameter,
			"total supply must be positive, got %s", req.TotalSupply)
	}

	token := &domain.TokenInfo{
		ID:          uuid.NewString(),
		Symbol:      req.Symbol,
		Name:        req.Name,
		CurveType:   string(req.Curve.Type),
		BasePrice:   req.Curve.BasePrice,
		Slope:       req.Curve.Slope,
		Exponent:    req.Curve.Exponent,
		LogBase:     req.Curve.LogBase,
		TotalSupply: req.TotalSupply,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateToken(token); err != nil {
		return nil, err
	}
	if err := s.provisioner.Launch(token.ID, req.TotalSupply); err != nil {
		return nil, err
	}

	s.logger.Info("Token launched",
		"curve", token.ID,
		"symbol", token.Symbol,
		"curve_type", token.CurveType,
		"total_supply", req.TotalSupply.String())
	return token, nil
}

func (s *LaunchService) recordFailure(curveID, account string, q *domain.Quote, err error) {
	switch {
	case errors.Is(err, domain.ErrSlippageExceeded):
		s.metrics.RecordSlippageAbort()
	case errors.Is(err, domain.ErrSettlementFailure):
		s.metrics.RecordTradeRejected()
	default:
		s.metrics.RecordError()
	}

	status := domain.TradeStatusFailed
	if errors.Is(err, domain.ErrSettlementFailure) {
		status = domain.TradeStatusRejected
	}
	s.saveRecord(&domain.TradeRecord{
		ID:        uuid.NewString(),
		TokenID:   curveID,
		Account:   account,
		Direction: string(q.Direction),
		Amount:    q.Amount,
		Cost:      q.TotalCost,
		ImpactPct: q.PriceImpactPct,
		Status:    status,
		CreatedAt: time.Now(),
	})
}

func (s *LaunchService) saveRecord(rec *domain.TradeRecord) {
	if err := s.store.SaveTrade(rec); err != nil {
		// History is best-effort; the trade outcome has already been decided.
		s.logger.Warn("Failed to persist trade record", "trade", rec.ID, "error", err)
	}
}
