package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"launchpad_go/internal/app"
	"launchpad_go/internal/domain"
	"launchpad_go/internal/execution"
	"launchpad_go/internal/executor"
	"launchpad_go/internal/infra"
	"launchpad_go/internal/infra/ledger"
	"launchpad_go/internal/quote"
	"launchpad_go/internal/service"

	"github.com/shopspring/decimal"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Settlement Layer Selection
	var (
		settle      domain.SettlementLayer
		states      domain.ReserveStateProvider
		balances    domain.BalanceProvider
		provisioner service.Provisioner
	)

	switch cfg.Ledger.Mode {
	case infra.LedgerModeGateway:
		gw := ledger.NewClient(cfg.Ledger.WSURL)
		if err := gw.Connect(ctx); err != nil {
			slog.Error("❌ Gateway connection failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer gw.Disconnect()
		settle, states, balances, provisioner = gw, gw, gw, gw
		slog.InfoContext(ctx, "✅ Ledger gateway connected", slog.String("url", cfg.Ledger.WSURL))

	default: // paper
		paper := execution.NewPaperLedger()
		// Re-provision curves for tokens already in the registry; paper
		// reserve state does not survive restarts.
		if tokens, err := bootstrap.Storage.GetAllTokens(); err == nil {
			for _, tok := range tokens {
				if err := paper.Launch(tok.ID, tok.TotalSupply); err != nil {
					slog.Warn("Failed to re-provision curve", slog.String("curve", tok.ID), slog.Any("error", err))
				}
			}
		}
		settle, states, balances, provisioner = paper, paper, paper, paper
		slog.InfoContext(ctx, "✅ Paper settlement ledger ready")
	}

	// 5. Pricing Core
	quotes := quote.NewEngine()
	exec := executor.New(states, settle, balances, quotes)
	svc := service.NewLaunchService(bootstrap.Storage, states, exec, quotes, provisioner, cfg.Trading.MaxSlippagePct)

	// 6. Launch tokens listed in config (skip symbols already launched)
	launched := make(map[string]bool)
	if tokens, err := bootstrap.Storage.GetAllTokens(); err == nil {
		for _, tok := range tokens {
			launched[tok.Symbol] = true
		}
	}
	for _, t := range cfg.Launch.Tokens {
		if launched[t.Symbol] {
			continue
		}
		curveCfg := domain.CurveConfig{
			Type:      domain.CurveType(t.CurveType),
			BasePrice: t.BasePrice,
			Slope:     t.Slope,
			Exponent:  t.Exponent,
			LogBase:   t.LogBase,
		}
		token, err := svc.LaunchToken(ctx, service.LaunchRequest{
			Symbol:      t.Symbol,
			Name:        t.Name,
			Curve:       curveCfg,
			TotalSupply: t.TotalSupply,
		})
		if err != nil {
			slog.Error("Failed to launch token", slog.String("symbol", t.Symbol), slog.Any("error", err))
			continue
		}
		slog.InfoContext(ctx, "✅ Token launched", slog.String("symbol", token.Symbol), slog.String("curve", token.ID))
	}

	// 7. Background logo sync
	logoURLs := make(map[string]string)
	for _, t := range cfg.Launch.Tokens {
		if t.LogoURL != "" {
			logoURLs[t.Symbol] = t.LogoURL
		}
	}
	go bootstrap.SyncLogos(ctx, logoURLs)

	// 8. Reference Rate Client (display-only; the pricing core never reads it)
	rateClient := infra.NewFiatRateClientWithConfig(func(rate decimal.Decimal) {
		slog.Debug("Reference rate updated", slog.String("sol_usd", rate.String()))
	}, cfg.Rates.URL, cfg.Rates.PollIntervalSec)
	if err := rateClient.Start(ctx); err != nil {
		slog.Error("Failed to start rate client", slog.Any("error", err))
	}
	defer rateClient.Stop()

	slog.InfoContext(ctx, "✨ Launchpad engine operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
