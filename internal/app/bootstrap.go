package app

import (
	"context"
	"log/slog"
	"sync"

	"launchpad_go/internal/domain"
	"launchpad_go/internal/infra"
	"launchpad_go/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Logos   *infra.LogoFetcher
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Launchpad...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Initialize Logo Fetcher
	logos, err := infra.NewLogoFetcher()
	if err != nil {
		return err
	}
	b.Logos = logos
	slog.Info("✅ Logo fetcher ready")

	return nil
}

// SyncLogos fetches missing token logos in the background.
func (b *Bootstrap) SyncLogos(ctx context.Context, logoURLs map[string]string) {
	slog.Info("🔄 Starting logo synchronization...")

	tokens, err := b.Storage.GetAllTokens()
	if err != nil {
		slog.Error("Failed to list tokens for logo sync", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, token := range tokens {
		url, ok := logoURLs[token.Symbol]
		if !ok || token.LogoPath != "" {
			continue
		}

		wg.Add(1)
		go func(tok domain.TokenInfo, url string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			path, err := b.Logos.FetchLogo(tok.Symbol, url)
			if err != nil {
				slog.Warn("Failed to fetch logo", slog.String("symbol", tok.Symbol), slog.Any("error", err))
				return
			}
			if err := b.Storage.UpdateLogoPath(tok.ID, path); err != nil {
				slog.Error("Failed to record logo path", slog.String("symbol", tok.Symbol), slog.Any("error", err))
			}
		}(token, url)
	}

	wg.Wait()
	slog.Info("✨ Logo synchronization completed")
}
