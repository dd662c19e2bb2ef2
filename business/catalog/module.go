// Package catalog implements the asset catalog bounded context.
package catalog

import (
	"context"

	"github.com/lbhlabs/tonswap/business/catalog/app"
	catalogDI "github.com/lbhlabs/tonswap/business/catalog/di"
	"github.com/lbhlabs/tonswap/business/catalog/domain"
	"github.com/lbhlabs/tonswap/business/catalog/infra/stonfi"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/internal/config"
	"github.com/lbhlabs/tonswap/internal/di"
	"github.com/lbhlabs/tonswap/internal/logger"
	"github.com/lbhlabs/tonswap/internal/monolith"
)

// Module implements the catalog bounded context.
type Module struct{}

// RegisterServices registers all catalog services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register AssetDirectory (STON API) - private dependency
	di.RegisterToken(c, catalogDI.AssetDirectory, func(sr di.ServiceRegistry) app.AssetDirectory {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		tiers := make([]domain.Tier, 0, len(cfg.Swap.LiquidityTiers))
		for _, s := range cfg.Swap.LiquidityTiers {
			// Tier names were validated at config load
			if t, err := domain.ParseTier(s); err == nil {
				tiers = append(tiers, t)
			}
		}

		clientCfg := stonfi.ClientConfig{
			BaseURL:           cfg.Ston.BaseURL,
			Timeout:           cfg.Ston.Timeout,
			RequestsPerMinute: cfg.Ston.RequestsPerMinute,
			Tiers:             tiers,
		}

		directory, err := stonfi.NewDirectoryClient(clientCfg, log)
		if err != nil {
			panic("failed to create ston directory client: " + err.Error())
		}
		return directory
	})

	// Register CatalogService (public - exposed to other modules)
	di.RegisterToken(c, catalogDI.CatalogService, func(sr di.ServiceRegistry) *app.CatalogService {
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)
		directory := catalogDI.GetAssetDirectory(sr)
		return app.NewCatalogService(directory, registry, log)
	})

	return nil
}

// Startup performs the initial catalog load. A directory failure is not
// fatal: the UI starts in a degraded state and the load can be retried.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := catalogDI.GetCatalogService(mono.Services())
	if _, err := svc.LoadAssets(ctx); err != nil {
		log.Warn(ctx, "initial catalog load failed, starting degraded", "error", err)
	}

	log.Info(ctx, "catalog module started")
	return nil
}
