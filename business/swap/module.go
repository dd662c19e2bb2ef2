// Package swap implements the swap bounded context: quoting, session
// lifecycle, transaction composition and wallet submission.
package swap

import (
	"context"
	"time"

	"github.com/lbhlabs/tonswap/business/swap/app"
	swapDI "github.com/lbhlabs/tonswap/business/swap/di"
	"github.com/lbhlabs/tonswap/business/swap/infra/router"
	"github.com/lbhlabs/tonswap/business/swap/infra/stonfi"
	"github.com/lbhlabs/tonswap/business/swap/infra/tonconnect"
	"github.com/lbhlabs/tonswap/internal/config"
	"github.com/lbhlabs/tonswap/internal/di"
	"github.com/lbhlabs/tonswap/internal/logger"
	"github.com/lbhlabs/tonswap/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register QuoteProvider (STON simulate) - private dependency
	di.RegisterToken(c, swapDI.QuoteProvider, func(sr di.ServiceRegistry) app.QuoteProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		simulator, err := stonfi.NewSimulator(stonfi.SimulatorConfig{
			BaseURL:           cfg.Ston.BaseURL,
			Timeout:           cfg.Ston.Timeout,
			RequestsPerMinute: cfg.Ston.RequestsPerMinute,
		}, log)
		if err != nil {
			panic("failed to create ston simulator: " + err.Error())
		}
		return simulator
	})

	// Register TxBuilder (router RPC gateway) - private dependency
	di.RegisterToken(c, swapDI.TxBuilder, func(sr di.ServiceRegistry) app.TxBuilder {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		builder, err := router.NewBuilder(router.BuilderConfig{
			RPCEndpoint: cfg.Router.RPCEndpoint,
			Timeout:     cfg.Router.Timeout,
		}, log)
		if err != nil {
			panic("failed to create router builder: " + err.Error())
		}
		return builder
	})

	// Register Wallet (TON Connect bridge) - private dependency
	di.RegisterToken(c, swapDI.Wallet, func(sr di.ServiceRegistry) app.Wallet {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return tonconnect.NewConnector(tonconnect.Config{
			BridgeURL:    cfg.Wallet.BridgeURL,
			SendTimeout:  cfg.Wallet.SendTimeout,
			WriteTimeout: cfg.Wallet.WriteTimeout,
		}, log)
	})

	// Register SwapService (public - exposed to other modules)
	di.RegisterToken(c, swapDI.SwapService, func(sr di.ServiceRegistry) *app.SwapService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewSwapService(
			swapDI.GetQuoteProvider(sr),
			swapDI.GetTxBuilder(sr),
			swapDI.GetWallet(sr),
			cfg.Swap.SlippageDecimal(),
			cfg.Swap.ApprovalWindow,
			log,
		)
	})

	return nil
}

// Startup connects the wallet bridge. A bridge failure is not fatal; the
// session simply reports the wallet as disconnected until a retry lands.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	wallet := swapDI.GetWallet(mono.Services())
	if connector, ok := wallet.(interface{ Connect(context.Context) error }); ok {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := connector.Connect(connectCtx); err != nil {
			log.Warn(ctx, "bridge connection failed, will retry in background", "error", err)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-time.After(5 * time.Second):
						if err := connector.Connect(ctx); err != nil {
							log.Warn(ctx, "bridge retry failed", "error", err)
						} else {
							log.Info(ctx, "bridge connected")
							return
						}
					}
				}
			}()
		}
	}

	log.Info(ctx, "swap module started")
	return nil
}
