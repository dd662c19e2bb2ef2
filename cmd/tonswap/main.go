// Package main is the entry point for the TON swap terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/lbhlabs/tonswap/business/catalog"
	catalogDI "github.com/lbhlabs/tonswap/business/catalog/di"
	"github.com/lbhlabs/tonswap/business/swap"
	swapDI "github.com/lbhlabs/tonswap/business/swap/di"
	"github.com/lbhlabs/tonswap/internal/apm"
	"github.com/lbhlabs/tonswap/internal/config"
	"github.com/lbhlabs/tonswap/internal/health"
	"github.com/lbhlabs/tonswap/internal/logger"
	"github.com/lbhlabs/tonswap/internal/metrics"
	"github.com/lbhlabs/tonswap/internal/monolith"
	"github.com/lbhlabs/tonswap/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tonswap %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Swap.TUIMode = tuiMode

	logLevel := logger.ParseLevel(cfg.App.LogLevel)

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting TON swap terminal",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		traceOpts := []apm.TracerOption{apm.WithServiceName(cfg.Telemetry.ServiceName)}
		if cfg.Telemetry.OTLPEndpoint != "" {
			traceOpts = append(traceOpts, apm.WithCollector(cfg.Telemetry.OTLPEndpoint, log))
		} else {
			traceOpts = append(traceOpts, apm.WithEmpty())
		}
		traceProvider = apm.NewTraceProvider(log, traceOpts...)

		if _, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		); err != nil {
			log.Warn(ctx, "failed to initialize metrics", "error", err)
		} else {
			go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort)))
			log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
		}
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Modules in dependency order
	modules := []monolith.Module{
		&catalog.Module{}, // Populates the shared asset registry
		&swap.Module{},    // Depends on the catalog's assets
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if cfg.Health.Enabled {
		healthServer := health.NewServer(cfg.Health.Port, version)
		registerHealthChecks(healthServer, mono)
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			log.Info(ctx, "health server started", "port", cfg.Health.Port)
			defer healthServer.Stop(ctx)
		}
	}

	if tuiMode {
		startFunc := func() error {
			return mono.StartModules(ctx, modules...)
		}
		return runTUI(ctx, cfg, mono, startFunc)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	return runCLI(ctx, mono, log)
}

// registerHealthChecks ties readiness to the two upstream dependencies:
// a populated asset catalog and a live wallet bridge session.
func registerHealthChecks(server *health.Server, mono monolith.Monolith) {
	server.RegisterCheck("catalog", func(ctx context.Context) (bool, string) {
		if mono.AssetRegistry().Count() == 0 {
			return false, "asset catalog empty"
		}
		return true, ""
	})

	server.RegisterCheck("bridge", func(ctx context.Context) (bool, string) {
		wallet := swapDI.GetWallet(mono.Services())
		conn, ok := wallet.(interface{ Connected() bool })
		if !ok || !conn.Connected() {
			return false, "bridge session down"
		}
		if wallet.Address() == "" {
			return true, "wallet not yet approved"
		}
		return true, ""
	})
}

// runCLI runs headless: modules are up, the registry is populated and the
// services are reachable over the health and metrics endpoints. Useful for
// verifying config and connectivity without a terminal.
func runCLI(ctx context.Context, mono monolith.Monolith, log *logger.Logger) error {
	log.Info(ctx, "all modules started",
		"assets", mono.AssetRegistry().Count(),
		"wallet", swapDI.GetSwapService(mono.Services()).View().WalletAddress,
	)

	<-ctx.Done()

	log.Info(ctx, "shutting down")
	return nil
}

func runTUI(ctx context.Context, cfg *config.Config, mono monolith.Monolith, startFunc func() error) error {
	// Channel to receive the welcome-screen completion signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	model := ui.New(ui.Deps{
		Catalog:             catalogDI.GetCatalogService(mono.Services()),
		Swap:                swapDI.GetSwapService(mono.Services()),
		PreferredAskAddress: cfg.Swap.PreferredAskAddress,
		DefaultAskSymbol:    cfg.Swap.DefaultAskSymbol,
	})

	// Create and start the TUI program immediately (shows welcome screen)
	p := tea.NewProgram(model, tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		err := startFunc()
		ui.Send(ui.ModulesStartedMsg{Err: err})
		if err != nil {
			errCh <- err
			return
		}

		<-ctx.Done()
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
