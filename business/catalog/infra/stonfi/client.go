// Package stonfi implements the asset directory port against the STON API.
package stonfi

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lbhlabs/tonswap/business/catalog/domain"
	"github.com/lbhlabs/tonswap/internal/apm"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/internal/circuitbreaker"
	"github.com/lbhlabs/tonswap/internal/httpclient"
	"github.com/lbhlabs/tonswap/internal/logger"
	"github.com/lbhlabs/tonswap/internal/ratelimit"
)

const (
	tracerName = "catalog.stonfi"

	assetsEndpoint = "/v1/assets/query"

	defaultTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the directory client.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Tiers             []domain.Tier
}

// DirectoryClient fetches the tradable asset list from the STON API.
type DirectoryClient struct {
	client    httpclient.Client
	limiter   *ratelimit.Limiter
	breaker   *circuitbreaker.CircuitBreaker[[]*asset.Asset]
	condition string
	logger    logger.LoggerInterface
	tracer    apm.Tracer
}

// NewDirectoryClient creates a new directory client.
func NewDirectoryClient(cfg ClientConfig, log logger.LoggerInterface) (*DirectoryClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := apm.NewTracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("stonfi"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer.GetTracer(), httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	breakerCfg := circuitbreaker.DefaultConfig("ston-directory")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &DirectoryClient{
		client:    client,
		limiter:   ratelimit.New(rpm),
		breaker:   circuitbreaker.New[[]*asset.Asset](breakerCfg),
		condition: domain.Condition(cfg.Tiers),
		logger:    log,
		tracer:    tracer,
	}, nil
}

// ListAssets retrieves the assets matching the liquidity condition.
func (c *DirectoryClient) ListAssets(ctx context.Context) ([]*asset.Asset, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "stonfi.list_assets",
		trace.WithAttributes(attribute.String("condition", c.condition)),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.NoticeError(err)
		return nil, apperror.New(apperror.CodeCatalogUnavailable, apperror.WithCause(err))
	}

	assets, err := c.breaker.Execute(func() ([]*asset.Asset, error) {
		return c.fetchAssets(ctx)
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.New(apperror.CodeCircuitOpen, apperror.WithCause(err))
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("assets", len(assets)))

	return assets, nil
}

func (c *DirectoryClient) fetchAssets(ctx context.Context) ([]*asset.Asset, error) {
	var result assetQueryResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "assets_query")),
		httpclient.WithResponseErrorHandler(stonErrorHandler),
	).
		SetQueryParam("condition", c.condition).
		SetResult(&result).
		Get(ctx, assetsEndpoint)

	if err != nil {
		return nil, apperror.New(apperror.CodeStonAPIError,
			apperror.WithCause(err),
			apperror.WithContext("failed to query asset directory"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeStonAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	assets := make([]*asset.Asset, 0, len(result.AssetList))
	for i := range result.AssetList {
		a, err := result.AssetList[i].toAsset()
		if err != nil {
			return nil, apperror.New(apperror.CodeMalformedAsset, apperror.WithCause(err))
		}
		assets = append(assets, a)
	}

	c.logger.Debug(ctx, "fetched asset directory", "assets", len(assets))

	return assets, nil
}
