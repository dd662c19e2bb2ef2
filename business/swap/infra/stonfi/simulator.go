// Package stonfi implements the quote provider port against the STON API.
package stonfi

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apm"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/internal/circuitbreaker"
	"github.com/lbhlabs/tonswap/internal/httpclient"
	"github.com/lbhlabs/tonswap/internal/logger"
	"github.com/lbhlabs/tonswap/internal/ratelimit"
)

const (
	tracerName = "swap.stonfi"

	simulateEndpoint = "/v1/swap/simulate"

	defaultTimeout = 10 * time.Second
)

// SimulatorConfig holds configuration for the simulate client.
type SimulatorConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Simulator obtains swap quotes from the STON simulate endpoint.
type Simulator struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*domain.Quote]
	logger  logger.LoggerInterface
	tracer  apm.Tracer
}

// NewSimulator creates a new simulate client.
func NewSimulator(cfg SimulatorConfig, log logger.LoggerInterface) (*Simulator, error) {
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

	breakerCfg := circuitbreaker.DefaultConfig("ston-simulate")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Simulator{
		client:  client,
		limiter: ratelimit.New(rpm),
		breaker: circuitbreaker.New[*domain.Quote](breakerCfg),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// simulateRequest is the simulate endpoint request body. Unit amounts travel
// as decimal strings.
type simulateRequest struct {
	OfferAddress      string `json:"offer_address"`
	AskAddress        string `json:"ask_address"`
	SlippageTolerance string `json:"slippage_tolerance"`
	OfferUnits        string `json:"offer_units"`
}

type simulateResponse struct {
	OfferAddress string         `json:"offer_address"`
	AskAddress   string         `json:"ask_address"`
	OfferUnits   string         `json:"offer_units"`
	AskUnits     string         `json:"ask_units"`
	MinAskUnits  string         `json:"min_ask_units"`
	SwapRate     string         `json:"swap_rate"`
	Router       routerResponse `json:"router"`
}

type routerResponse struct {
	Address           string `json:"address"`
	PtonMasterAddress string `json:"pton_master_address"`
	PoolAddress       string `json:"pool_address"`
}

// Simulate requests a quote for the pair and amount. Transport failures, no
// route and malformed responses all surface as QuoteUnavailable.
func (s *Simulator) Simulate(ctx context.Context, offer, ask *asset.Asset, offerUnits *big.Int, slippage decimal.Decimal) (*domain.Quote, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "stonfi.simulate",
		trace.WithAttributes(
			attribute.String("offer", offer.Address()),
			attribute.String("ask", ask.Address()),
			attribute.String("offer_units", offerUnits.String()),
		),
	)
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		span.NoticeError(err)
		return nil, apperror.New(apperror.CodeQuoteUnavailable, apperror.WithCause(err))
	}

	quote, err := s.breaker.Execute(func() (*domain.Quote, error) {
		return s.fetchQuote(ctx, offer, ask, offerUnits, slippage)
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithCause(err),
				apperror.WithContext("quote service circuit open"))
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("min_ask_units", quote.MinAskUnits.String()))

	return quote, nil
}

func (s *Simulator) fetchQuote(ctx context.Context, offer, ask *asset.Asset, offerUnits *big.Int, slippage decimal.Decimal) (*domain.Quote, error) {
	req := simulateRequest{
		OfferAddress:      offer.Address(),
		AskAddress:        ask.Address(),
		SlippageTolerance: slippage.String(),
		OfferUnits:        offerUnits.String(),
	}

	var result simulateResponse
	resp, err := s.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "swap_simulate")),
		httpclient.WithResponseErrorHandler(stonErrorHandler),
	).
		SetBody(req).
		SetResult(&result).
		Post(ctx, simulateEndpoint)

	if err != nil {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("simulate call failed"))
	}

	if resp.IsError() {
		// 404 means the service found no liquidity path for the pair.
		if resp.StatusCode == 404 {
			return nil, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithContext("no route for pair"))
		}
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	return result.toQuote()
}

// toQuote validates the response and converts it to the domain model.
func (r *simulateResponse) toQuote() (*domain.Quote, error) {
	if r.Router.Address == "" {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext("response missing router address"))
	}

	offerUnits, ok := new(big.Int).SetString(r.OfferUnits, 10)
	if !ok {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext("malformed offer_units "+r.OfferUnits))
	}
	minAskUnits, ok := new(big.Int).SetString(r.MinAskUnits, 10)
	if !ok {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext("malformed min_ask_units "+r.MinAskUnits))
	}

	var askUnits *big.Int
	if r.AskUnits != "" {
		askUnits, ok = new(big.Int).SetString(r.AskUnits, 10)
		if !ok {
			return nil, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithContext("malformed ask_units "+r.AskUnits))
		}
	}

	swapRate := decimal.Zero
	if r.SwapRate != "" {
		if d, err := decimal.NewFromString(r.SwapRate); err == nil {
			swapRate = d
		}
	}

	return &domain.Quote{
		OfferAddress: r.OfferAddress,
		AskAddress:   r.AskAddress,
		OfferUnits:   offerUnits,
		AskUnits:     askUnits,
		MinAskUnits:  minAskUnits,
		SwapRate:     swapRate,
		Router: domain.RouterInfo{
			Address:           r.Router.Address,
			PtonMasterAddress: r.Router.PtonMasterAddress,
			PoolAddress:       r.Router.PoolAddress,
		},
	}, nil
}
