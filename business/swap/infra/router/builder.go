// Package router implements the transaction builder port against an RPC
// gateway that wraps the DEX router contract.
package router

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lbhlabs/tonswap/business/swap/app"
	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apm"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/httpclient"
	"github.com/lbhlabs/tonswap/internal/logger"
)

const (
	tracerName = "swap.router"

	defaultTimeout = 15 * time.Second

	methodTonToJetton    = "router.build_swap_ton_to_jetton"
	methodJettonToTon    = "router.build_swap_jetton_to_ton"
	methodJettonToJetton = "router.build_swap_jetton_to_jetton"
)

// BuilderConfig holds configuration for the builder client.
type BuilderConfig struct {
	RPCEndpoint string
	Timeout     time.Duration
}

// Builder asks the RPC gateway to assemble the swap message for a locked
// quote. One method per pair category; native legs carry the pton master.
type Builder struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer apm.Tracer
	nextID atomic.Int64
}

// NewBuilder creates a new Builder.
func NewBuilder(cfg BuilderConfig, log logger.LoggerInterface) (*Builder, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := apm.NewTracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("router"),
		httpclient.WithBaseURL(cfg.RPCEndpoint),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer.GetTracer(), httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Builder{
		client: client,
		logger: log,
		tracer: tracer,
	}, nil
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  buildParams `json:"params"`
}

type buildParams struct {
	RouterAddress     string `json:"router_address"`
	PtonMasterAddress string `json:"pton_master_address,omitempty"`
	OfferAddress      string `json:"offer_address,omitempty"`
	AskAddress        string `json:"ask_address,omitempty"`
	OfferUnits        string `json:"offer_units"`
	MinAskUnits       string `json:"min_ask_units"`
	UserWallet        string `json:"user_wallet"`
}

type rpcResponse struct {
	Result *buildResult `json:"result"`
	Error  *rpcError    `json:"error"`
}

type buildResult struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Body  string `json:"body"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// BuildNativeToJetton builds the swap message for a native offer routed
// through the pton proxy into a jetton.
func (b *Builder) BuildNativeToJetton(ctx context.Context, p app.BuildParams) (*domain.ChainMessage, error) {
	return b.call(ctx, methodTonToJetton, buildParams{
		RouterAddress:     p.Router.Address,
		PtonMasterAddress: p.Router.PtonMasterAddress,
		AskAddress:        p.AskAddress,
		OfferUnits:        p.OfferUnits.String(),
		MinAskUnits:       p.MinAskUnits.String(),
		UserWallet:        p.WalletAddress,
	})
}

// BuildJettonToNative builds the swap message for a jetton offer exiting
// to the native coin through the pton proxy.
func (b *Builder) BuildJettonToNative(ctx context.Context, p app.BuildParams) (*domain.ChainMessage, error) {
	return b.call(ctx, methodJettonToTon, buildParams{
		RouterAddress:     p.Router.Address,
		PtonMasterAddress: p.Router.PtonMasterAddress,
		OfferAddress:      p.OfferAddress,
		OfferUnits:        p.OfferUnits.String(),
		MinAskUnits:       p.MinAskUnits.String(),
		UserWallet:        p.WalletAddress,
	})
}

// BuildJettonToJetton builds the jetton-to-jetton swap message. No proxy.
func (b *Builder) BuildJettonToJetton(ctx context.Context, p app.BuildParams) (*domain.ChainMessage, error) {
	return b.call(ctx, methodJettonToJetton, buildParams{
		RouterAddress: p.Router.Address,
		OfferAddress:  p.OfferAddress,
		AskAddress:    p.AskAddress,
		OfferUnits:    p.OfferUnits.String(),
		MinAskUnits:   p.MinAskUnits.String(),
		UserWallet:    p.WalletAddress,
	})
}

func (b *Builder) call(ctx context.Context, method string, params buildParams) (*domain.ChainMessage, error) {
	ctx, span := b.tracer.StartSpanFromContext(ctx, "router.build",
		trace.WithAttributes(attribute.String("method", method)),
	)
	defer span.End()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      b.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var result rpcResponse
	resp, err := b.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("method", method)),
	).
		SetBody(req).
		SetResult(&result).
		Post(ctx, "")

	if err != nil {
		span.NoticeError(err)
		return nil, apperror.New(apperror.CodeRouterBuilderError,
			apperror.WithCause(err),
			apperror.WithContext("builder call failed"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeRouterBuilderError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if result.Error != nil {
		span.NoticeError(result.Error)
		return nil, apperror.New(apperror.CodeRouterBuilderError, apperror.WithCause(result.Error))
	}

	if result.Result == nil {
		return nil, apperror.New(apperror.CodeRouterBuilderError,
			apperror.WithContext("empty builder result"))
	}

	return result.Result.toMessage()
}

// toMessage validates the builder result and converts it to the domain model.
func (r *buildResult) toMessage() (*domain.ChainMessage, error) {
	if r.To == "" || r.Body == "" {
		return nil, apperror.New(apperror.CodeRouterBuilderError,
			apperror.WithContext("result missing destination or body"))
	}

	value, ok := new(big.Int).SetString(r.Value, 10)
	if !ok || value.Sign() < 0 {
		return nil, apperror.New(apperror.CodeRouterBuilderError,
			apperror.WithContext("malformed value "+r.Value))
	}

	return &domain.ChainMessage{
		To:      r.To,
		Value:   value,
		Payload: r.Body,
	}, nil
}
