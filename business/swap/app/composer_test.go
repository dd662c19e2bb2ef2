package app_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/lbhlabs/tonswap/business/swap/app"
	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
)

const wallet = "UQDUserWalletAddress000000000000000000000000007x"

// fakeBuilder records which construction path ran and the params it got.
type fakeBuilder struct {
	lastMethod string
	lastParams app.BuildParams
	err        error
}

func (f *fakeBuilder) build(method string, p app.BuildParams) (*domain.ChainMessage, error) {
	f.lastMethod = method
	f.lastParams = p
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChainMessage{
		To:      p.Router.Address,
		Value:   new(big.Int).Set(p.OfferUnits),
		Payload: "boc:" + p.MinAskUnits.String(),
	}, nil
}

func (f *fakeBuilder) BuildNativeToJetton(ctx context.Context, p app.BuildParams) (*domain.ChainMessage, error) {
	return f.build("native_to_jetton", p)
}

func (f *fakeBuilder) BuildJettonToNative(ctx context.Context, p app.BuildParams) (*domain.ChainMessage, error) {
	return f.build("jetton_to_native", p)
}

func (f *fakeBuilder) BuildJettonToJetton(ctx context.Context, p app.BuildParams) (*domain.ChainMessage, error) {
	return f.build("jetton_to_jetton", p)
}

func validQuote() *domain.Quote {
	return &domain.Quote{
		OfferAddress: "EQOffer",
		AskAddress:   "EQAsk",
		OfferUnits:   big.NewInt(10_000_000_000),
		MinAskUnits:  big.NewInt(495_000_000),
		Router: domain.RouterInfo{
			Address:           "EQRouter",
			PtonMasterAddress: "EQProxy",
		},
	}
}

func TestCompose_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		offer, ask asset.Kind
		wantMethod string
	}{
		{"native_to_jetton", asset.KindNative, asset.KindJetton, "native_to_jetton"},
		{"jetton_to_native", asset.KindJetton, asset.KindNative, "jetton_to_native"},
		{"jetton_to_jetton", asset.KindJetton, asset.KindJetton, "jetton_to_jetton"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := &fakeBuilder{}
			composer := app.NewComposer(builder)

			msg, err := composer.Compose(context.Background(), validQuote(), tt.offer, tt.ask, wallet)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if builder.lastMethod != tt.wantMethod {
				t.Errorf("dispatched to %q, want %q", builder.lastMethod, tt.wantMethod)
			}
			if msg.To != "EQRouter" {
				t.Errorf("message destination = %q", msg.To)
			}
			if builder.lastParams.WalletAddress != wallet {
				t.Errorf("wallet address not forwarded")
			}
		})
	}
}

func TestCompose_NativeToNativeRejected(t *testing.T) {
	composer := app.NewComposer(&fakeBuilder{})

	_, err := composer.Compose(context.Background(), validQuote(), asset.KindNative, asset.KindNative, wallet)
	if !apperror.IsCode(err, apperror.CodeCompositionError) {
		t.Errorf("expected CompositionError, got %v", err)
	}
}

func TestCompose_MissingRouterMetadata(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Quote)
		offer  asset.Kind
		ask    asset.Kind
	}{
		{"no_router_address", func(q *domain.Quote) { q.Router.Address = "" }, asset.KindJetton, asset.KindJetton},
		{"native_leg_without_proxy", func(q *domain.Quote) { q.Router.PtonMasterAddress = "" }, asset.KindNative, asset.KindJetton},
		{"proxyless_native_exit", func(q *domain.Quote) { q.Router.PtonMasterAddress = "" }, asset.KindJetton, asset.KindNative},
		{"no_min_ask_units", func(q *domain.Quote) { q.MinAskUnits = nil }, asset.KindJetton, asset.KindJetton},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := app.NewComposer(&fakeBuilder{})
			q := validQuote()
			tt.mutate(q)

			_, err := composer.Compose(context.Background(), q, tt.offer, tt.ask, wallet)
			if !apperror.IsCode(err, apperror.CodeCompositionError) {
				t.Errorf("expected CompositionError, got %v", err)
			}
		})
	}
}

func TestCompose_JettonToJettonSkipsProxyCheck(t *testing.T) {
	composer := app.NewComposer(&fakeBuilder{})
	q := validQuote()
	q.Router.PtonMasterAddress = ""

	if _, err := composer.Compose(context.Background(), q, asset.KindJetton, asset.KindJetton, wallet); err != nil {
		t.Errorf("jetton pair should not require the proxy: %v", err)
	}
}

func TestCompose_MinAskUnitsPassThrough(t *testing.T) {
	builder := &fakeBuilder{}
	composer := app.NewComposer(builder)
	q := validQuote()

	msg, err := composer.Compose(context.Background(), q, asset.KindNative, asset.KindJetton, wallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The exact quoted value, not a copy-with-rounding, reaches the builder.
	if builder.lastParams.MinAskUnits.Cmp(q.MinAskUnits) != 0 {
		t.Errorf("min ask units changed: %s != %s", builder.lastParams.MinAskUnits, q.MinAskUnits)
	}
	if msg.Payload != "boc:495000000" {
		t.Errorf("payload = %q", msg.Payload)
	}
}
