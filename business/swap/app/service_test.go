package app_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lbhlabs/tonswap/business/swap/app"
	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/internal/logger"
)

var (
	ton = asset.New("EQCM3B12QK1e4yZSf8GtBRT0aLMNyEsBc_DtXWQFj0_lbhlab", asset.KindNative, "TON", 9)
	lbh = asset.New("EQBlqsm144Dq6SjbPI4jjZvA1hqTIP3CvHovbIfW_t-SCALE", asset.KindJetton, "LBH", 9)
)

type fakeQuotes struct {
	err        error
	minAsk     *big.Int
	lastUnits  *big.Int
	during     func()
}

func (f *fakeQuotes) Simulate(ctx context.Context, offer, ask *asset.Asset, offerUnits *big.Int, slippage decimal.Decimal) (*domain.Quote, error) {
	f.lastUnits = new(big.Int).Set(offerUnits)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	minAsk := f.minAsk
	if minAsk == nil {
		minAsk = big.NewInt(495_000_000)
	}
	return &domain.Quote{
		OfferAddress: offer.Address(),
		AskAddress:   ask.Address(),
		OfferUnits:   new(big.Int).Set(offerUnits),
		MinAskUnits:  minAsk,
		Router: domain.RouterInfo{
			Address:           "EQRouter",
			PtonMasterAddress: "EQProxy",
		},
	}, nil
}

type fakeWallet struct {
	addr    string
	ack     string
	err     error
	lastReq domain.TransactionRequest
	during  func()
}

func (f *fakeWallet) Address() string { return f.addr }

func (f *fakeWallet) SendTransaction(ctx context.Context, req domain.TransactionRequest) (string, error) {
	f.lastReq = req
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.ack == "" {
		return "ack", nil
	}
	return f.ack, nil
}

func newService(quotes *fakeQuotes, w *fakeWallet) *app.SwapService {
	return app.NewSwapService(
		quotes,
		&fakeBuilder{},
		w,
		decimal.RequireFromString("0.01"),
		5*time.Minute,
		logger.Discard(),
	)
}

func TestRequestQuote_ScalesAmountExactly(t *testing.T) {
	quotes := &fakeQuotes{}
	svc := newService(quotes, &fakeWallet{})

	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("1.5")

	if err := svc.RequestQuote(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quotes.lastUnits.String() != "1500000000" {
		t.Errorf("offer units = %s, want 1500000000", quotes.lastUnits)
	}
	if svc.View().Phase != domain.PhaseQuoted {
		t.Errorf("phase = %v, want quoted", svc.View().Phase)
	}
}

func TestRequestQuote_BadAmount(t *testing.T) {
	tests := []string{"0", "-1", "abc", ""}

	for _, amount := range tests {
		t.Run("amount_"+amount, func(t *testing.T) {
			svc := newService(&fakeQuotes{}, &fakeWallet{})
			svc.SelectFrom(ton)
			svc.SelectTo(lbh)
			svc.EnterAmount(amount)

			err := svc.RequestQuote(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if amount == "" {
				// Incomplete inputs never reach Quoting.
				if !apperror.IsCode(err, apperror.CodeNotReady) {
					t.Errorf("expected NotReady, got %v", err)
				}
				return
			}
			if !apperror.IsCode(err, apperror.CodeQuoteUnavailable) {
				t.Errorf("expected QuoteUnavailable, got %v", err)
			}
			if svc.View().Phase != domain.PhaseFailed {
				t.Errorf("phase = %v, want failed", svc.View().Phase)
			}
		})
	}
}

func TestRequestQuote_ProviderFailure(t *testing.T) {
	quotes := &fakeQuotes{err: apperror.New(apperror.CodeStonAPIError)}
	svc := newService(quotes, &fakeWallet{})

	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("10")

	err := svc.RequestQuote(context.Background())
	if !apperror.IsCode(err, apperror.CodeQuoteUnavailable) {
		t.Errorf("expected QuoteUnavailable, got %v", err)
	}
	if svc.View().Phase != domain.PhaseFailed {
		t.Errorf("phase = %v, want failed", svc.View().Phase)
	}
}

func TestRequestQuote_EditDuringFlightDiscardsResponse(t *testing.T) {
	quotes := &fakeQuotes{}
	svc := newService(quotes, &fakeWallet{})

	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("10")

	// The user changes the amount while the simulation is in flight.
	quotes.during = func() { svc.EnterAmount("20") }

	if err := svc.RequestQuote(context.Background()); err != nil {
		t.Fatalf("discarded response should not error: %v", err)
	}

	view := svc.View()
	if view.Quote != nil {
		t.Error("stale quote applied to session")
	}
	if view.Phase != domain.PhaseReady {
		t.Errorf("phase = %v, want ready", view.Phase)
	}
	if view.Amount != "20" {
		t.Errorf("amount = %q, want the edited value", view.Amount)
	}
}

func TestSubmit_Gates(t *testing.T) {
	svc := newService(&fakeQuotes{}, &fakeWallet{addr: wallet})
	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("10")

	if err := svc.Submit(context.Background()); !apperror.IsCode(err, apperror.CodeNoQuote) {
		t.Errorf("submit without quote = %v, want NoQuote", err)
	}
	if svc.View().Phase != domain.PhaseReady {
		t.Errorf("rejected submit changed phase to %v", svc.View().Phase)
	}

	disconnected := newService(&fakeQuotes{}, &fakeWallet{})
	disconnected.SelectFrom(ton)
	disconnected.SelectTo(lbh)
	disconnected.EnterAmount("10")
	if err := disconnected.RequestQuote(context.Background()); err != nil {
		t.Fatalf("RequestQuote: %v", err)
	}
	if err := disconnected.Submit(context.Background()); !apperror.IsCode(err, apperror.CodeNotReady) {
		t.Errorf("submit without wallet = %v, want NotReady", err)
	}
	if disconnected.View().Phase != domain.PhaseQuoted {
		t.Errorf("rejected submit changed phase to %v", disconnected.View().Phase)
	}
}

func TestSubmit_UserRejection(t *testing.T) {
	w := &fakeWallet{addr: wallet, err: apperror.New(apperror.CodeUserRejected)}
	svc := newService(&fakeQuotes{}, w)
	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("10")
	if err := svc.RequestQuote(context.Background()); err != nil {
		t.Fatalf("RequestQuote: %v", err)
	}

	err := svc.Submit(context.Background())
	if !apperror.IsCode(err, apperror.CodeUserRejected) {
		t.Errorf("expected UserRejected, got %v", err)
	}
	if svc.View().Phase != domain.PhaseFailed {
		t.Errorf("phase = %v, want failed", svc.View().Phase)
	}
}

func TestSubmit_EditDuringApprovalSupersedes(t *testing.T) {
	w := &fakeWallet{addr: wallet, ack: "late-ack"}
	svc := newService(&fakeQuotes{}, w)

	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("10")
	if err := svc.RequestQuote(context.Background()); err != nil {
		t.Fatalf("RequestQuote: %v", err)
	}

	// The user edits the amount while the wallet holds the request.
	w.during = func() { svc.EnterAmount("11") }

	if err := svc.Submit(context.Background()); err != nil {
		t.Fatalf("superseded submission should not error: %v", err)
	}

	view := svc.View()
	if view.Phase != domain.PhaseReady {
		t.Errorf("phase = %v, want ready", view.Phase)
	}
	if view.Quote != nil {
		t.Error("quote survived the edit")
	}
	if view.Amount != "11" {
		t.Errorf("amount = %q, want the edited value", view.Amount)
	}
}

func TestEndToEndSwap(t *testing.T) {
	quotes := &fakeQuotes{minAsk: big.NewInt(495_000_000)}
	w := &fakeWallet{addr: wallet, ack: "broadcast-ok"}
	svc := newService(quotes, w)

	svc.SelectFrom(ton)
	svc.SelectTo(lbh)
	svc.EnterAmount("10")

	if err := svc.RequestQuote(context.Background()); err != nil {
		t.Fatalf("RequestQuote: %v", err)
	}

	view := svc.View()
	if view.Phase != domain.PhaseQuoted {
		t.Fatalf("phase = %v, want quoted", view.Phase)
	}
	if view.Quote.OfferUnits.String() != "10000000000" {
		t.Errorf("offer units = %s", view.Quote.OfferUnits)
	}
	shown := view.Quote.MinAskUnits.String()

	before := time.Now()
	if err := svc.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	view = svc.View()
	if view.Phase != domain.PhaseSettled {
		t.Fatalf("phase = %v, want settled", view.Phase)
	}

	if len(w.lastReq.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.lastReq.Messages))
	}
	msg := w.lastReq.Messages[0]
	if msg.To != "EQRouter" {
		t.Errorf("message addressed to %q, want the router", msg.To)
	}
	if msg.Value.String() != "10000000000" {
		t.Errorf("value = %s, want 10000000000", msg.Value)
	}
	// What the user saw is exactly what the payload carries.
	if msg.Payload != "boc:"+shown {
		t.Errorf("payload = %q, want encoding of %s", msg.Payload, shown)
	}

	deadline := w.lastReq.ValidUntil
	if deadline.Before(before.Add(4*time.Minute)) || deadline.After(before.Add(6*time.Minute)) {
		t.Errorf("validUntil = %v, want ~5m from submission", deadline)
	}
}
