package domain_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
)

var (
	ton = asset.New("EQCM3B12QK1e4yZSf8GtBRT0aLMNyEsBc_DtXWQFj0_lbhlab", asset.KindNative, "TON", 9)
	lbh = asset.New("EQBlqsm144Dq6SjbPI4jjZvA1hqTIP3CvHovbIfW_t-SCALE", asset.KindJetton, "LBH", 9)
)

func testQuote() *domain.Quote {
	return &domain.Quote{
		OfferAddress: ton.Address(),
		AskAddress:   lbh.Address(),
		OfferUnits:   big.NewInt(10_000_000_000),
		MinAskUnits:  big.NewInt(495_000_000),
		Router: domain.RouterInfo{
			Address:           "EQRouter",
			PtonMasterAddress: "EQProxy",
		},
	}
}

func readySession() *domain.Session {
	s := domain.NewSession()
	s.SetFrom(ton)
	s.SetTo(lbh)
	s.SetAmount("10")
	return s
}

func quotedSession(t *testing.T) *domain.Session {
	t.Helper()
	s := readySession()
	gen, err := s.BeginQuote()
	if err != nil {
		t.Fatalf("BeginQuote: %v", err)
	}
	if !s.ApplyQuote(gen, testQuote()) {
		t.Fatal("quote not applied")
	}
	return s
}

func TestSession_PhaseProgression(t *testing.T) {
	s := domain.NewSession()
	if s.Phase() != domain.PhaseIdle {
		t.Fatalf("new session phase = %v", s.Phase())
	}

	s.SetFrom(ton)
	if s.Phase() != domain.PhaseIdle {
		t.Errorf("incomplete inputs should stay idle, got %v", s.Phase())
	}

	s.SetTo(lbh)
	s.SetAmount("10")
	if s.Phase() != domain.PhaseReady {
		t.Errorf("complete inputs should be ready, got %v", s.Phase())
	}

	s = quotedSession(t)
	if s.Phase() != domain.PhaseQuoted {
		t.Fatalf("phase = %v, want quoted", s.Phase())
	}

	if err := s.BeginSubmit(true); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	s.CompleteSubmit("boc-ack")
	if s.Phase() != domain.PhaseSettled {
		t.Errorf("phase = %v, want settled", s.Phase())
	}
	if s.BroadcastAck() != "boc-ack" {
		t.Errorf("ack = %q", s.BroadcastAck())
	}
}

func TestSession_EditDiscardsQuote(t *testing.T) {
	edits := []struct {
		name string
		edit func(*domain.Session)
	}{
		{"amount", func(s *domain.Session) { s.SetAmount("11") }},
		{"from", func(s *domain.Session) { s.SetFrom(lbh) }},
		{"to", func(s *domain.Session) { s.SetTo(ton) }},
		{"flip", func(s *domain.Session) { s.Flip() }},
	}

	for _, tt := range edits {
		t.Run(tt.name, func(t *testing.T) {
			s := quotedSession(t)
			tt.edit(s)

			if s.Quote() != nil {
				t.Error("quote survived an input edit")
			}
			if s.Phase() != domain.PhaseReady {
				t.Errorf("phase = %v, want ready", s.Phase())
			}
			if err := s.BeginSubmit(true); !apperror.IsCode(err, apperror.CodeNoQuote) {
				t.Errorf("submit after edit = %v, want NoQuote", err)
			}
		})
	}
}

func TestSession_StaleQuoteDiscarded(t *testing.T) {
	s := readySession()
	gen, err := s.BeginQuote()
	if err != nil {
		t.Fatalf("BeginQuote: %v", err)
	}

	// User edits the amount while the simulation is in flight.
	s.SetAmount("20")

	if s.ApplyQuote(gen, testQuote()) {
		t.Error("stale quote was applied")
	}
	if s.Quote() != nil {
		t.Error("stale quote visible in session")
	}
	if s.FailQuote(gen, errors.New("late failure")) {
		t.Error("stale failure was applied")
	}
	if s.Phase() != domain.PhaseReady {
		t.Errorf("phase = %v, want ready", s.Phase())
	}
}

func TestSession_RequoteBumpsNothingButDiscardsOld(t *testing.T) {
	s := quotedSession(t)

	gen, err := s.BeginQuote()
	if err != nil {
		t.Fatalf("re-quote: %v", err)
	}
	if s.Quote() != nil {
		t.Error("old quote kept while re-quoting")
	}
	if !s.ApplyQuote(gen, testQuote()) {
		t.Error("fresh quote rejected")
	}
}

func TestSession_SubmitGates(t *testing.T) {
	s := readySession()
	if err := s.BeginSubmit(true); !apperror.IsCode(err, apperror.CodeNoQuote) {
		t.Errorf("submit without quote = %v, want NoQuote", err)
	}
	if s.Phase() != domain.PhaseReady {
		t.Errorf("rejected submit changed phase to %v", s.Phase())
	}

	s = quotedSession(t)
	if err := s.BeginSubmit(false); !apperror.IsCode(err, apperror.CodeNotReady) {
		t.Errorf("submit without wallet = %v, want NotReady", err)
	}
	if s.Phase() != domain.PhaseQuoted {
		t.Errorf("rejected submit changed phase to %v", s.Phase())
	}
}

func TestSession_FailureAndRetry(t *testing.T) {
	s := readySession()
	gen, _ := s.BeginQuote()
	if !s.FailQuote(gen, apperror.New(apperror.CodeQuoteUnavailable)) {
		t.Fatal("failure not applied")
	}
	if s.Phase() != domain.PhaseFailed {
		t.Fatalf("phase = %v, want failed", s.Phase())
	}
	if s.StatusLine() == "" {
		t.Error("failed session has no status line")
	}

	s.Retry()
	if s.Phase() != domain.PhaseReady {
		t.Errorf("retry phase = %v, want ready", s.Phase())
	}
	if s.Err() != nil {
		t.Error("retry kept the previous error")
	}

	// Implicit recovery via edit.
	s = readySession()
	gen, _ = s.BeginQuote()
	s.FailQuote(gen, errors.New("boom"))
	s.SetAmount("5")
	if s.Phase() != domain.PhaseReady {
		t.Errorf("edit from failed phase = %v, want ready", s.Phase())
	}
}

func TestSession_EditDuringSubmitDropsOutcome(t *testing.T) {
	s := quotedSession(t)
	if err := s.BeginSubmit(true); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}

	// User changes the amount while the wallet holds the request.
	s.SetAmount("2")
	if s.Phase() != domain.PhaseReady {
		t.Fatalf("phase = %v, want ready", s.Phase())
	}

	if s.CompleteSubmit("late-ack") {
		t.Error("ack landed in a superseded submission")
	}
	if s.Phase() != domain.PhaseReady {
		t.Errorf("phase = %v, want ready", s.Phase())
	}
	if s.BroadcastAck() != "" {
		t.Errorf("ack = %q, want it dropped", s.BroadcastAck())
	}

	if s.FailSubmit(errors.New("late failure")) {
		t.Error("failure landed in a superseded submission")
	}
	if s.Err() != nil {
		t.Errorf("err = %v, want nil after a superseded failure", s.Err())
	}
}

func TestSession_SubmitFailure(t *testing.T) {
	s := quotedSession(t)
	if err := s.BeginSubmit(true); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	s.FailSubmit(apperror.New(apperror.CodeUserRejected))
	if s.Phase() != domain.PhaseFailed {
		t.Fatalf("phase = %v, want failed", s.Phase())
	}
	if !apperror.IsCode(s.Err(), apperror.CodeUserRejected) {
		t.Errorf("err = %v, want UserRejected", s.Err())
	}
}
