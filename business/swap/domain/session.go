package domain

import (
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
)

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReady
	PhaseQuoting
	PhaseQuoted
	PhaseSubmitting
	PhaseSettled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReady:
		return "ready"
	case PhaseQuoting:
		return "quoting"
	case PhaseQuoted:
		return "quoted"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSettled:
		return "settled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the swap state machine. It is not safe for concurrent use;
// the orchestrating service is the single writer.
//
// Core invariant: a non-nil quote was always produced from exactly the
// currently selected from/to/amount. Every input mutation discards the
// quote and bumps the generation counter in the same step, so an in-flight
// simulation started before the edit can never be applied afterwards.
type Session struct {
	from       *asset.Asset
	to         *asset.Asset
	amount     string
	quote      *Quote
	phase      Phase
	generation uint64
	lastErr    error
	ack        string
}

// NewSession creates an empty session in the Idle phase.
func NewSession() *Session {
	return &Session{phase: PhaseIdle}
}

func (s *Session) Phase() Phase         { return s.phase }
func (s *Session) From() *asset.Asset   { return s.from }
func (s *Session) To() *asset.Asset     { return s.to }
func (s *Session) Amount() string       { return s.amount }
func (s *Session) Quote() *Quote        { return s.quote }
func (s *Session) Generation() uint64   { return s.generation }
func (s *Session) Err() error           { return s.lastErr }
func (s *Session) BroadcastAck() string { return s.ack }

// touch applies the input-mutation invariant: discard the quote, bump the
// generation and land in Ready (or Idle when inputs are incomplete).
func (s *Session) touch() {
	s.generation++
	s.quote = nil
	s.lastErr = nil
	s.ack = ""
	if s.from != nil && s.to != nil && s.amount != "" {
		s.phase = PhaseReady
	} else {
		s.phase = PhaseIdle
	}
}

// SetFrom selects the offer asset.
func (s *Session) SetFrom(a *asset.Asset) {
	s.from = a
	s.touch()
}

// SetTo selects the ask asset.
func (s *Session) SetTo(a *asset.Asset) {
	s.to = a
	s.touch()
}

// SetAmount records the user-entered human amount. It stays unparsed until
// a quote is requested.
func (s *Session) SetAmount(amount string) {
	s.amount = amount
	s.touch()
}

// Flip swaps the offer and ask sides. Same invalidation path as any edit.
func (s *Session) Flip() {
	s.from, s.to = s.to, s.from
	s.touch()
}

// Retry returns a failed or settled session to Ready, keeping the inputs.
func (s *Session) Retry() {
	if s.phase != PhaseFailed && s.phase != PhaseSettled {
		return
	}
	s.quote = nil
	s.lastErr = nil
	s.ack = ""
	if s.from != nil && s.to != nil && s.amount != "" {
		s.phase = PhaseReady
	} else {
		s.phase = PhaseIdle
	}
}

// BeginQuote moves the session into Quoting and returns the generation the
// in-flight simulation belongs to. Allowed from Ready (first quote) and
// Quoted (re-quote with unchanged inputs).
func (s *Session) BeginQuote() (uint64, error) {
	if s.phase != PhaseReady && s.phase != PhaseQuoted {
		return 0, apperror.New(apperror.CodeNotReady,
			apperror.WithContext("cannot quote in phase "+s.phase.String()))
	}
	s.quote = nil
	s.phase = PhaseQuoting
	return s.generation, nil
}

// ApplyQuote installs a simulation result if its generation still matches.
// A stale response is discarded and the session left untouched; the caller
// learns about it through the false return.
func (s *Session) ApplyQuote(generation uint64, q *Quote) bool {
	if generation != s.generation || s.phase != PhaseQuoting {
		return false
	}
	s.quote = q
	s.phase = PhaseQuoted
	return true
}

// FailQuote records a simulation failure if its generation still matches.
func (s *Session) FailQuote(generation uint64, err error) bool {
	if generation != s.generation || s.phase != PhaseQuoting {
		return false
	}
	s.lastErr = err
	s.phase = PhaseFailed
	return true
}

// BeginSubmit gates the transition into Submitting. Rejection leaves the
// session unchanged.
func (s *Session) BeginSubmit(walletConnected bool) error {
	if s.phase != PhaseQuoted {
		return apperror.New(apperror.CodeNoQuote)
	}
	if !walletConnected {
		return apperror.New(apperror.CodeNotReady)
	}
	if s.quote == nil {
		return apperror.New(apperror.CodeNoQuote)
	}
	s.phase = PhaseSubmitting
	return nil
}

// CompleteSubmit records the wallet's broadcast acknowledgment. It returns
// false when an input edit already moved the session out of Submitting; the
// ack is dropped and the session left as the edit put it.
func (s *Session) CompleteSubmit(ack string) bool {
	if s.phase != PhaseSubmitting {
		return false
	}
	s.ack = ack
	s.phase = PhaseSettled
	return true
}

// FailSubmit records a composer or wallet failure. Same staleness rule as
// CompleteSubmit: a submission already superseded by an edit reports false.
func (s *Session) FailSubmit(err error) bool {
	if s.phase != PhaseSubmitting {
		return false
	}
	s.lastErr = err
	s.phase = PhaseFailed
	return true
}

// StatusLine renders a human-readable description of the current phase.
func (s *Session) StatusLine() string {
	switch s.phase {
	case PhaseIdle:
		return "Select a pair and enter an amount"
	case PhaseReady:
		return "Ready to quote"
	case PhaseQuoting:
		return "Fetching quote..."
	case PhaseQuoted:
		if s.quote != nil && s.to != nil {
			return "Min received: " + s.quote.MinReceived(s.to) + " " + s.to.Symbol()
		}
		return "Quote locked"
	case PhaseSubmitting:
		return "Waiting for wallet approval..."
	case PhaseSettled:
		return "Swap sent to the network"
	case PhaseFailed:
		if s.lastErr != nil {
			return apperror.UserMessage(s.lastErr)
		}
		return "Swap failed"
	default:
		return ""
	}
}
