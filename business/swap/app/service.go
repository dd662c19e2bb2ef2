package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apm"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/internal/logger"
)

const tracerName = "swap.service"

// SessionView is an immutable snapshot of the session for the presentation
// layer.
type SessionView struct {
	Phase         domain.Phase
	From          *asset.Asset
	To            *asset.Asset
	Amount        string
	Quote         *domain.Quote
	Status        string
	WalletAddress string
	Generation    uint64
}

type swapMetrics struct {
	quotes      metric.Int64Counter
	submissions metric.Int64Counter
}

// SwapService owns the swap session and orchestrates quoting, composition
// and wallet submission. It is the session's single writer; the lock is
// released around network calls and responses are re-validated against the
// generation counter on arrival.
type SwapService struct {
	mu       sync.Mutex
	session  *domain.Session
	quotes   QuoteProvider
	composer *Composer
	wallet   Wallet

	slippage       decimal.Decimal
	approvalWindow time.Duration

	logger  logger.LoggerInterface
	tracer  apm.Tracer
	metrics *swapMetrics
}

// NewSwapService creates a new SwapService.
func NewSwapService(
	quotes QuoteProvider,
	builder TxBuilder,
	wallet Wallet,
	slippage decimal.Decimal,
	approvalWindow time.Duration,
	log logger.LoggerInterface,
) *SwapService {
	meter := otel.GetMeterProvider().Meter(tracerName)
	quotesCounter, _ := meter.Int64Counter("swap_quotes_total",
		metric.WithDescription("Total number of quote requests"))
	submissionsCounter, _ := meter.Int64Counter("swap_submissions_total",
		metric.WithDescription("Total number of swap submissions"))

	return &SwapService{
		session:        domain.NewSession(),
		quotes:         quotes,
		composer:       NewComposer(builder),
		wallet:         wallet,
		slippage:       slippage,
		approvalWindow: approvalWindow,
		logger:         log,
		tracer:         apm.NewTracer(tracerName),
		metrics: &swapMetrics{
			quotes:      quotesCounter,
			submissions: submissionsCounter,
		},
	}
}

// View returns a snapshot of the session state.
func (s *SwapService) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionView{
		Phase:         s.session.Phase(),
		From:          s.session.From(),
		To:            s.session.To(),
		Amount:        s.session.Amount(),
		Quote:         s.session.Quote(),
		Status:        s.session.StatusLine(),
		WalletAddress: s.wallet.Address(),
		Generation:    s.session.Generation(),
	}
}

// SelectFrom sets the offer asset.
func (s *SwapService) SelectFrom(a *asset.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetFrom(a)
}

// SelectTo sets the ask asset.
func (s *SwapService) SelectTo(a *asset.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetTo(a)
}

// EnterAmount records the user-entered amount.
func (s *SwapService) EnterAmount(amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetAmount(amount)
}

// Flip swaps the offer and ask sides.
func (s *SwapService) Flip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Flip()
}

// Retry returns a failed session to Ready.
func (s *SwapService) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Retry()
}

// RequestQuote runs a simulation for the current inputs. A response that
// arrives after any input edit is discarded; the discard is not an error.
func (s *SwapService) RequestQuote(ctx context.Context) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "swap.request_quote")
	defer span.End()

	s.mu.Lock()
	generation, err := s.session.BeginQuote()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	offer, ask := s.session.From(), s.session.To()
	amount, err := asset.ParseString(offer, s.session.Amount())
	if err != nil {
		werr := apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("amount does not parse to a positive value"))
		s.session.FailQuote(generation, werr)
		s.mu.Unlock()
		span.NoticeError(werr)
		s.metrics.quotes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))
		return werr
	}
	offerUnits := amount.Raw()
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("offer", offer.Symbol()),
		attribute.String("ask", ask.Symbol()),
		attribute.String("offer_units", offerUnits.String()),
	)

	quote, err := s.quotes.Simulate(ctx, offer, ask, offerUnits, s.slippage)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		span.NoticeError(err)
		s.metrics.quotes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))
		if !apperror.IsCode(err, apperror.CodeQuoteUnavailable) {
			err = apperror.New(apperror.CodeQuoteUnavailable, apperror.WithCause(err))
		}
		if !s.session.FailQuote(generation, err) {
			s.logger.Debug(ctx, "discarded stale quote failure", "generation", generation)
			return nil
		}
		return err
	}

	s.metrics.quotes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", true)))
	if !s.session.ApplyQuote(generation, quote) {
		s.logger.Debug(ctx, "discarded stale quote", "generation", generation)
		return nil
	}

	s.logger.Info(ctx, "quote locked",
		"offer", offer.Symbol(),
		"ask", ask.Symbol(),
		"offer_units", quote.OfferUnits.String(),
		"min_ask_units", quote.MinAskUnits.String())

	return nil
}

// Submit composes the transaction for the locked quote and hands it to the
// wallet. Rejected submissions (no quote, no wallet) leave the session
// unchanged.
func (s *SwapService) Submit(ctx context.Context) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "swap.submit")
	defer span.End()

	s.mu.Lock()
	walletAddress := s.wallet.Address()
	if err := s.session.BeginSubmit(walletAddress != ""); err != nil {
		s.mu.Unlock()
		return err
	}

	quote := s.session.Quote()
	offerKind := s.session.From().Kind()
	askKind := s.session.To().Kind()
	s.mu.Unlock()

	msg, err := s.composer.Compose(ctx, quote, offerKind, askKind, walletAddress)
	if err != nil {
		span.NoticeError(err)
		s.failSubmit(ctx, err)
		return err
	}

	req := domain.TransactionRequest{
		ValidUntil: time.Now().Add(s.approvalWindow),
		Messages:   []domain.ChainMessage{*msg},
	}

	ack, err := s.wallet.SendTransaction(ctx, req)
	if err != nil {
		span.NoticeError(err)
		if !apperror.IsAppError(err) {
			err = apperror.New(apperror.CodeSubmissionError, apperror.WithCause(err))
		}
		s.failSubmit(ctx, err)
		return err
	}

	s.mu.Lock()
	settled := s.session.CompleteSubmit(ack)
	s.mu.Unlock()

	if !settled {
		s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "superseded")))
		s.logger.Info(ctx, "inputs edited during approval, broadcast ack dropped", "ack", ack)
		return nil
	}

	s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "settled")))
	s.logger.Info(ctx, "swap submitted", "ack", ack)

	return nil
}

func (s *SwapService) failSubmit(ctx context.Context, err error) {
	s.mu.Lock()
	recorded := s.session.FailSubmit(err)
	s.mu.Unlock()

	if !recorded {
		s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "superseded")))
		s.logger.Debug(ctx, "submission failure superseded by input edit", "error", err)
		return
	}

	result := "failed"
	if apperror.IsCode(err, apperror.CodeUserRejected) {
		result = "rejected"
	}
	s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	s.logger.Warn(ctx, "swap submission failed", "error", err)
}
