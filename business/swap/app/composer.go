package app

import (
	"context"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
)

// Composer turns a locked quote into a chain message by dispatching on the
// pair category. The minimum-received figure is forwarded untouched; what
// the user saw is exactly what the router enforces.
type Composer struct {
	builder TxBuilder
}

// NewComposer creates a new Composer.
func NewComposer(builder TxBuilder) *Composer {
	return &Composer{builder: builder}
}

// Compose validates the quote's router metadata, categorizes the pair and
// invokes the matching construction path.
func (c *Composer) Compose(ctx context.Context, q *domain.Quote, offerKind, askKind asset.Kind, walletAddress string) (*domain.ChainMessage, error) {
	if q == nil {
		return nil, apperror.New(apperror.CodeNoQuote)
	}
	if walletAddress == "" {
		return nil, apperror.New(apperror.CodeWalletNotConnected)
	}

	category, err := domain.Categorize(offerKind, askKind)
	if err != nil {
		return nil, apperror.New(apperror.CodeCompositionError, apperror.WithCause(err))
	}

	if q.Router.Address == "" {
		return nil, apperror.New(apperror.CodeCompositionError,
			apperror.WithContext("quote has no router address"))
	}
	if category.RequiresProxy() && q.Router.PtonMasterAddress == "" {
		return nil, apperror.New(apperror.CodeCompositionError,
			apperror.WithContext("native leg requires the router's pton master"))
	}
	if q.OfferUnits == nil || q.MinAskUnits == nil {
		return nil, apperror.New(apperror.CodeCompositionError,
			apperror.WithContext("quote is missing unit amounts"))
	}

	params := BuildParams{
		Router:        q.Router,
		OfferAddress:  q.OfferAddress,
		AskAddress:    q.AskAddress,
		OfferUnits:    q.OfferUnits,
		MinAskUnits:   q.MinAskUnits,
		WalletAddress: walletAddress,
	}

	var msg *domain.ChainMessage
	switch category {
	case domain.CategoryNativeToJetton:
		msg, err = c.builder.BuildNativeToJetton(ctx, params)
	case domain.CategoryJettonToNative:
		msg, err = c.builder.BuildJettonToNative(ctx, params)
	case domain.CategoryJettonToJetton:
		msg, err = c.builder.BuildJettonToJetton(ctx, params)
	}
	if err != nil {
		if apperror.IsCode(err, apperror.CodeCompositionError) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeCompositionError, apperror.WithCause(err))
	}

	if msg == nil || msg.To == "" || msg.Value == nil || msg.Payload == "" {
		return nil, apperror.New(apperror.CodeCompositionError,
			apperror.WithContext("builder returned an incomplete message"))
	}

	return msg, nil
}
