// Package app contains application services and port definitions for the swap context.
package app

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/asset"
)

// QuoteProvider defines the interface for the external swap simulation service.
type QuoteProvider interface {
	// Simulate obtains an off-chain estimate for trading offerUnits of the
	// offer asset into the ask asset under the given slippage tolerance.
	Simulate(ctx context.Context, offer, ask *asset.Asset, offerUnits *big.Int, slippage decimal.Decimal) (*domain.Quote, error)
}

// BuildParams carries everything the transaction builder needs for one swap.
// MinAskUnits is forwarded exactly as quoted.
type BuildParams struct {
	Router        domain.RouterInfo
	OfferAddress  string
	AskAddress    string
	OfferUnits    *big.Int
	MinAskUnits   *big.Int
	WalletAddress string
}

// TxBuilder defines the interface for the router transaction builder, one
// method per pair category.
type TxBuilder interface {
	BuildNativeToJetton(ctx context.Context, p BuildParams) (*domain.ChainMessage, error)
	BuildJettonToNative(ctx context.Context, p BuildParams) (*domain.ChainMessage, error)
	BuildJettonToJetton(ctx context.Context, p BuildParams) (*domain.ChainMessage, error)
}

// Wallet defines the interface for the connected wallet.
type Wallet interface {
	// Address returns the connected wallet address, empty when disconnected.
	Address() string

	// SendTransaction hands the request to the wallet for user approval and
	// broadcast, returning an opaque acknowledgment.
	SendTransaction(ctx context.Context, req domain.TransactionRequest) (string, error)
}
