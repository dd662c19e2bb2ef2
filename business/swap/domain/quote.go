// Package domain contains the swap domain model: quotes, pair categories,
// chain messages and the session state machine.
package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/lbhlabs/tonswap/internal/asset"
)

// RouterInfo is the routing metadata returned by the quote service and
// consumed verbatim by the transaction composer.
type RouterInfo struct {
	// Address is the router contract that executes the swap.
	Address string
	// PtonMasterAddress is the router's native-proxy master. Required for
	// any leg that moves the native coin.
	PtonMasterAddress string
	// PoolAddress is the pool resolved for the pair, when the quote
	// service reports one. Informational.
	PoolAddress string
}

// Quote is the result of a swap simulation. It is valid only against the
// exact inputs that produced it; the session discards it on any edit.
type Quote struct {
	OfferAddress string
	AskAddress   string
	// OfferUnits is the traded amount in offer-asset base units.
	OfferUnits *big.Int
	// AskUnits is the estimated receivable amount, before slippage.
	AskUnits *big.Int
	// MinAskUnits is the slippage-adjusted guaranteed minimum. It is
	// passed through to the composed transaction unmodified.
	MinAskUnits *big.Int
	// SwapRate is the quoted ask-per-offer price. Display only.
	SwapRate decimal.Decimal
	Router   RouterInfo
}

// MinReceived renders MinAskUnits in human units of the ask asset.
func (q *Quote) MinReceived(ask *asset.Asset) string {
	if q == nil || q.MinAskUnits == nil || ask == nil {
		return ""
	}
	return asset.NewAmount(ask, q.MinAskUnits).ToDecimal().String()
}
