// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/lbhlabs/tonswap/business/swap/app"
	"github.com/lbhlabs/tonswap/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SwapService = di.NewToken[*app.SwapService]("swap.SwapService")
)

// Private dependency tokens - internal to swap module
var (
	QuoteProvider = di.NewToken[app.QuoteProvider]("swap:quoteProvider")
	TxBuilder     = di.NewToken[app.TxBuilder]("swap:txBuilder")
	Wallet        = di.NewToken[app.Wallet]("swap:wallet")
)

// Helper functions for type-safe access
func GetSwapService(c di.ServiceRegistry) *app.SwapService {
	return di.GetToken(c, SwapService)
}

func GetQuoteProvider(c di.ServiceRegistry) app.QuoteProvider {
	return di.GetToken(c, QuoteProvider)
}

func GetTxBuilder(c di.ServiceRegistry) app.TxBuilder {
	return di.GetToken(c, TxBuilder)
}

func GetWallet(c di.ServiceRegistry) app.Wallet {
	return di.GetToken(c, Wallet)
}
