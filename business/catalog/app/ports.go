// Package app contains application services and port definitions for the catalog context.
package app

import (
	"context"

	"github.com/lbhlabs/tonswap/internal/asset"
)

// AssetDirectory defines the interface for the upstream asset directory.
type AssetDirectory interface {
	// ListAssets retrieves the tradable assets matching the configured
	// liquidity condition, in directory order.
	ListAssets(ctx context.Context) ([]*asset.Asset, error)
}
