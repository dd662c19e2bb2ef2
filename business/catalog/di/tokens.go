// Package di contains dependency injection tokens for the catalog context.
package di

import (
	"github.com/lbhlabs/tonswap/business/catalog/app"
	"github.com/lbhlabs/tonswap/internal/di"
)

// Public service tokens - exposed to other modules
var (
	CatalogService = di.NewToken[*app.CatalogService]("catalog.CatalogService")
)

// Private dependency tokens - internal to catalog module
var (
	AssetDirectory = di.NewToken[app.AssetDirectory]("catalog:assetDirectory")
)

// Helper functions for type-safe access
func GetCatalogService(c di.ServiceRegistry) *app.CatalogService {
	return di.GetToken(c, CatalogService)
}

func GetAssetDirectory(c di.ServiceRegistry) app.AssetDirectory {
	return di.GetToken(c, AssetDirectory)
}
