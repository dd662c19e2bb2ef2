package app

import (
	"context"
	"strings"

	"github.com/lbhlabs/tonswap/business/catalog/domain"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/internal/logger"
)

// CatalogService loads the tradable asset list and proposes default pairs.
type CatalogService struct {
	directory AssetDirectory
	registry  *asset.Registry
	logger    logger.LoggerInterface
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(directory AssetDirectory, registry *asset.Registry, log logger.LoggerInterface) *CatalogService {
	return &CatalogService{
		directory: directory,
		registry:  registry,
		logger:    log,
	}
}

// LoadAssets fetches the asset directory and replaces the shared registry
// contents. Any directory failure surfaces as CatalogUnavailable; the
// registry keeps its previous contents in that case.
func (s *CatalogService) LoadAssets(ctx context.Context) ([]*asset.Asset, error) {
	assets, err := s.directory.ListAssets(ctx)
	if err != nil {
		s.logger.Warn(ctx, "asset directory unavailable", "error", err)
		if apperror.IsCode(err, apperror.CodeCatalogUnavailable) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeCatalogUnavailable, apperror.WithCause(err))
	}

	s.registry.Replace(assets)
	s.logger.Info(ctx, "asset catalog loaded", "count", len(assets))

	return assets, nil
}

// PickDefaults proposes the initial from/to pair for a freshly loaded list.
// It is pure: same list and preferences always yield the same selection.
//
// The from side prefers the native coin, falling back to the first listed
// asset. The to side tries, in order: the preferred ask address, the given
// symbol, the first listed asset distinct from the from side.
func PickDefaults(list []*asset.Asset, preferredAskAddress, askSymbol string) domain.DefaultSelection {
	var sel domain.DefaultSelection
	if len(list) == 0 {
		return sel
	}

	for _, a := range list {
		if a.IsNative() {
			sel.From = a
			break
		}
	}
	if sel.From == nil {
		sel.From = list[0]
	}

	if preferredAskAddress != "" {
		for _, a := range list {
			if a.Address() == preferredAskAddress {
				sel.To = a
				break
			}
		}
	}

	if sel.To == nil && askSymbol != "" {
		for _, a := range list {
			if strings.EqualFold(a.Symbol(), askSymbol) {
				sel.To = a
				break
			}
		}
	}

	if sel.To == nil {
		for _, a := range list {
			if !a.Equals(sel.From) {
				sel.To = a
				break
			}
		}
	}

	return sel
}
