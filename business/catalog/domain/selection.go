package domain

import "github.com/lbhlabs/tonswap/internal/asset"

// DefaultSelection is the initial from/to pair proposed to the user.
// Either side may be nil when the catalog cannot provide a sensible default.
type DefaultSelection struct {
	From *asset.Asset
	To   *asset.Asset
}
