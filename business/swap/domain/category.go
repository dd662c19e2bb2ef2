package domain

import (
	"fmt"

	"github.com/lbhlabs/tonswap/internal/asset"
)

// PairCategory is the three-way construction path for a swap.
type PairCategory int

const (
	CategoryNativeToJetton PairCategory = iota
	CategoryJettonToNative
	CategoryJettonToJetton
)

func (c PairCategory) String() string {
	switch c {
	case CategoryNativeToJetton:
		return "native_to_jetton"
	case CategoryJettonToNative:
		return "jetton_to_native"
	case CategoryJettonToJetton:
		return "jetton_to_jetton"
	default:
		return "unknown"
	}
}

// RequiresProxy reports whether the category routes a leg through the
// router's native proxy.
func (c PairCategory) RequiresProxy() bool {
	return c == CategoryNativeToJetton || c == CategoryJettonToNative
}

// Categorize maps the pair of asset kinds to a construction path.
// A native-to-native pair is impossible and rejected early.
func Categorize(offer, ask asset.Kind) (PairCategory, error) {
	switch {
	case offer == asset.KindNative && ask == asset.KindJetton:
		return CategoryNativeToJetton, nil
	case offer == asset.KindJetton && ask == asset.KindNative:
		return CategoryJettonToNative, nil
	case offer == asset.KindJetton && ask == asset.KindJetton:
		return CategoryJettonToJetton, nil
	case offer == asset.KindNative && ask == asset.KindNative:
		return 0, fmt.Errorf("native to native swap is impossible")
	default:
		return 0, fmt.Errorf("unrecognized pair kinds %q -> %q", offer, ask)
	}
}
