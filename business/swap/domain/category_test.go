package domain_test

import (
	"testing"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/asset"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name      string
		offer     asset.Kind
		ask       asset.Kind
		want      domain.PairCategory
		wantProxy bool
		wantErr   bool
	}{
		{name: "native_to_jetton", offer: asset.KindNative, ask: asset.KindJetton, want: domain.CategoryNativeToJetton, wantProxy: true},
		{name: "jetton_to_native", offer: asset.KindJetton, ask: asset.KindNative, want: domain.CategoryJettonToNative, wantProxy: true},
		{name: "jetton_to_jetton", offer: asset.KindJetton, ask: asset.KindJetton, want: domain.CategoryJettonToJetton},
		{name: "native_to_native_impossible", offer: asset.KindNative, ask: asset.KindNative, wantErr: true},
		{name: "unknown_kind", offer: asset.Kind("Weird"), ask: asset.KindJetton, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Categorize(tt.offer, tt.ask)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("category = %v, want %v", got, tt.want)
			}
			if got.RequiresProxy() != tt.wantProxy {
				t.Errorf("RequiresProxy = %v, want %v", got.RequiresProxy(), tt.wantProxy)
			}
		})
	}
}
