package asset_test

import (
	"math/big"
	"testing"

	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/shopspring/decimal"
)

var (
	ton = asset.NewWithName("EQCM3B12QK1e4yZSf8GtBRT0aLMNyEsBc_DhVfRRtOEffLez", asset.KindNative, "TON", "Toncoin", 9)
	lbh = asset.NewWithName("EQBlqsm144Dq6SjbPI4jjZvA1hqTIP3CvHovbIfW_t-SCALE", asset.KindJetton, "LBH", "Labour By Hire", 9)
	usd = asset.New("EQBynBO23ywHy_CgarY9NK9FTz0yDsG82PtcbSTQgGoXwiuA", asset.KindJetton, "USDT", 6)
)

func TestParseString_Scaling(t *testing.T) {
	tests := []struct {
		name    string
		asset   *asset.Asset
		input   string
		want    string // expected base units
		wantErr bool
	}{
		{name: "nine_decimals_fractional", asset: ton, input: "1.5", want: "1500000000"},
		{name: "six_decimals_whole", asset: usd, input: "2", want: "2000000"},
		{name: "nine_decimals_whole", asset: ton, input: "10", want: "10000000000"},
		{name: "large_amount_exact", asset: ton, input: "123456789.123456789", want: "123456789123456789"},
		{name: "zero_rejected", asset: ton, input: "0", wantErr: true},
		{name: "negative_rejected", asset: ton, input: "-1", wantErr: true},
		{name: "garbage_rejected", asset: ton, input: "1.2.3", wantErr: true},
		{name: "too_many_decimals", asset: usd, input: "1.1234567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := asset.ParseString(tt.asset, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got.Raw().String())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Raw().String() != tt.want {
				t.Errorf("expected %s base units, got %s", tt.want, got.Raw().String())
			}
		})
	}
}

func TestAmount_RoundTrip(t *testing.T) {
	a, err := asset.ParseString(ton, "1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !a.ToDecimal().Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected 1.5, got %s", a.ToDecimal().String())
	}
	if a.String() != "1.5 TON" {
		t.Errorf("expected '1.5 TON', got '%s'", a.String())
	}
}

func TestAmount_CannotCompareDifferentAssets(t *testing.T) {
	oneTON := asset.NewAmount(ton, big.NewInt(1_000_000_000))
	oneUSD := asset.NewAmount(usd, big.NewInt(1_000_000))

	if _, err := oneTON.Cmp(oneUSD); err == nil {
		t.Error("expected error when comparing different assets")
	}
}

func TestFormatBaseUnits(t *testing.T) {
	got := asset.FormatBaseUnits(lbh, big.NewInt(495_000_000), 6)
	if got != "0.495000" {
		t.Errorf("expected 0.495000, got %s", got)
	}
}

func TestShortAddress(t *testing.T) {
	if got := asset.ShortAddress("EQCM3B12QK1e4yZSf8GtBRT0aLMNyEsBc_DhVfRRtOEffLez"); got != "EQCM…fLez" {
		t.Errorf("unexpected short address: %s", got)
	}
	if got := asset.ShortAddress("short"); got != "short" {
		t.Errorf("short input must pass through, got %s", got)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := asset.NewRegistry()
	r.Replace([]*asset.Asset{ton, lbh})

	if r.Count() != 2 {
		t.Fatalf("expected 2 assets, got %d", r.Count())
	}

	native, ok := r.Native()
	if !ok || native.Symbol() != "TON" {
		t.Errorf("expected native TON, got %v", native)
	}

	// Replace drops the old contents entirely
	r.Replace([]*asset.Asset{usd})
	if r.Has(ton.Address()) {
		t.Error("stale asset survived Replace")
	}
	if got := r.GetBySymbol("USDT"); len(got) != 1 {
		t.Errorf("expected one USDT entry, got %d", len(got))
	}
}
