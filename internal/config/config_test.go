package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Ston:   StonConfig{BaseURL: "https://api.ston.fi", Timeout: 10 * time.Second},
		Router: RouterConfig{RPCEndpoint: "https://toncenter.com/api/v2/jsonRPC"},
		Swap: SwapConfig{
			SlippageTolerance: "0.01",
			ApprovalWindow:    5 * time.Minute,
			LiquidityTiers:    []string{"very_high", "high", "medium"},
		},
		Wallet: WalletConfig{BridgeURL: "wss://bridge.tonapi.io/bridge"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing_ston_url", mutate: func(c *Config) { c.Ston.BaseURL = "" }, wantErr: true},
		{name: "missing_rpc", mutate: func(c *Config) { c.Router.RPCEndpoint = "" }, wantErr: true},
		{name: "bad_slippage", mutate: func(c *Config) { c.Swap.SlippageTolerance = "one percent" }, wantErr: true},
		{name: "zero_slippage", mutate: func(c *Config) { c.Swap.SlippageTolerance = "0" }, wantErr: true},
		{name: "excessive_slippage", mutate: func(c *Config) { c.Swap.SlippageTolerance = "0.9" }, wantErr: true},
		{name: "no_tiers", mutate: func(c *Config) { c.Swap.LiquidityTiers = nil }, wantErr: true},
		{name: "low_tier_rejected", mutate: func(c *Config) { c.Swap.LiquidityTiers = []string{"low"} }, wantErr: true},
		{name: "no_approval_window", mutate: func(c *Config) { c.Swap.ApprovalWindow = 0 }, wantErr: true},
		{name: "no_bridge", mutate: func(c *Config) { c.Wallet.BridgeURL = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSlippageDecimal(t *testing.T) {
	cfg := validConfig()
	if got := cfg.Swap.SlippageDecimal().String(); got != "0.01" {
		t.Errorf("expected 0.01, got %s", got)
	}
}
