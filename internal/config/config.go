// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ston      StonConfig      `mapstructure:"ston"`
	Router    RouterConfig    `mapstructure:"router"`
	Swap      SwapConfig      `mapstructure:"swap"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// StonConfig holds STON API (asset directory + quote service) settings.
type StonConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// RouterConfig holds the router transaction builder settings.
type RouterConfig struct {
	// RPCEndpoint is the TON RPC gateway used to build swap messages.
	RPCEndpoint string        `mapstructure:"rpc_endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SwapConfig holds swap orchestration settings.
type SwapConfig struct {
	// PreferredAskAddress preselects the default "to" asset by exact
	// contract address. Empty means fall back to the well-known symbol.
	PreferredAskAddress string `mapstructure:"preferred_ask_address"`
	DefaultAskSymbol    string `mapstructure:"default_ask_symbol"`
	// SlippageTolerance is a fraction, e.g. "0.01" for 1%.
	SlippageTolerance string `mapstructure:"slippage_tolerance"`
	// ApprovalWindow bounds how long the wallet may sit on a submitted
	// transaction before it expires.
	ApprovalWindow time.Duration `mapstructure:"approval_window"`
	LiquidityTiers []string      `mapstructure:"liquidity_tiers"`
	TUIMode        bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// WalletConfig holds TON Connect bridge settings.
type WalletConfig struct {
	BridgeURL    string        `mapstructure:"bridge_url"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds the health endpoint configuration.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// SlippageDecimal returns the slippage tolerance as decimal.Decimal.
func (c *SwapConfig) SlippageDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.SlippageTolerance)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("TONSWAP")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "TONSWAP_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "TONSWAP_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "TONSWAP_LOG_LEVEL", "LOG_LEVEL")

	// STON API
	v.BindEnv("ston.base_url", "TONSWAP_STON_BASE_URL")

	// Router / RPC gateway. TON_RPC is the legacy name from the web UI.
	v.BindEnv("router.rpc_endpoint", "TONSWAP_RPC_ENDPOINT", "TON_RPC")

	// Swap defaults. LBH_JETTON_MASTER is the legacy preset name.
	v.BindEnv("swap.preferred_ask_address", "TONSWAP_PREFERRED_ASK_ADDRESS", "LBH_JETTON_MASTER")
	v.BindEnv("swap.slippage_tolerance", "TONSWAP_SLIPPAGE_TOLERANCE")

	// Wallet bridge
	v.BindEnv("wallet.bridge_url", "TONSWAP_BRIDGE_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "TONSWAP_TELEMETRY_ENABLED")
	v.BindEnv("telemetry.otlp_endpoint", "TONSWAP_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.service_name", "TONSWAP_SERVICE_NAME", "OTEL_SERVICE_NAME")
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "tonswap")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// STON API
	v.SetDefault("ston.base_url", "https://api.ston.fi")
	v.SetDefault("ston.timeout", 10*time.Second)
	v.SetDefault("ston.requests_per_minute", 120)

	// Router / RPC gateway
	v.SetDefault("router.rpc_endpoint", "https://toncenter.com/api/v2/jsonRPC")
	v.SetDefault("router.timeout", 15*time.Second)

	// Swap
	v.SetDefault("swap.default_ask_symbol", "LBH")
	v.SetDefault("swap.slippage_tolerance", "0.01")
	v.SetDefault("swap.approval_window", 5*time.Minute)
	v.SetDefault("swap.liquidity_tiers", []string{"very_high", "high", "medium"})

	// Wallet bridge
	v.SetDefault("wallet.bridge_url", "wss://bridge.tonapi.io/bridge")
	v.SetDefault("wallet.send_timeout", 30*time.Second)
	v.SetDefault("wallet.write_timeout", 10*time.Second)

	// Telemetry
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "tonswap")
	v.SetDefault("telemetry.prometheus_port", 2223)

	// Health
	v.SetDefault("health.enabled", false)
	v.SetDefault("health.port", 8081)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Ston.BaseURL == "" {
		return fmt.Errorf("ston.base_url is required")
	}
	if c.Router.RPCEndpoint == "" {
		return fmt.Errorf("router.rpc_endpoint is required")
	}

	slippage, err := decimal.NewFromString(c.Swap.SlippageTolerance)
	if err != nil {
		return fmt.Errorf("swap.slippage_tolerance must be a decimal fraction: %w", err)
	}
	if slippage.Sign() <= 0 || slippage.GreaterThan(decimal.NewFromFloat(0.5)) {
		return fmt.Errorf("swap.slippage_tolerance must be in (0, 0.5], got %s", slippage)
	}

	if c.Swap.ApprovalWindow <= 0 {
		return fmt.Errorf("swap.approval_window must be positive")
	}
	if len(c.Swap.LiquidityTiers) == 0 {
		return fmt.Errorf("swap.liquidity_tiers must not be empty")
	}
	for _, tier := range c.Swap.LiquidityTiers {
		switch tier {
		case "very_high", "high", "medium":
		default:
			// Low-liquidity and untracked tiers are deliberately not
			// accepted; they produce unswappable selections.
			return fmt.Errorf("swap.liquidity_tiers: unknown tier %q", tier)
		}
	}

	if c.Wallet.BridgeURL == "" {
		return fmt.Errorf("wallet.bridge_url is required")
	}

	return nil
}
