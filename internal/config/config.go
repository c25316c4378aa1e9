package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"solana-risk-engine/internal/retry"
	"solana-risk-engine/internal/risk"
)

// EnvPrefix prefixes every environment override, e.g. RISK_ENGINE_LEDGER_RPC_ENDPOINT.
const EnvPrefix = "RISK_ENGINE"

// Storage backends.
const (
	BackendMemory     = "memory"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Config represents the complete application configuration
type Config struct {
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Market  MarketConfig  `mapstructure:"market"`
	News    NewsConfig    `mapstructure:"news"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Risk    risk.Config   `mapstructure:"risk"`
}

// LedgerConfig holds Solana JSON-RPC configuration
type LedgerConfig struct {
	RPCEndpoint      string        `mapstructure:"rpc_endpoint"`
	Commitment       string        `mapstructure:"commitment"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FetchConcurrency int           `mapstructure:"fetch_concurrency"`
	TransactionLimit int           `mapstructure:"transaction_limit"`
}

// MarketConfig holds market data API configuration
type MarketConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewsConfig holds news provider configuration. Missing credentials disable
// a provider at call time rather than failing startup.
type NewsConfig struct {
	CryptoPanicURL        string        `mapstructure:"cryptopanic_url"`
	CryptoPanicToken      string        `mapstructure:"cryptopanic_token"`
	CryptoPanicCurrencies string        `mapstructure:"cryptopanic_currencies"`
	CryptoCompareURL      string        `mapstructure:"cryptocompare_url"`
	CryptoCompareKey      string        `mapstructure:"cryptocompare_key"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

// RetryConfig holds the upstream retry policy
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// CacheConfig holds cache lifetimes
type CacheConfig struct {
	TokenListTTL time.Duration `mapstructure:"token_list_ttl"`
	NewsTTL      time.Duration `mapstructure:"news_ttl"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ActionTimeout   time.Duration `mapstructure:"action_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the invocation audit backend
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickHouseDSN string `mapstructure:"clickhouse_dsn"`
	Migrate       bool   `mapstructure:"migrate"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are ignored and variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from defaults, an optional file and environment
// variables, in increasing priority. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// Every key is registered so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.rpc_endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("ledger.commitment", "confirmed")
	v.SetDefault("ledger.timeout", "10s")
	v.SetDefault("ledger.fetch_concurrency", 8)
	v.SetDefault("ledger.transaction_limit", 50)

	v.SetDefault("market.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("market.api_key", "")
	v.SetDefault("market.timeout", "10s")

	v.SetDefault("news.cryptopanic_url", "https://cryptopanic.com/api/v1")
	v.SetDefault("news.cryptopanic_token", "")
	v.SetDefault("news.cryptopanic_currencies", "")
	v.SetDefault("news.cryptocompare_url", "https://min-api.cryptocompare.com")
	v.SetDefault("news.cryptocompare_key", "")
	v.SetDefault("news.timeout", "10s")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", "1s")

	v.SetDefault("cache.token_list_ttl", "1h")
	v.SetDefault("cache.news_ttl", "5m")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.action_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("storage.migrate", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	setStructDefaults(v, "risk", risk.DefaultConfig())
}

// setStructDefaults registers every leaf of a mapstructure-tagged struct under
// prefix, so each tunable can be overridden from the environment.
func setStructDefaults(v *viper.Viper, prefix string, value any) {
	rv := reflect.ValueOf(value)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "." + tag
		if field := rv.Field(i); field.Kind() == reflect.Struct {
			setStructDefaults(v, key, field.Interface())
		} else {
			v.SetDefault(key, field.Interface())
		}
	}
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Ledger.RPCEndpoint == "" {
		return fmt.Errorf("ledger.rpc_endpoint is required")
	}
	if c.Ledger.Timeout <= 0 {
		return fmt.Errorf("ledger.timeout must be positive")
	}
	if c.Ledger.FetchConcurrency < 1 {
		return fmt.Errorf("ledger.fetch_concurrency must be at least 1")
	}
	if c.Ledger.TransactionLimit < 1 || c.Ledger.TransactionLimit > 1000 {
		return fmt.Errorf("ledger.transaction_limit must be between 1 and 1000")
	}

	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Market.Timeout <= 0 {
		return fmt.Errorf("market.timeout must be positive")
	}
	if c.News.Timeout <= 0 {
		return fmt.Errorf("news.timeout must be positive")
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive")
	}

	if c.Cache.TokenListTTL <= 0 || c.Cache.NewsTTL <= 0 {
		return fmt.Errorf("cache ttls must be positive")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ActionTimeout <= 0 {
		return fmt.Errorf("server.action_timeout must be positive")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	case BackendClickHouse:
		if c.Storage.ClickHouseDSN == "" {
			return fmt.Errorf("storage.clickhouse_dsn is required for the clickhouse backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of: memory, postgres, clickhouse")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if err := c.validateRisk(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateRisk() error {
	r := c.Risk
	if r.Version == "" {
		return fmt.Errorf("risk.version is required")
	}
	w := r.Weights
	if w.Holder < 0 || w.Transaction < 0 || w.Liquidity < 0 {
		return fmt.Errorf("risk.weights must not be negative")
	}
	if sum := w.Holder + w.Transaction + w.Liquidity; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("risk.weights must sum to 1, got %.3f", sum)
	}
	l := r.Levels
	if !(l.ExtremelyHigh < l.High && l.High < l.Medium) {
		return fmt.Errorf("risk.levels must be strictly increasing")
	}
	return nil
}

// RetryPolicy converts the retry section into a policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
	}
}
