// Package config defines the top-level configuration for skinscout and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SKINSCOUT_* environment variables.
type Config struct {
	CSMarket  CSMarketConfig  `toml:"csmarket"`
	Fees      FeesConfig      `toml:"fees"`
	Watchlist WatchlistConfig `toml:"watchlist"`
	Alerts    AlertsConfig    `toml:"alerts"`
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Trends    TrendsConfig    `toml:"trends"`
	Scan      ScanConfig      `toml:"scan"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// CSMarketConfig holds the market data API endpoint and credentials.
type CSMarketConfig struct {
	BaseURL           string   `toml:"base_url"`
	APIKey            string   `toml:"api_key"`
	Currency          string   `toml:"currency"`
	Markets           []string `toml:"markets"`
	Timeout           duration `toml:"timeout"`
	MaxRetries        int      `toml:"max_retries"`
	RetryBackoff      duration `toml:"retry_backoff"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// FeesConfig holds seller fee fractions per marketplace.
type FeesConfig struct {
	Default   float64            `toml:"default"`
	PerMarket map[string]float64 `toml:"per_market"`
	// FromAPI replaces PerMarket with the fees published by the API at startup.
	FromAPI bool `toml:"from_api"`
}

// WatchlistConfig lists the items scanned every pass.
type WatchlistConfig struct {
	Items []string `toml:"items"`
}

// AlertTarget is one configured buy threshold.
type AlertTarget struct {
	Item  string  `toml:"item"`
	Price float64 `toml:"price"`
}

// AlertsConfig holds price alert targets. Targets are an array so their
// configured order is kept.
type AlertsConfig struct {
	Targets  []AlertTarget `toml:"targets"`
	Cooldown duration      `toml:"cooldown"`
}

// ArbitrageConfig selects how opportunities are searched and ranked.
type ArbitrageConfig struct {
	// Pairing selects the buy/sell search: "cheapest_buy" or "pairwise".
	Pairing string `toml:"pairing"`
	// RankBy is "roi" or "profit".
	RankBy string `toml:"rank_by"`
	TopN   int    `toml:"top_n"`
}

// TrendsConfig holds sales history analysis parameters.
type TrendsConfig struct {
	LookbackDays   int  `toml:"lookback_days"`
	PlayerCounts   bool `toml:"player_counts"`
	ArchiveReports bool `toml:"archive_reports"`
	// Schedule is a 5-field cron expression (UTC) for the watchlist trend
	// sweep in watch and full modes. Empty disables the sweep.
	Schedule string `toml:"schedule"`
}

// ScanConfig controls batch passes over the watchlist.
type ScanConfig struct {
	Interval    duration `toml:"interval"`
	Concurrency int      `toml:"concurrency"`
	// RecordPolicy is "reject" or "drop" for malformed market records.
	RecordPolicy string   `toml:"record_policy"`
	CacheTTL     duration `toml:"cache_ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters. Leave DSN and Host
// empty to run without persistence.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a database is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || p.Host != ""
}

// RedisConfig holds Redis connection parameters. An empty Addr disables it.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters. An empty Bucket
// disables report archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		CSMarket: CSMarketConfig{
			BaseURL:           "https://api.csmarketapi.com",
			Currency:          "USD",
			Timeout:           duration{30 * time.Second},
			MaxRetries:        3,
			RetryBackoff:      duration{time.Second},
			RequestsPerSecond: 5,
		},
		Fees: FeesConfig{
			Default:   domain.DefaultFeeFraction.InexactFloat64(),
			PerMarket: referencePerMarket(),
		},
		Watchlist: WatchlistConfig{
			Items: []string{
				"Chroma 2 Case",
				"AWP | Asiimov (Field-Tested)",
				"AK-47 | Redline (Field-Tested)",
				"Glove Case",
			},
		},
		Alerts: AlertsConfig{
			Cooldown: duration{time.Hour},
		},
		Arbitrage: ArbitrageConfig{
			Pairing: "cheapest_buy",
			RankBy:  "roi",
			TopN:    3,
		},
		Trends: TrendsConfig{
			LookbackDays: 30,
			PlayerCounts: true,
		},
		Scan: ScanConfig{
			Interval:     duration{5 * time.Minute},
			Concurrency:  4,
			RecordPolicy: "reject",
			CacheTTL:     duration{10 * time.Minute},
		},
		Postgres: PostgresConfig{
			Port:          5432,
			Database:      "skinscout",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			PoolSize:   10,
			MaxRetries: 3,
		},
		S3: S3Config{
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   10,
			RateBurst:   20,
		},
		Notify: NotifyConfig{
			Events: []string{"price_alert", "arb_detected", "scan_error"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"watch":  true,
	"server": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string
	mode := strings.ToLower(c.Mode)

	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, watch, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Market data API
	if c.CSMarket.APIKey == "" {
		errs = append(errs, "csmarket: api_key must be set (or SKINSCOUT_CSMARKET_API_KEY)")
	}
	if c.CSMarket.Currency == "" {
		errs = append(errs, "csmarket: currency must not be empty")
	}
	if c.CSMarket.MaxRetries < 0 {
		errs = append(errs, "csmarket: max_retries must be >= 0")
	}
	if c.CSMarket.RetryBackoff.Duration < 0 {
		errs = append(errs, "csmarket: retry_backoff must be >= 0")
	}
	if c.CSMarket.RequestsPerSecond < 0 {
		errs = append(errs, "csmarket: requests_per_second must be >= 0")
	}

	// Fees
	if c.Fees.Default < 0 || c.Fees.Default >= 1 {
		errs = append(errs, fmt.Sprintf("fees: default must be in [0, 1), got %v", c.Fees.Default))
	}
	for m, f := range c.Fees.PerMarket {
		if f < 0 || f >= 1 {
			errs = append(errs, fmt.Sprintf("fees: per_market.%s must be in [0, 1), got %v", m, f))
		}
	}

	// Alerts
	seen := make(map[string]bool, len(c.Alerts.Targets))
	for i, t := range c.Alerts.Targets {
		if strings.TrimSpace(t.Item) == "" {
			errs = append(errs, fmt.Sprintf("alerts: targets[%d].item must not be empty", i))
		}
		if t.Price < 0 {
			errs = append(errs, fmt.Sprintf("alerts: targets[%d].price must be >= 0", i))
		}
		if seen[t.Item] {
			errs = append(errs, fmt.Sprintf("alerts: duplicate target for %q", t.Item))
		}
		seen[t.Item] = true
	}

	// Arbitrage
	if c.Arbitrage.Pairing != "cheapest_buy" && c.Arbitrage.Pairing != "pairwise" {
		errs = append(errs, fmt.Sprintf("arbitrage: unknown pairing %q (valid: cheapest_buy, pairwise)", c.Arbitrage.Pairing))
	}
	if c.Arbitrage.RankBy != "roi" && c.Arbitrage.RankBy != "profit" {
		errs = append(errs, fmt.Sprintf("arbitrage: unknown rank_by %q (valid: roi, profit)", c.Arbitrage.RankBy))
	}
	if c.Arbitrage.TopN < 0 {
		errs = append(errs, "arbitrage: top_n must be >= 0")
	}

	// Trends
	if c.Trends.LookbackDays < 1 {
		errs = append(errs, "trends: lookback_days must be >= 1")
	}
	if c.Trends.Schedule != "" && len(strings.Fields(c.Trends.Schedule)) != 5 {
		errs = append(errs, fmt.Sprintf("trends: schedule %q must have 5 cron fields", c.Trends.Schedule))
	}
	if c.Trends.ArchiveReports && c.S3.Bucket == "" {
		errs = append(errs, "trends: archive_reports requires s3.bucket")
	}

	// Scan
	if c.Scan.Concurrency < 1 {
		errs = append(errs, "scan: concurrency must be >= 1")
	}
	if c.Scan.RecordPolicy != "reject" && c.Scan.RecordPolicy != "drop" {
		errs = append(errs, fmt.Sprintf("scan: unknown record_policy %q (valid: reject, drop)", c.Scan.RecordPolicy))
	}
	needsInterval := mode == "watch" || mode == "full"
	if needsInterval && c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0 for mode "+mode)
	}

	// Postgres
	if c.Postgres.Enabled() && strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.Enabled() {
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Bucket != "" && c.S3.Region == "" {
		errs = append(errs, "s3: region must not be empty")
	}

	// Server
	if c.Server.Enabled || mode == "server" || mode == "full" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server: rate_burst must be >= 1 when rate_limit is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
