package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SKINSCOUT_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SKINSCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Market data API ──
	setStr(&cfg.CSMarket.BaseURL, "SKINSCOUT_CSMARKET_BASE_URL")
	setStr(&cfg.CSMarket.APIKey, "CSMARKETAPI_KEY") // compatibility alias
	setStr(&cfg.CSMarket.APIKey, "SKINSCOUT_CSMARKET_API_KEY")
	setStr(&cfg.CSMarket.Currency, "SKINSCOUT_CSMARKET_CURRENCY")
	setStringSlice(&cfg.CSMarket.Markets, "SKINSCOUT_CSMARKET_MARKETS")
	setDuration(&cfg.CSMarket.Timeout, "SKINSCOUT_CSMARKET_TIMEOUT")
	setInt(&cfg.CSMarket.MaxRetries, "SKINSCOUT_CSMARKET_MAX_RETRIES")
	setDuration(&cfg.CSMarket.RetryBackoff, "SKINSCOUT_CSMARKET_RETRY_BACKOFF")
	setFloat64(&cfg.CSMarket.RequestsPerSecond, "SKINSCOUT_CSMARKET_REQUESTS_PER_SECOND")

	// ── Fees ──
	setFloat64(&cfg.Fees.Default, "SKINSCOUT_FEES_DEFAULT")
	setBool(&cfg.Fees.FromAPI, "SKINSCOUT_FEES_FROM_API")

	// ── Watchlist / alerts ──
	setStringSlice(&cfg.Watchlist.Items, "SKINSCOUT_WATCHLIST_ITEMS")
	setDuration(&cfg.Alerts.Cooldown, "SKINSCOUT_ALERTS_COOLDOWN")

	// ── Arbitrage ──
	setStr(&cfg.Arbitrage.Pairing, "SKINSCOUT_ARBITRAGE_PAIRING")
	setStr(&cfg.Arbitrage.RankBy, "SKINSCOUT_ARBITRAGE_RANK_BY")
	setInt(&cfg.Arbitrage.TopN, "SKINSCOUT_ARBITRAGE_TOP_N")

	// ── Trends ──
	setInt(&cfg.Trends.LookbackDays, "SKINSCOUT_TRENDS_LOOKBACK_DAYS")
	setBool(&cfg.Trends.PlayerCounts, "SKINSCOUT_TRENDS_PLAYER_COUNTS")
	setBool(&cfg.Trends.ArchiveReports, "SKINSCOUT_TRENDS_ARCHIVE_REPORTS")
	setStr(&cfg.Trends.Schedule, "SKINSCOUT_TRENDS_SCHEDULE")

	// ── Scan ──
	setDuration(&cfg.Scan.Interval, "SKINSCOUT_SCAN_INTERVAL")
	setInt(&cfg.Scan.Concurrency, "SKINSCOUT_SCAN_CONCURRENCY")
	setStr(&cfg.Scan.RecordPolicy, "SKINSCOUT_SCAN_RECORD_POLICY")
	setDuration(&cfg.Scan.CacheTTL, "SKINSCOUT_SCAN_CACHE_TTL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.DSN, "SKINSCOUT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SKINSCOUT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SKINSCOUT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SKINSCOUT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SKINSCOUT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SKINSCOUT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SKINSCOUT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SKINSCOUT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SKINSCOUT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SKINSCOUT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SKINSCOUT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SKINSCOUT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SKINSCOUT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SKINSCOUT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SKINSCOUT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SKINSCOUT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SKINSCOUT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SKINSCOUT_S3_REGION")
	setStr(&cfg.S3.Bucket, "SKINSCOUT_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "SKINSCOUT_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "SKINSCOUT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SKINSCOUT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SKINSCOUT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SKINSCOUT_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SKINSCOUT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SKINSCOUT_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "SKINSCOUT_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "SKINSCOUT_SERVER_CORS_ORIGINS")
	setFloat64(&cfg.Server.RateLimit, "SKINSCOUT_SERVER_RATE_LIMIT")
	setInt(&cfg.Server.RateBurst, "SKINSCOUT_SERVER_RATE_BURST")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SKINSCOUT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SKINSCOUT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SKINSCOUT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SKINSCOUT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SKINSCOUT_MODE")
	setStr(&cfg.LogLevel, "SKINSCOUT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
