package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/arbitrage"
	s3blob "github.com/alanyoungcy/skinscout/internal/blob/s3"
	"github.com/alanyoungcy/skinscout/internal/cache/local"
	"github.com/alanyoungcy/skinscout/internal/cache/redis"
	"github.com/alanyoungcy/skinscout/internal/config"
	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/metrics"
	"github.com/alanyoungcy/skinscout/internal/normalize"
	"github.com/alanyoungcy/skinscout/internal/notify"
	"github.com/alanyoungcy/skinscout/internal/platform/csmarket"
	"github.com/alanyoungcy/skinscout/internal/server/handler"
	"github.com/alanyoungcy/skinscout/internal/service"
	"github.com/alanyoungcy/skinscout/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application modes
// need to operate. It is constructed by Wire and torn down by the returned
// cleanup function. Stores are nil when Postgres is not configured.
type Dependencies struct {
	Source *csmarket.Client

	// Stores
	OpportunityStore domain.OpportunityStore
	AlertStore       domain.AlertStore
	TrendStore       domain.TrendStore
	AuditStore       domain.AuditStore

	// Caches. Without Redis the bus and locks are in-process and
	// ListingCache is nil.
	ListingCache domain.ListingCache
	LockManager  domain.LockManager
	SignalBus    domain.SignalBus

	// Blob storage
	Archiver domain.TrendArchiver

	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
	Fees     domain.FeeTable

	// Checks probe each configured backend for /api/health.
	Checks map[string]handler.CheckFunc
}

// Services are the application services built on Dependencies.
type Services struct {
	Listings *service.ListingService
	Arb      *service.ArbService
	Alerts   *service.AlertService
	Trends   *service.TrendService
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Metrics: metrics.New(),
		Checks:  make(map[string]handler.CheckFunc),
	}

	deps.Source = csmarket.NewClient(cfg.CSMarket.BaseURL, cfg.CSMarket.APIKey,
		csmarket.WithTimeout(cfg.CSMarket.Timeout.Duration),
		csmarket.WithRetries(cfg.CSMarket.MaxRetries, cfg.CSMarket.RetryBackoff.Duration),
		csmarket.WithRateLimit(cfg.CSMarket.RequestsPerSecond),
		csmarket.WithLogger(logger),
	)

	fees, err := feeTable(ctx, cfg, deps.Source, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: fees: %w", err)
	}
	deps.Fees = fees

	// --- PostgreSQL (optional persistence) ---
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			applied, err := pgClient.RunMigrations(ctx)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
			if len(applied) > 0 {
				logger.InfoContext(ctx, "postgres migrations applied", slog.Any("files", applied))
			}
		}

		pool := pgClient.Pool()
		deps.OpportunityStore = postgres.NewOpportunityStore(pool)
		deps.AlertStore = postgres.NewAlertStore(pool)
		deps.TrendStore = postgres.NewTrendStore(pool)
		deps.AuditStore = postgres.NewAuditStore(pool)
		deps.Checks["postgres"] = pgClient.Ping
	}

	// --- Redis (optional shared cache, cooldowns and pub/sub) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.ListingCache = redis.NewListingCache(redisClient, cfg.Scan.CacheTTL.Duration)
		deps.LockManager = redis.NewLockManager(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.Checks["redis"] = redisClient.Ping
	} else {
		deps.LockManager = local.NewLockManager()
		deps.SignalBus = local.NewSignalBus()
	}

	// --- S3 blob storage (optional report archive) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			Prefix:         cfg.S3.Prefix,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewReportArchiver(s3blob.NewWriter(s3Client))
		deps.Checks["s3"] = s3Client.Health
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	logger.InfoContext(ctx, "dependencies wired",
		slog.Bool("postgres", deps.OpportunityStore != nil),
		slog.Bool("redis", deps.ListingCache != nil),
		slog.Bool("s3", deps.Archiver != nil),
		slog.Int("notify_senders", len(senders)),
		slog.Int("fee_markets", len(deps.Fees.Fees)),
	)
	return deps, cleanup, nil
}

// feeTable builds the fee table from config, or from the API when
// fees.from_api is set. An API failure falls back to the configured table.
func feeTable(ctx context.Context, cfg *config.Config, src *csmarket.Client, logger *slog.Logger) (domain.FeeTable, error) {
	configured, err := cfg.FeeTable()
	if err != nil {
		return domain.FeeTable{}, err
	}
	if !cfg.Fees.FromAPI {
		return configured, nil
	}
	published, err := src.FeeTable(ctx, decimal.NewFromFloat(cfg.Fees.Default))
	if err != nil {
		logger.WarnContext(ctx, "fee table from API failed, using configured fees",
			slog.String("error", err.Error()),
		)
		return configured, nil
	}
	return published, nil
}

// NewServices builds the application services from deps.
func NewServices(cfg *config.Config, deps *Dependencies, logger *slog.Logger) (*Services, error) {
	registry := arbitrage.DefaultRegistry()
	pairing, err := registry.Get(strings.ToLower(cfg.Arbitrage.Pairing))
	if err != nil {
		return nil, fmt.Errorf("app: pairing: %w (available: %s)", err, strings.Join(registry.List(), ", "))
	}
	rankBy, err := arbitrage.ParseRankBy(strings.ToLower(cfg.Arbitrage.RankBy))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	norm := normalize.New(normalize.ParsePolicy(cfg.Scan.RecordPolicy))
	markets, currency := cfg.Markets(), cfg.Currency()

	listings := service.NewListingService(deps.Source, norm, deps.ListingCache, deps.Metrics,
		service.ListingConfig{
			Markets:     markets,
			Currency:    currency,
			Concurrency: cfg.Scan.Concurrency,
		}, logger)

	arb := service.NewArbService(listings, arbitrage.NewDetector(pairing, logger),
		deps.OpportunityStore, deps.SignalBus, deps.AuditStore, deps.Notifier, deps.Metrics,
		service.ArbConfig{
			Fees:   deps.Fees,
			RankBy: rankBy,
			TopN:   cfg.Arbitrage.TopN,
		}, logger)

	alerts := service.NewAlertService(listings, deps.AlertStore, deps.LockManager,
		deps.SignalBus, deps.AuditStore, deps.Notifier, deps.Metrics,
		service.AlertConfig{Cooldown: cfg.Alerts.Cooldown.Duration}, logger)

	trends := service.NewTrendService(deps.Source, norm, deps.TrendStore, deps.Archiver,
		deps.AuditStore, deps.Metrics,
		service.TrendConfig{
			Markets:      markets,
			Currency:     currency,
			LookbackDays: cfg.Trends.LookbackDays,
			PlayerCounts: cfg.Trends.PlayerCounts,
			Archive:      cfg.Trends.ArchiveReports,
		}, logger)

	return &Services{Listings: listings, Arb: arb, Alerts: alerts, Trends: trends}, nil
}
