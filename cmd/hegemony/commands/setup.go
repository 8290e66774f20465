package commands

import (
	"fmt"
	"time"

	"github.com/wonny/hegemony/internal/external/yfin"
	"github.com/wonny/hegemony/pkg/config"
	"github.com/wonny/hegemony/pkg/database"
	"github.com/wonny/hegemony/pkg/httputil"
	"github.com/wonny/hegemony/pkg/logger"
	"github.com/wonny/hegemony/pkg/redis"
)

// app bundles the dependencies every command needs
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB
}

// setup loads configuration, builds the logger, and connects to the
// database. Callers must defer a.close().
func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	a.db.Close()
}

// provider builds the market data client with retry and, when Redis is
// available, a cross-process rate limit shared with other instances.
func (a *app) provider(redisClient *redis.Client) *yfin.Client {
	httpClient := httputil.New(a.log, a.cfg.Provider.Timeout).
		WithRetry(3, 2*time.Second).
		WithUserAgent("Mozilla/5.0 (compatible; hegemony/1.0)")

	if redisClient != nil && redisClient.Enabled() {
		limiter := redis.NewRateLimiter(redisClient, "hegemony")
		httpClient = httpClient.WithRateLimiter(limiter, redis.ProviderRateLimit)
	}

	return yfin.NewClient(a.cfg, httpClient, a.log)
}

// redisClient connects to Redis, or returns a disabled no-op client
func (a *app) redisClient() (*redis.Client, error) {
	client, err := redis.New(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}
