package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/lock"
	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/analytics"
	"fxconvert/internal/api"
	"fxconvert/internal/config"
	"fxconvert/internal/conversion"
	"fxconvert/internal/platform/db"
	httpserver "fxconvert/internal/platform/http"
	"fxconvert/internal/rate"
	"fxconvert/internal/ws"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts the HTTP server and the scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	SetupLogging(appCfg.Logging)
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	// Repositories
	var currencyRepo adapters.CurrencyRepository = postgres.NewCurrencyRepository(pool)
	if appCfg.Cache.Enabled {
		currencyCache, cacheErr := cache.NewCurrencyCache(currencyRepo, appCfg.Cache.MaxItems, time.Duration(appCfg.Cache.TTLSeconds)*time.Second)
		if cacheErr != nil {
			return cacheErr
		}
		defer currencyCache.Close()
		currencyRepo = currencyCache
		logrus.Info("✅ Currency cache enabled")
	}
	rateRepo := postgres.NewRateRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	pivotRepo := postgres.NewPivotRepository(pool)
	transactor := postgres.NewTransactor(pool)

	locker, closeLocker, err := newLocker(startupCtx, appCfg)
	if err != nil {
		logrus.WithError(err).Error("Failed to create rate locker")
		return err
	}
	defer closeLocker()

	// Core
	normalizer := conversion.NewNormalizer(conversion.Pivots{
		EURToUSD: appCfg.Conversion.EURToUSD,
		SDRToUSD: appCfg.Conversion.SDRToUSD,
	})
	engine := conversion.NewEngine(normalizer)
	rateService := rate.NewService(
		rate.NewQueryValidator(appCfg.Conversion.MinYear, appCfg.Conversion.MaxYear),
		currencyRepo, rateRepo, engine,
	)
	aggregator := analytics.NewAggregator(currencyRepo, rateRepo, auditRepo, transactor, locker, appCfg.Defaults.MaxAuditLimit)

	scheduler := rate.NewScheduler(pivotRepo, normalizer, time.Duration(appCfg.Scheduler.PivotRefreshSec)*time.Second)
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Transport
	wsServer := ws.NewServer(ws.NewRouter(rateService, aggregator, appCfg.Defaults), appCfg.WebSocket)
	router := api.NewRouter(wsServer)

	logrus.Info("Starting http server")
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router, wsServer.CloseAll); serverErr != nil {
		// Cancel the root context to stop scheduler and open connections
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// SetupLogging points logrus at stdout with the configured level, falling
// back to info.
func SetupLogging(cfg config.Logging) {
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(cfg.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
}

func newLocker(ctx context.Context, cfg *config.AppConfig) (adapters.Locker, func(), error) {
	if cfg.Lock.Backend != config.LockBackendRedis {
		logrus.Info("✅ Using in-process rate locks")
		return lock.NewLocalLock(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	logrus.Info("✅ Using redis rate locks")

	opts := lock.DefaultOptions()
	if cfg.Lock.ExpirySeconds > 0 {
		opts.Expiry = time.Duration(cfg.Lock.ExpirySeconds) * time.Second
	}
	if cfg.Lock.Retries > 0 {
		opts.Retries = cfg.Lock.Retries
	}
	if cfg.Lock.RetryDelayMs > 0 {
		opts.RetryDelay = time.Duration(cfg.Lock.RetryDelayMs) * time.Millisecond
	}
	return lock.NewRedisLock(client, opts), func() { _ = client.Close() }, nil
}
