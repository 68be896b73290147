package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/account"
	"github.com/gateline/gateline/internal/admin"
	"github.com/gateline/gateline/internal/cache"
	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/credential"
	"github.com/gateline/gateline/internal/dispatch"
	"github.com/gateline/gateline/internal/gate"
	"github.com/gateline/gateline/internal/sched"
	"github.com/gateline/gateline/internal/server"
	"github.com/gateline/gateline/internal/storage"
	"github.com/gateline/gateline/internal/storage/memory"
	"github.com/gateline/gateline/internal/storage/postgres"
	"github.com/gateline/gateline/pkg/config"
	"github.com/gateline/gateline/pkg/logging"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	version    = "dev"
	buildTime  = "unknown"
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Gateline Server",
		zap.String("version", version),
		zap.String("build_time", buildTime),
		zap.Bool("debug", cfg.Server.Debug),
	)

	// Storage
	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = store.Ping(ctx)
	cancel()
	if err != nil {
		logger.Fatal("Failed to ping storage", zap.Error(err))
	}
	logger.Info("Storage initialized", zap.String("type", cfg.Storage.Type))

	// Credential cache
	credCache, err := newCache(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() { _ = credCache.Close() }()
	logger.Info("Cache initialized", zap.String("type", cfg.Cache.Type))

	creds := credential.NewStore(credCache, store, logger)
	if err := bootstrapInitialKey(store, creds, logger); err != nil {
		logger.Fatal("Failed to bootstrap initial API key", zap.Error(err))
	}

	// Contracts and dispatch
	registry := contract.NewRegistry(logger)
	if err := registry.RegisterService(account.Service(creds, logger)); err != nil {
		logger.Fatal("Failed to register account service", zap.Error(err))
	}

	chain := gate.NewChain(creds, logger)
	dispatcher := dispatch.New(registry, chain, cfg.Server.Endpoint, cfg.Server.Debug, logger)

	// Servers
	manager := server.NewManager(cfg, logger)
	manager.AddProvider(dispatcher)
	if cfg.Admin.Port > 0 {
		manager.AddAdminProvider(admin.NewHandlers(creds, registry, logger))
	}

	if err := manager.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start servers", zap.Error(err))
	}

	// Background jobs
	scheduler := sched.New(logger)
	stats := scheduler.Register(sched.Job{
		Name:     "storage-healthcheck",
		Schedule: "@every 5m",
		Execute: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				logger.Error("Storage healthcheck failed", zap.Error(err))
			}
		},
	})
	logger.Info("Scheduled jobs registered",
		zap.Int("created", stats.Created),
		zap.Int("failed", stats.Failed),
		zap.Int("started", scheduler.Start()))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		return postgres.NewStore(&postgres.Config{
			DSN:          cfg.Storage.Postgres.DSN,
			MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
			Migrate:      cfg.Storage.Postgres.Migrate,
		}, logger)
	default:
		return memory.NewStore(), nil
	}
}

func newCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	switch cfg.Cache.Type {
	case "redis":
		return cache.NewRedis(&cache.RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, logger)
	default:
		return cache.NewMemory(), nil
	}
}

// bootstrapInitialKey mints and logs an API key pair when the store holds
// none, so a fresh installation has working credentials without manual
// setup. The secret is only ever printed here.
func bootstrapInitialKey(store storage.Store, creds *credential.Store, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := store.APIKeys().Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	pair, err := creds.CreateKeyPair(ctx)
	if err != nil {
		return err
	}
	logger.Info("Generated initial API key pair",
		zap.String("key", pair.Key),
		zap.String("secret", pair.Secret))
	return nil
}
