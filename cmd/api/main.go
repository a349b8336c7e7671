package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/proflow/proflow-back/internal/auth"
	"github.com/proflow/proflow-back/internal/cache"
	"github.com/proflow/proflow-back/internal/config"
	httpserver "github.com/proflow/proflow-back/internal/http"
	"github.com/proflow/proflow-back/internal/http/handlers"
	"github.com/proflow/proflow-back/internal/notify"
	"github.com/proflow/proflow-back/internal/repository"
	"github.com/proflow/proflow-back/internal/service"
	"github.com/proflow/proflow-back/internal/sheet"
	"github.com/proflow/proflow-back/internal/worker"
)

func main() {
	logger := log.New(os.Stdout, "[proflow] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, repoCloser := setupRepository(ctx, cfg, logger)
	defer repoCloser()

	redisClient, redisCloser := setupRedis(cfg, logger)
	defer redisCloser()

	notifier := setupNotifier(ctx, cfg, redisClient, logger)
	prefs := setupPrefs(ctx, redisClient, logger)

	snapshot := cache.NewSnapshotCache()
	sessions := auth.NewSessions(time.Duration(cfg.SessionTTLHours) * time.Hour)
	feed := handlers.NewFeedHub(logger)

	itemsService := service.NewItemsService(repo, notifier, snapshot, logger)
	fetcher := sheet.NewFetcher(sheet.FetcherConfig{
		ProxyBase: cfg.ImportProxyBase,
		Timeout:   time.Duration(cfg.ImportFetchTimeoutMS) * time.Millisecond,
	})
	importService := service.NewImportService(repo, prefs, notifier, fetcher, service.ImportConfig{
		FetchTimeout: time.Duration(cfg.ImportFetchTimeoutMS) * time.Millisecond,
	}, logger)

	api := handlers.NewAPI(itemsService, importService, sessions, feed, logger)

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Sessions:       sessions,
		Logger:         logger,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	watcher := worker.NewWatcher(notifier, repo, snapshot, feed, logger)
	go watcher.Start(ctx)
	logger.Printf("feed watcher started")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Printf("api listening on :%s", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

func setupRepository(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (repository.ItemsRepository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Printf("DATABASE_URL not configured, using in-memory repository")
		return repository.NewMemoryItemsRepository(), func() {}
	}

	pgRepo, err := repository.NewPostgresItemsRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Printf("failed to initialize postgres repository, fallback to memory: %v", err)
		return repository.NewMemoryItemsRepository(), func() {}
	}
	logger.Printf("postgres repository initialized")
	return pgRepo, func() {
		pgRepo.Close()
	}
}

func setupRedis(cfg config.Config, logger *log.Logger) (*redis.Client, func()) {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using in-process fallbacks")
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() {
		_ = client.Close()
	}
}

func setupNotifier(
	ctx context.Context,
	cfg config.Config,
	client *redis.Client,
	logger *log.Logger,
) notify.Notifier {
	if client == nil {
		return notify.NewLocalNotifier()
	}

	redisNotifier, err := notify.NewRedisNotifier(ctx, client, notify.RedisConfig{Channel: cfg.RedisChannel}, logger)
	if err != nil {
		logger.Printf("failed to initialize redis notifier, fallback to local: %v", err)
		return notify.NewLocalNotifier()
	}
	logger.Printf("redis change notifier initialized")
	return redisNotifier
}

func setupPrefs(
	ctx context.Context,
	client *redis.Client,
	logger *log.Logger,
) repository.PrefsRepository {
	if client == nil {
		return repository.NewMemoryPrefsRepository()
	}

	redisPrefs, err := repository.NewRedisPrefsRepository(ctx, client)
	if err != nil {
		logger.Printf("failed to initialize redis prefs, fallback to memory: %v", err)
		return repository.NewMemoryPrefsRepository()
	}
	logger.Printf("redis prefs repository initialized")
	return redisPrefs
}
