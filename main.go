package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"goal-calculator/config"
	httpLayer "goal-calculator/http"
	"goal-calculator/repository"
	"goal-calculator/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(resolveLogLevel(cfg.LogLevel, logger))

	var goalRepo repository.GoalRepository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}

		pgRepo := repository.NewGoalRepositoryPostgres(db, logger)
		if err := pgRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("Failed to prepare schema: %v", err)
		}
		goalRepo = pgRepo
		logger.Info("Using PostgreSQL goal history")
	} else {
		goalRepo = repository.NewGoalRepositoryMemory()
		logger.Info("Using in-memory goal history")
	}

	var cache repository.CacheRepository
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr, logger)
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.WithError(err).Warn("Redis not reachable, results will be recomputed until it is")
		}
		cancel()
		cache = redisCache
	} else {
		memoryCache := repository.NewMemoryCache()
		defer memoryCache.Stop()
		cache = memoryCache
	}

	explainer := service.NewExplanationService(service.ExplanationConfig{
		APIKey:         cfg.OpenAIKey,
		APIURL:         cfg.OpenAIURL,
		Model:          cfg.OpenAIModel,
		CurrencySymbol: cfg.CurrencySymbol,
	}, logger)

	goalService := service.NewGoalService(goalRepo, cache, explainer, logger, service.GoalServiceOptions{
		CacheTTL:       cfg.CacheTTL,
		CurrencySymbol: cfg.CurrencySymbol,
	})
	goalHandler := httpLayer.NewGoalHandler(goalService, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitCapacity, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.HistoryPruneSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := goalService.PruneHistory(ctx, cfg.HistoryRetention); err != nil {
			logger.WithError(err).Error("History pruning failed")
		}
	})
	if err != nil {
		logger.Fatalf("Invalid history prune schedule %q: %v", cfg.HistoryPruneSchedule, err)
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpLayer.NewRouter(goalHandler, rateLimiter, cfg.TrustProxy),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("API listening on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Errorf("Error starting server: %v", err)
		return
	case <-quit:
		logger.Info("Shutting down server...")
	}

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// resolveLogLevel falls back to info when the configured level is unknown.
func resolveLogLevel(raw string, logger *logrus.Logger) logrus.Level {
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		logger.Warnf("Invalid log level %q, using info: %v", raw, err)
		return logrus.InfoLevel
	}
	return level
}
