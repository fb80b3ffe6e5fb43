package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/maltedev/amazon-search-scraper/internal/api"
	"github.com/maltedev/amazon-search-scraper/internal/browser"
	"github.com/maltedev/amazon-search-scraper/internal/config"
	"github.com/maltedev/amazon-search-scraper/internal/crawler"
	"github.com/maltedev/amazon-search-scraper/internal/database"
	"github.com/maltedev/amazon-search-scraper/internal/detector"
	"github.com/maltedev/amazon-search-scraper/internal/events"
	"github.com/maltedev/amazon-search-scraper/internal/jobs"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
	"github.com/maltedev/amazon-search-scraper/internal/navigator"
	"github.com/maltedev/amazon-search-scraper/internal/pipeline"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	marketplace := models.ParseMarketplace(os.Getenv("COUNTRY"))

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		ProxyServer:    cfg.Browser.ProxyServer,
		Marketplace:    marketplace,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	pool := browser.NewPool(b, cfg.Crawl.PoolSize)
	defer pool.Close()

	m := metrics.New()

	sink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up sinks", "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	det := detector.New()
	limiter := rate.NewLimiter(rate.Every(cfg.Crawl.RateInterval), cfg.Crawl.RateBurst)
	navOpts := navigator.Options{
		NavTimeout:  cfg.Crawl.NavTimeout,
		MaxAttempts: cfg.Crawl.MaxNavAttempts,
		SettleDelay: cfg.Crawl.SettleDelay,
	}

	manager := jobs.NewManager(jobs.Deps{
		NewFetcher: func() jobs.Fetcher {
			return navigator.New(pool, det, limiter, m, navOpts)
		},
		Sink:        sink,
		Metrics:     m,
		Concurrency: cfg.Crawl.PoolSize,
		Crawl:       crawler.Options{AbortAfter: cfg.Crawl.AbortAfter},
	})

	// A keyword list in the environment kicks off an initial job.
	if in := config.InputFromEnv(); in != nil {
		if err := in.Validate(); err != nil {
			logger.Error("invalid crawl input", "error", err)
			os.Exit(1)
		}
		job := manager.Submit(ctx, in)
		logger.Info("startup job submitted", "id", job.ID, "keywords", len(in.Keywords))
	}

	handlers := api.NewHandlers(ctx, manager, m, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Group(handlers.Routes)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("shutdown complete")
}

// buildSink assembles the configured emission targets: the JSONL file is
// always on; Postgres and the Redis stream are opt-in.
func buildSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.RecordSink, error) {
	var sinks []pipeline.RecordSink

	jsonl, err := pipeline.NewJSONLSink(cfg.Output.File)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, jsonl)

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, database.NewRecordSink(db))
		logger.Info("postgres sink enabled", "database", cfg.Database.Name)
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		sinks = append(sinks, events.NewPublisher(client, cfg.Redis.Stream))
		logger.Info("redis sink enabled", "stream", cfg.Redis.Stream)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return pipeline.NewMultiSink(sinks...), nil
}
