package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sjsage522/taglikeworker/config"
	"sjsage522/taglikeworker/helpers"
	"sjsage522/taglikeworker/internal"
	"sjsage522/taglikeworker/internal/browser"
	"sjsage522/taglikeworker/internal/classifier"
	"sjsage522/taglikeworker/internal/collector"
	"sjsage522/taglikeworker/logger"
	"sjsage522/taglikeworker/services/cache"
	"sjsage522/taglikeworker/services/publisher"
	"sjsage522/taglikeworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if len(os.Args) > 1 {
		cfg.Tags = config.ParseTags(strings.Join(os.Args[1:], ","))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	policy := classifier.Policy{
		MinLikes:       cfg.MinLikes,
		MaxLikes:       cfg.MaxLikes,
		ScrollCount:    cfg.ScrollCount,
		PromoThreshold: cfg.PromoThreshold,
	}
	if err := policy.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid decision policy")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("tags", cfg.Tags).
		Bool("dry_run", cfg.DryRun).
		Dur("run_interval", cfg.RunInterval).
		Msg("Starting application")

	// Set up context with cancellation on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	deps := initializeServices(ctx, cfg, log)
	defer deps.Cleanup()

	driver, err := browser.NewChromeDriver(ctx, browser.ChromeOptions{
		RemoteAddr:  cfg.ChromeAddr,
		Headless:    cfg.ChromeHeadless,
		ProxyServer: cfg.ChromeProxy,
		UserAgent:   helpers.RandomUserAgent(),
		OpTimeout:   cfg.NavTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start browser")
	}
	defer driver.Close()

	w := worker.NewWorker(
		collector.New(driver, cfg.SiteURL, cfg.ScrollSettle, log),
		classifier.New(driver, cfg.SiteURL, log),
		deps,
		worker.Options{
			Policy:         policy,
			MaxItemsPerTag: cfg.MaxItemsPerTag,
			DryRun:         cfg.DryRun,
			VisitTTL:       cfg.VisitTTL,
		},
		log,
	)

	log.Info().Msg("Starting tag worker")
	if err := w.Start(ctx, cfg.Tags, cfg.RunInterval); err != nil {
		log.Error().Err(err).Msg("Worker exited with error")
		return
	}

	log.Info().Msg("Shutting down gracefully...")
}

// initializeServices wires the visited cache and the decision publisher.
// Both fall back to in-process implementations when not configured.
func initializeServices(ctx context.Context, cfg *config.Config, log *logger.Logger) internal.Dependencies {
	deps := internal.Dependencies{}

	cacheLog := log.ForCache()
	if cfg.MemcacheAddr != "" {
		deps.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		cacheLog.Info().Str("addr", cfg.MemcacheAddr).Msg("Using Memcache for visited items")
	} else {
		deps.Cache = cache.NewMemoryService()
		cacheLog.Info().Msg("Using in-memory visited items")
	}

	pubLog := log.ForPublisher()

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			pubLog.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis not reachable, events may be lost")
		}
		deps.Publisher = redisPublisher
		pubLog.Info().
			Str("addr", cfg.RedisAddr).
			Int("db", cfg.RedisDB).
			Str("stream", cfg.RedisStream).
			Msg("Publishing decisions to Redis")
	} else {
		deps.Publisher = publisher.NopPublisher{}
		pubLog.Info().Msg("No Redis configured, decision events are not published")
	}

	return deps
}
