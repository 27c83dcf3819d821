package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/config"
	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/metrics"
	"github.com/kapu/name-bender-go/internal/server"
	"github.com/kapu/name-bender-go/internal/service/ai"
	"github.com/kapu/name-bender-go/internal/service/availability"
	"github.com/kapu/name-bender-go/internal/service/brainstorm"
	"github.com/kapu/name-bender-go/internal/service/cache"
	"github.com/kapu/name-bender-go/internal/service/database"
	"github.com/kapu/name-bender-go/internal/service/tld"
	"github.com/kapu/name-bender-go/internal/service/trademark"
)

// Container bundles the assembled services behind the HTTP server.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *brainstorm.Registry
	Server   *server.Server

	closers []func()
}

// Close releases infrastructure in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles cache, database, AI and engine services. All network
// dialing happens here so the server only routes.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	// Cache
	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			if cfg.Preferences.Backend == "redis" {
				return nil, fmt.Errorf("failed to create cache service: %w", err)
			}
			logger.Warn("Redis unavailable, availability cache disabled", zap.Error(err))
			cacheSvc, err = nil, nil
		} else {
			svc := cacheSvc
			closers = append(closers, func() {
				_ = svc.Close()
			})
		}
	}

	// Availability oracle
	var resultCache availability.ResultCache
	if cacheSvc != nil {
		resultCache = cacheSvc
	}
	oracle := availability.NewCachedOracle(
		availability.NewDoHOracle(cfg.DNS.DoHURL, logger),
		resultCache,
		cfg.Engine.AvailabilityTTL,
		m,
		logger,
	)

	// TLD preferences
	prefs, closePrefs, err := buildPreferences(ctx, cfg, cacheSvc, logger)
	if err != nil {
		return nil, err
	}
	if closePrefs != nil {
		closers = append(closers, closePrefs)
	}

	// AI stack
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.Model,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	generator := ai.NewGenerator(modelManager, m, logger)

	// Trademarks
	resolver := trademark.NewResolver(trademark.NewClient(cfg.Trademark.BaseURL, cfg.Trademark.APIKey, logger), m, logger)
	if !resolver.Configured() {
		logger.Info("Trademark API key not set, checks fall back to manual search")
	}

	registry := brainstorm.NewRegistry(brainstorm.Deps{
		Generator:      generator,
		Oracle:         oracle,
		Trademarks:     resolver,
		Preferences:    prefs,
		SweepBatchSize: cfg.Engine.SweepBatchSize,
		Metrics:        m,
		Logger:         logger,
	}, constants.SessionConfig.IdleTimeout)

	metricsHandler := promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{Registry: promRegistry})
	srv := server.New(cfg.Server, registry, generator, metricsHandler, logger)

	logger.Info("Services assembled",
		zap.Bool("redis", cacheSvc != nil),
		zap.String("preferences", cfg.Preferences.Backend),
		zap.Bool("trademark_api", resolver.Configured()),
		zap.Bool("openai_fallback", cfg.OpenAI.EnableFallback && cfg.OpenAI.APIKey != ""),
	)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Server:   srv,
		closers:  closers,
	}, nil
}

func buildPreferences(ctx context.Context, cfg *config.Config, cacheSvc *cache.CacheService, logger *zap.Logger) (tld.PreferenceStore, func(), error) {
	switch cfg.Preferences.Backend {
	case "redis":
		if cacheSvc == nil {
			return nil, nil, fmt.Errorf("redis preference store requires a redis connection")
		}
		return tld.NewRedisPreferences(cacheSvc), nil, nil
	case "postgres":
		postgresSvc, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		closer := func() {
			_ = postgresSvc.Close()
		}
		prefs := tld.NewPostgresPreferences(postgresSvc.GetDB(), logger)
		if err := prefs.EnsureSchema(ctx); err != nil {
			closer()
			return nil, nil, fmt.Errorf("failed to prepare preference table: %w", err)
		}
		return prefs, closer, nil
	default:
		return tld.NewMemoryPreferences(), nil, nil
	}
}
