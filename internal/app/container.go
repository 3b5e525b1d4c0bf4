package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kapu/emotion-map-go/internal/config"
	"github.com/kapu/emotion-map-go/internal/httpapi"
	"github.com/kapu/emotion-map-go/internal/service/ai"
	"github.com/kapu/emotion-map-go/internal/service/cache"
	"github.com/kapu/emotion-map-go/internal/service/database"
	"github.com/kapu/emotion-map-go/internal/service/history"
	"go.uber.org/zap"
)

// Container bundles the assembled services behind the HTTP surface.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Router *gin.Engine

	closers []func()
}

// Close releases held resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and returns a container holding
// the wired router. All heavy-weight initialization (DB/cache/AI) happens here
// so handlers stay focused on request logic.
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

	// Cache and database
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	if err := postgresSvc.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
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

	// The resolver re-reads config on every call so an explicit per-request
	// key always wins and the configured key is consulted late.
	analyzer := ai.NewEmotionalMapAnalyzer(modelManager, func() string {
		return cfg.Gemini.APIKey
	}, logger)

	historyRepo := history.NewRepository(postgresSvc, logger)
	historySvc := history.NewService(historyRepo, cacheSvc, logger)

	handler := httpapi.NewHandler(analyzer, historySvc, modelManager, logger)
	router := httpapi.NewRouter(handler, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Router:  router,
		closers: closers,
	}, nil
}
