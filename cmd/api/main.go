// Package main is the entrypoint for the Strucbot API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/cache"
	"github.com/strucbot/strucbot/internal/config"
	"github.com/strucbot/strucbot/internal/genai"
	"github.com/strucbot/strucbot/internal/handler"
	"github.com/strucbot/strucbot/internal/metrics"
	"github.com/strucbot/strucbot/internal/middleware"
	"github.com/strucbot/strucbot/internal/server"
	"github.com/strucbot/strucbot/internal/service"
	"github.com/strucbot/strucbot/internal/store"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	if cfg.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, using the default insecure secret")
	}

	// Initialize store: in-memory by default, Postgres when configured
	st, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Seed the demo admin account
	if err := store.SeedAdmin(ctx, st); err != nil {
		logger.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	// Optional Redis for the generation rate limit
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
	}

	// Initialize services
	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenService(cfg.SigningSecret())
	generator := genai.NewClient(genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  logger,
	})
	authService := service.NewAuthService(st, tokens, logger, recorder)
	schemaService := service.NewSchemaService(generator, st, logger, recorder)

	// Initialize handlers
	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		cacheChecker = cacheClient
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:  logger,
		Auth:    handler.NewAuthHandler(authService, logger),
		Schema:  handler.NewSchemaHandler(schemaService, logger),
		Health:  handler.NewHealthHandler(st, cacheChecker),
		Metrics: handler.NewMetricsHandler(recorder),
		AuthMW: middleware.AuthConfig{
			Logger: logger,
			Tokens: tokens,
			Users:  st,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:        logger,
			Cache:         cacheClient,
			Enabled:       cacheClient != nil,
			RatePerMinute: cfg.GenerateRatePerMinute,
			Burst:         cfg.GenerateBurst,
		},
		CORS: middleware.DefaultCORSConfig(cfg.FrontendURL),
	})

	// Create and run server
	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"model", cfg.GeminiModel,
		"frontend_url", cfg.FrontendURL,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initStore picks the store backend based on configuration.
func initStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory store (demo mode)")
		return store.NewMemory(), nil
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")
	return pg, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
