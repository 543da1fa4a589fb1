package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legisfy/assessor-ia-go/internal/config"
	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/handler"
	"github.com/legisfy/assessor-ia-go/internal/infra/cache"
	"github.com/legisfy/assessor-ia-go/internal/infra/observability"
	"github.com/legisfy/assessor-ia-go/internal/infra/openrouter"
	"github.com/legisfy/assessor-ia-go/internal/infra/resilience"
	"github.com/legisfy/assessor-ia-go/internal/infra/supabase"
	"github.com/legisfy/assessor-ia-go/internal/interpreter"
	"github.com/legisfy/assessor-ia-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("openrouter_model", cfg.OpenRouterModel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("ai_parse_timeout", cfg.AIParseTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Bool("auth_enabled", cfg.ServiceJWTSecret != ""),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}
	if cfg.OpenRouterAPIKey == "" {
		logger.Fatal("OPENROUTER_API_KEY is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "legisfy-assessor-ia")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	integrCache := cache.New[*domain.Integration](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	supabaseCB := resilience.NewCircuitBreaker("supabase")
	openrouterCB := resilience.NewCircuitBreaker("openrouter")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		supabaseCB,
		resilienceCfg,
		logger,
	)

	openrouterClient := openrouter.NewClient(
		httpClient,
		cfg.OpenRouterURL,
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterModel,
		openrouterCB,
		metrics,
		logger,
	)

	// --- Interpreter ---
	parser := interpreter.NewAIParser(openrouterClient, bulkhead, cfg.AIParseTimeout, logger)

	// --- Services ---
	auditor := service.NewAuditor(supabaseClient, metrics, logger)
	assessorSvc := service.NewAssessor(
		parser,
		supabaseClient,
		supabaseClient,
		supabaseClient,
		integrCache,
		auditor,
		metrics,
		logger,
	)

	// --- Router ---
	router := handler.NewRouter(assessorSvc, supabaseClient, openrouterClient, metrics, logger, cfg.ServiceJWTSecret)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
