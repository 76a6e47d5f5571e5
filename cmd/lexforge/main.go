// Command lexforge runs the query orchestration service for the legal
// document intelligence platform.
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
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lexforge/lexforge/internal/adapter/engines"
	lexhttp "github.com/lexforge/lexforge/internal/adapter/http"
	"github.com/lexforge/lexforge/internal/adapter/llm"
	lexnats "github.com/lexforge/lexforge/internal/adapter/nats"
	"github.com/lexforge/lexforge/internal/adapter/otel"
	"github.com/lexforge/lexforge/internal/adapter/postgres"
	"github.com/lexforge/lexforge/internal/adapter/ristretto"
	"github.com/lexforge/lexforge/internal/adapter/ws"
	"github.com/lexforge/lexforge/internal/config"
	"github.com/lexforge/lexforge/internal/domain/plan"
	"github.com/lexforge/lexforge/internal/logger"
	"github.com/lexforge/lexforge/internal/middleware"
	"github.com/lexforge/lexforge/internal/port/engine"
	"github.com/lexforge/lexforge/internal/port/messagequeue"
	"github.com/lexforge/lexforge/internal/resilience"
	"github.com/lexforge/lexforge/internal/service"
)

const serviceName = "lexforge-core"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"engine_timeout", cfg.Orchestrator.EngineTimeout,
		"max_parallel", cfg.Orchestrator.MaxParallel,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownTelemetry, err := otel.Init(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := lexnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// New documents invalidate every cached engine result.
	cancelIngested, err := queue.Subscribe(ctx, messagequeue.SubjectDocumentsIngested,
		func(ctx context.Context, subject string, data []byte) error {
			slog.Info("documents ingested, flushing engine cache")
			return cache.Clear(ctx)
		})
	if err != nil {
		return fmt.Errorf("ingestion subscriber: %w", err)
	}
	defer cancelIngested()

	// --- Engines ---

	store := postgres.NewStore(pool)
	engineBreaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	opts := engines.Options{
		Cache:         cache,
		Breaker:       engineBreaker,
		EvidenceLimit: cfg.Orchestrator.EvidenceLimit,
		CacheTTL:      cfg.Cache.TTL,
	}

	retrieval := engines.NewRetrieval(queue, opts, cfg.Orchestrator.RetrievalTopK)
	if err := retrieval.Start(ctx); err != nil {
		return fmt.Errorf("retrieval engine: %w", err)
	}
	defer retrieval.Close()

	registry := engine.NewRegistry(
		engines.NewCitation(store, opts),
		engines.NewTimeline(store, opts),
		engines.NewContradiction(store, opts),
		retrieval,
	)

	// --- Services ---

	hub := ws.NewHub()
	sink := postgres.NewAuditStore(pool)

	llmBreaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	classifier := llm.NewClassifier(cfg.LLM.URL, cfg.LLM.APIKey, cfg.LLM.Model)
	classifier.SetBreaker(llmBreaker)

	orchestrator := service.NewOrchestratorService(
		classifier,
		service.NewPlannerService(registry, plan.DependencyMap{}),
		service.NewExecutorService(registry, hub, metrics, cfg.Orchestrator),
		service.NewAggregatorService(),
		sink,
		hub,
		metrics,
	)

	// --- HTTP ---

	handlers := lexhttp.NewHandlers(orchestrator, sink, func() map[string]string {
		components := map[string]string{
			"llm_breaker":    llmBreaker.State(),
			"engine_breaker": engineBreaker.State(),
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			components["postgres"] = "unreachable"
		} else {
			components["postgres"] = "ok"
		}
		return components
	})

	r := chi.NewRouter()
	r.Use(lexhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(lexhttp.Logger)
	r.Use(otel.HTTPMiddleware(serviceName))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(2 * time.Minute))

	r.Get("/ws", hub.HandleWS)
	lexhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
