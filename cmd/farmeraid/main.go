// Farmer-Aid - Crop suitability and advisory service for Pakistani farmers.

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

	"github.com/SaadGoaya/Farmer-aid/internal/advisory"
	"github.com/SaadGoaya/Farmer-aid/internal/agro"
	"github.com/SaadGoaya/Farmer-aid/internal/api"
	"github.com/SaadGoaya/Farmer-aid/internal/bus"
	"github.com/SaadGoaya/Farmer-aid/internal/cache"
	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
	"github.com/SaadGoaya/Farmer-aid/internal/pipeline"
	"github.com/SaadGoaya/Farmer-aid/internal/repository"
	"github.com/SaadGoaya/Farmer-aid/internal/rules"
	"github.com/SaadGoaya/Farmer-aid/internal/upstream"
	"github.com/SaadGoaya/Farmer-aid/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("FARMERAID_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting farmeraid",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("FARMERAID_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}
	cfg.Upstream.GeminiKey = os.Getenv("GEMINI_API_KEY")

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Rule Engine with built-in rules plus database rules
	engine, err := rules.NewEngine(100)
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	if err := loadRules(ctx, repo, engine); err != nil {
		slog.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", engine.RulesCount())

	// Initialize domain components
	resolver := geo.NewResolver()
	store := agro.NewThresholdStore(repo)
	registry := agro.NewRegistry(store)
	advisor := advisory.NewGenerator()
	client := upstream.NewClient(cfg.Upstream, cfg.Cache, cacheImpl)

	p := pipeline.New(resolver, registry, engine, advisor, client, repo, busImpl)

	// Initialize async worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("FARMERAID_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, p)
		if err := asyncWorker.Start(); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "topic", domain.TopicEvaluationRequested)
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, client, p, store, resolver, engine, repo, cacheImpl, busImpl, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("farmeraid is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("farmeraid shutdown complete")
}

// loadRules loads the built-in alert rules plus anything saved in the
// database into the engine.
func loadRules(ctx context.Context, repo domain.Repository, engine *rules.Engine) error {
	active := rules.BuiltinRules()

	dbRules, err := repo.ListAlertRules(ctx)
	if err != nil {
		slog.Warn("failed to list rules from database", "error", err)
	} else if len(dbRules) > 0 {
		slog.Info("loading rules from database", "count", len(dbRules))
		active = append(active, dbRules...)
	}

	return engine.LoadRules(active)
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║             🌾 FARMER-AID                 ║")
	fmt.Println("  ║   Crop Suitability & Advisory Service     ║")
	fmt.Println("  ║     Forecasts farmers can act on.         ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /evaluate                        - Evaluate crop suitability")
	fmt.Println("    GET  /evaluations/{id}                - Get evaluation by ID")
	fmt.Println("    GET  /resolve                         - Resolve place to zone/district")
	fmt.Println("    GET  /geocode                         - Geocoding proxy")
	fmt.Println("    GET  /weather                         - Forecast proxy")
	fmt.Println("    POST /gemini                          - Generative advisory proxy")
	fmt.Println("    GET  /thresholds                      - List threshold overrides")
	fmt.Println("    PUT  /thresholds/{zone}/{crop}        - Set a threshold override")
	fmt.Println("    DELETE /thresholds/{zone}/{crop}      - Delete a threshold override")
	fmt.Println("    POST /thresholds/undo                 - Restore last deleted override")
	fmt.Println("    GET  /rules                           - List alert rules")
	fmt.Println("    POST /rules                           - Create an alert rule")
	fmt.Println("    POST /rules/reload                    - Hot-reload rules from database")
	fmt.Println("    GET  /health                          - Health check")
	fmt.Println()
}
