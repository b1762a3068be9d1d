// Voyago - Conversational Travel Planning Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/voyago/voyago/internal/api"
	"github.com/voyago/voyago/internal/config"
	"github.com/voyago/voyago/internal/dialogue"
	"github.com/voyago/voyago/internal/extract"
	"github.com/voyago/voyago/internal/llm"
	"github.com/voyago/voyago/internal/middleware"
	"github.com/voyago/voyago/internal/store"
	"github.com/voyago/voyago/internal/travel"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "store", storeBackend(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the session store.
	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected")

	// Initialize services. The LLM extractor degrades to the regex
	// extractor when the model call fails, so every turn extracts
	// something.
	extractor := extract.NewLLMExtractor(cfg.OpenAIAPIKey, cfg.ExtractionModel, cfg.ExtractTimeout, extract.NewRegexExtractor())
	gateway := travel.NewClient(cfg.SerpAPIKey, cfg.GooglePlacesAPIKey, cfg.ProviderTimeout)
	completer := llm.NewClient(cfg.OpenAIAPIKey, cfg.Model, cfg.CompletionTimeout)
	manager := dialogue.NewManager(sessions, extractor, gateway, completer, cfg.SessionTTL, cfg.HistoryKeep)

	handler := api.NewHandler(manager, gateway)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	handler.RegisterChatRoutes(r)
	handler.RegisterTravelRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // itinerary generation fans out to providers plus an LLM call
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// newSessionStore picks the backend from configuration: Redis when
// REDIS_ADDR is set, embedded SQLite otherwise. SQLite needs the sweeper
// since it has no native key expiry.
func newSessionStore(ctx context.Context, cfg *config.Config) (store.SessionStore, error) {
	if cfg.UseRedis() {
		return store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	sqliteStore, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	store.StartSweeper(ctx, sqliteStore)
	return sqliteStore, nil
}

func storeBackend(cfg *config.Config) string {
	if cfg.UseRedis() {
		return "redis"
	}
	return "sqlite"
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
