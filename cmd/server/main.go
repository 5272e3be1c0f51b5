// cmd/server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shopping-agent/internal/common/config"
	"shopping-agent/internal/common/database"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/observability"
	"shopping-agent/internal/pipeline/conversation"
	"shopping-agent/internal/providers/catalog"
	"shopping-agent/internal/providers/genai"
	"shopping-agent/internal/providers/serpapi"
	"shopping-agent/internal/server"
	"shopping-agent/internal/session"

	rankproducts "shopping-agent/internal/pipeline/rank-products"
	searchproducts "shopping-agent/internal/pipeline/search-products"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting shopping agent...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Providers ---
	shoppingProvider := serpapi.NewClient(
		&serpapi.Config{
			BaseURL:    cfg.Providers.Shopping.BaseURL,
			APIKey:     cfg.Providers.Shopping.APIKey,
			Country:    cfg.Providers.Shopping.Country,
			Language:   cfg.Providers.Shopping.Language,
			MaxResults: cfg.Providers.Shopping.MaxResults,
			Timeout:    config.GetDuration(cfg.Providers.Shopping.Timeout),
		},
		log,
	)

	llmClient := genai.NewClient(
		&genai.Config{
			BaseURL:     cfg.Providers.GenAI.BaseURL,
			APIKey:      cfg.Providers.GenAI.APIKey,
			Model:       cfg.Providers.GenAI.Model,
			Temperature: cfg.Providers.GenAI.Temperature,
			Timeout:     config.GetDuration(cfg.Providers.GenAI.Timeout),
		},
		log,
	)

	fallbackSource := catalog.NewSource(log)

	// --- Pipeline ---
	orchestrator := searchproducts.NewOrchestrator(
		&searchproducts.Config{
			MaxCandidates: cfg.Search.MaxCandidates,
		},
		shoppingProvider, fallbackSource, log,
	)

	engine := rankproducts.NewEngine(
		&rankproducts.Config{
			KeywordWeight:  cfg.Search.KeywordWeight,
			PriceFitWeight: cfg.Search.PriceFitWeight,
			RatingsWeight:  cfg.Search.RatingsWeight,
			DisplayCount:   cfg.Search.DisplayCount,
			MaxTokens:      cfg.Providers.GenAI.MaxTokens,
		},
		llmClient, log,
	)

	machine := conversation.NewMachine(
		&conversation.Config{
			FilterThreshold:  cfg.Search.FilterThreshold,
			FilterPriceRatio: cfg.Search.FilterPriceRatio,
		},
		orchestrator, engine, log,
	)

	// --- Session Store ---
	sessionTTL := config.GetDuration(cfg.Session.TTL)
	var store session.Store
	if cfg.Session.Redis.Enabled {
		redis, err := database.NewRedis(cfg.Session.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		if err := redis.Ping(ctx); err != nil {
			zapLog.Fatal("redis ping failed", zap.Error(err))
		}
		defer redis.Close()
		store = session.NewRedisStore(redis.Client, sessionTTL)
		zapLog.Info("Redis session store connected")
	} else {
		memStore := session.NewMemoryStore(sessionTTL)
		defer memStore.Close()
		store = memStore
	}

	chatService := conversation.NewService(machine, store, log)

	// --- HTTP Server ---
	handler := server.NewHandler(orchestrator, engine, chatService, log)
	srv := server.New(cfg.Server, handler, obs, log)

	go func() {
		if err := srv.Listen(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()
	zapLog.Info("Shopping agent ready", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Shopping agent stopped gracefully")
}
