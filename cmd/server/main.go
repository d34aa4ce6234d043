package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kmfahey/nutritracker/config"
	httpDelivery "github.com/kmfahey/nutritracker/internal/delivery/http"
	"github.com/kmfahey/nutritracker/internal/infrastructure/cache"
	"github.com/kmfahey/nutritracker/internal/infrastructure/logger"
	"github.com/kmfahey/nutritracker/internal/infrastructure/mongodb"
	"github.com/kmfahey/nutritracker/internal/infrastructure/usda"
	"github.com/kmfahey/nutritracker/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	zlog.Info("starting nutritracker",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Document store
	db, err := mongodb.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout, zlog)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()
		if err := db.Disconnect(disconnectCtx); err != nil {
			zlog.Error("MongoDB disconnect failed", zap.Error(err))
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	foodRepo := mongodb.NewFoodRepository(db.Collection(mongodb.FoodsCollection), zlog)
	recipeRepo := mongodb.NewRecipeRepository(db.Collection(mongodb.RecipesCollection), zlog)

	// FDC payload cache
	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()

	fdcClient := usda.NewClient(cfg.FDC.APIKey, cfg.FDC.BaseURL,
		usda.WithLogger(zlog),
		usda.WithRateLimit(cfg.FDC.RequestsPerHour, cfg.FDC.Burst),
	)

	// Enable debug mode in development environment
	debug := cfg.FDC.Debug || cfg.Server.Environment == "development"
	fdcClient.SetDebug(debug)
	zlog.Info("FDC client configured",
		zap.String("base_url", cfg.FDC.BaseURL),
		zap.Float64("requests_per_hour", cfg.FDC.RequestsPerHour),
		zap.Bool("debug", debug),
	)

	pages := usecase.PageLimits{
		DefaultSize: cfg.Pagination.DefaultPageSize,
		MaxSize:     cfg.Pagination.MaxPageSize,
	}

	// Initialize usecase layer
	foodService := usecase.NewFoodService(foodRepo, fdcClient, memoryCache, zlog, usecase.FoodServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		Pages:    pages,
		Debug:    debug,
	})
	recipeService := usecase.NewRecipeService(recipeRepo, foodRepo, zlog, pages)

	handler := httpDelivery.NewHandler(foodService, recipeService, db, zlog)
	router := httpDelivery.SetupRouter(cfg, handler, zlog)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		zlog.Info("received shutdown signal, gracefully shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zlog.Info("server shut down successfully")
	return nil
}
