package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/codefromthecrypt/routeguide/internal/adapters/http"
	"github.com/codefromthecrypt/routeguide/internal/adapters/memory"
	natsadapter "github.com/codefromthecrypt/routeguide/internal/adapters/nats"
	"github.com/codefromthecrypt/routeguide/internal/adapters/postgres"
	"github.com/codefromthecrypt/routeguide/internal/adapters/valkey"
	"github.com/codefromthecrypt/routeguide/internal/core/ports"
	"github.com/codefromthecrypt/routeguide/internal/core/usecases"
	"github.com/codefromthecrypt/routeguide/internal/pkg/config"
	"github.com/codefromthecrypt/routeguide/internal/pkg/logging"
	"github.com/codefromthecrypt/routeguide/internal/pkg/metrics"
	"github.com/codefromthecrypt/routeguide/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("routeguide-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Feature collection: loaded once, immutable afterwards
	var (
		features ports.FeatureRepository
		db       *postgres.DB
	)
	switch cfg.Data.Backend {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		features = postgres.NewFeatureRepo(db)

		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					metrics.UpdateDBPoolMetrics(db.Pool.Stat())
				case <-ctx.Done():
					return
				}
			}
		}()
	default:
		store, err := memory.LoadFeatureStore(cfg.Data.Features)
		if err != nil {
			log.Fatalf("features: %v", err)
		}
		features = store
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for the WebSocket note relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats relay conn unavailable", "error", err)
	}

	notes := memory.NewNoteRegistry()

	var pub ports.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	routeGuide := usecases.NewRouteGuideService(features, notes, pub, cacheSvc)

	deps := &http.Dependencies{
		RouteGuide: routeGuide,
		Features:   features,
		Notes:      notes,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "RouteGuide API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "backend", cfg.Data.Backend)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight calls up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
