package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"linkgate/internal/config"
	handlers "linkgate/internal/http/handler"
	"linkgate/internal/http/middleware"
	"linkgate/internal/logging"
	"linkgate/internal/otel"
	"linkgate/internal/service"
	"linkgate/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		// The level is not known yet; fall back to a production logger.
		log, _ := zap.NewProduction()
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		log, _ = zap.NewProduction()
		log.Warn("invalid LOG_LEVEL, using info", zap.String("level", cfg.LogLevel))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// Signing client for the configured S3-compatible backend
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}
	creds := storage.NewCredentialProvider(cfg.Storage)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		log.Fatal("failed to register gateway metrics", zap.Error(err))
	}

	gatewaySvc := service.NewGatewayService(store, creds, cfg.Gateway.Bucket, cfg.Storage.LinkExpiry, log, metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID adds/propagates X-Request-ID and tags the span started above
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, cfg.Gateway, gatewaySvc)

	servers := []*fiber.App{app}
	errCh := make(chan error, 2)

	go func() {
		addr := ":" + cfg.Port
		log.Info("gateway listening", zap.String("addr", addr), zap.String("bucket", cfg.Gateway.Bucket), zap.String("backend", cfg.Storage.Backend))
		errCh <- app.Listen(addr)
	}()

	// Metrics live on their own listener so every path of the main app stays an object key.
	if cfg.MetricsPort != "off" {
		metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
		metricsApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
		servers = append(servers, metricsApp)

		go func() {
			addr := ":" + cfg.MetricsPort
			log.Info("metrics listening", zap.String("addr", addr))
			errCh <- metricsApp.Listen(addr)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("failed to shut down server", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("failed to shut down tracing", zap.Error(err))
	}
}
