package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/pricing_engine/cmd/docs"
	"github.com/SscSPs/pricing_engine/internal/core/services"
	"github.com/SscSPs/pricing_engine/internal/handlers"
	"github.com/SscSPs/pricing_engine/internal/middleware"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
	"github.com/SscSPs/pricing_engine/internal/platform/config"
	"github.com/SscSPs/pricing_engine/internal/platform/metrics"
	"github.com/SscSPs/pricing_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/pricing_engine/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 10 * time.Second

// @title Pricing Engine API
// @version 1.0
// @description Resolves line item prices against organization rate cards, with FX conversion into the billing currency.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Application terminated with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer database.ClosePgxPool(dbPool, logger)
	logger.Info("Database connection pool established.")

	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		return err
	}

	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
	coordinator := cache.New(cache.Options{
		JitterFraction: cfg.CacheJitterFraction,
		LoadTimeout:    cfg.CacheLoadTimeout,
		Metrics:        sink,
		Logger:         logger.With(slog.String("component", "cache")),
	})

	var bus *cache.RedisBus
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.Error("Error closing redis client", slog.String("error", cerr.Error()))
			}
		}()
		bus = cache.NewRedisBus(redisClient, cfg.RedisBustChannel, logger.With(slog.String("component", "cache_bus")))
		coordinator.SetPublisher(bus)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, repos, coordinator, sink)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(
		cors.New(corsConfig),
		middleware.StructuredLoggingMiddleware(logger),
		middleware.TracingMiddleware(),
		gin.Recovery(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)
	setupSwaggerRoutes(r, cfg)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		coordinator.RunJanitor(ctx, cfg.CacheSweepInterval)
		return nil
	})

	if bus != nil {
		g.Go(func() error {
			// Losing the bus only loses cross-instance busts; keep serving.
			if err := bus.Run(ctx, coordinator); err != nil {
				logger.Error("Cache bust subscriber stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
