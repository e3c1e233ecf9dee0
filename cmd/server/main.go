package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/ai"
	"github.com/peerwave/backend/internal/cache"
	"github.com/peerwave/backend/internal/cleanup"
	"github.com/peerwave/backend/internal/config"
	"github.com/peerwave/backend/internal/database"
	"github.com/peerwave/backend/internal/handlers"
	"github.com/peerwave/backend/internal/logger"
	"github.com/peerwave/backend/internal/metrics"
	"github.com/peerwave/backend/internal/middleware"
	"github.com/peerwave/backend/internal/prices"
	"github.com/peerwave/backend/internal/social"
	"github.com/peerwave/backend/internal/storage"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("peerwave server starting")

	if err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel == "debug"); err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	metrics.Initialize()

	// Redis is optional; the in-memory rate limiter covers single-instance
	// deployments.
	if cfg.RedisHost != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("redis unavailable, using in-memory rate limiting", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	engine := social.NewEngine(database.DB)
	priceCache := prices.NewCache(
		prices.NewCoinGeckoClient(cfg.PriceAPIBaseURL, cfg.PriceAPIKey),
		cfg.PriceCacheTTL,
	)
	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)

	h := handlers.NewHandlers(engine, priceCache, aiClient)

	// Media uploads are disabled when S3 is not configured.
	if cfg.AWSBucket != "" {
		uploader, err := storage.NewS3Uploader(cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			logger.Log.Warn("failed to initialize S3 uploader, uploads disabled", zap.Error(err))
		} else {
			if err := uploader.CheckBucketAccess(context.Background()); err != nil {
				logger.Log.Warn("S3 bucket access check failed", zap.Error(err))
			}
			h.SetUploader(uploader)
		}
	}

	sweeper := cleanup.NewService(engine, cfg.CleanupInterval, cfg.GuestRetention)
	sweeper.Start()
	defer sweeper.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RateLimit())
	r.Use(middleware.RedisRateLimitMiddleware(200, time.Minute))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
