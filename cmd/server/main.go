package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blazeintel/diamond-analytics/internal/api"
	"github.com/blazeintel/diamond-analytics/internal/api/handlers"
	"github.com/blazeintel/diamond-analytics/internal/api/middleware"
	"github.com/blazeintel/diamond-analytics/internal/providers"
	"github.com/blazeintel/diamond-analytics/internal/services"
	"github.com/blazeintel/diamond-analytics/pkg/config"
	"github.com/blazeintel/diamond-analytics/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	store := services.NewStatsStore(db)
	webSocketHub := services.NewWebSocketHub()
	go webSocketHub.Run()

	analyticsService := services.NewAnalyticsService(store, cacheService, webSocketHub, cfg, logger)

	// Background rating refresh
	var refresher *services.RatingRefresher
	if cfg.EnableBackgroundJobs {
		refreshInterval, err := time.ParseDuration(cfg.RefreshInterval)
		if err != nil {
			logrus.Warnf("Invalid refresh interval, using default 2h: %v", err)
			refreshInterval = 2 * time.Hour
		}

		feed := providers.NewNCAAClient(
			cfg.ProviderBaseURL,
			cfg.ProviderAPIKey,
			cfg.ProviderRateLimit,
			cfg.BreakerMaxFailures,
			cfg.ProviderTimeout,
			logger,
		)
		refresher = services.NewRatingRefresher(store, cacheService, feed, logger, refreshInterval, cfg.DefaultLeague, cfg.CurrentSeason)
		if err := refresher.Start(); err != nil {
			logrus.Errorf("Failed to start rating refresher: %v", err)
		}
		defer refresher.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, analyticsService, refresher, cfg)

	// WebSocket endpoint at root level for simulation progress
	wsHandler := handlers.NewWebSocketHandler(webSocketHub)
	router.GET("/ws", middleware.OptionalAuth(cfg.JWTSecret), wsHandler.HandleWebSocket)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
