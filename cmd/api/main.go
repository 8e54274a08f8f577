package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripbid/tripbid-backend/internal/config"
	"github.com/tripbid/tripbid-backend/internal/database"
	"github.com/tripbid/tripbid-backend/internal/handlers"
	"github.com/tripbid/tripbid-backend/internal/repository"
	"github.com/tripbid/tripbid-backend/internal/repository/memory"
	"github.com/tripbid/tripbid-backend/internal/services"
	"github.com/tripbid/tripbid-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	var store repository.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("Using in-memory store; data is lost on restart")
		store = memory.New()
	default:
		db, err := database.InitDB(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = repository.NewGormStore(db)
	}

	// Events are optional; without Redis nothing downstream is notified.
	var events services.EventPublisher = services.NoopPublisher{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		publisher, err := services.NewRedisPublisher(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Warn("REDIS_URL not set, trip events are not published")
	}

	coordinator := services.NewAcceptanceCoordinator(store, events, log, services.AcceptOptions{
		MaxAttempts:  cfg.Accept.MaxAttempts,
		RetryBackoff: cfg.Accept.RetryBackoff,
	})
	tripService := services.NewTripLifecycleService(store, coordinator, events, log)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	handlers.SetupRoutes(r.Group("/api"), tripService, log, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	log.Info("Server stopped")
}
