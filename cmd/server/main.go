package main

import (
	"context"                          // context package is needed for Redis operations and shutdown
	"errors"                           // For detecting a closed server
	"finance_tracker/internal/amqp"    // Notification publishing
	"finance_tracker/internal/api"     // Custom package for API handlers
	"finance_tracker/internal/config"  // Custom package for configuration
	"finance_tracker/internal/db"      // Database connection
	"finance_tracker/internal/notify"  // Publisher interface
	"finance_tracker/internal/storage" // Repositories
	"net/http"                         // HTTP server
	"os"                               // Signals
	"os/signal"                        // Graceful shutdown
	"syscall"                          // SIGTERM
	"time"                             // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}
	cfg.SetupLogger()

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	store := storage.NewGormStore(gdb)

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer redisClient.Close()

	// Test Redis connection; the API keeps serving without a cache
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, caching and logout revocation are degraded")
	}
	cancelPing()

	var publisher notify.Publisher
	if cfg.AMQPURL != "" {
		p, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logrus.WithError(err).Warn("AMQP unavailable, notifications will not be published")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Store:        store,
		Redis:        redisClient,
		Publisher:    publisher,
		Health:       store,
		JWTSecret:    cfg.JWTSecret,
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
}
