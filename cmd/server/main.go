package main

import (
	"context" // Context for the startup Redis ping
	"os"      // Process exit
	"time"    // Ping deadline

	"wallet_ledger/internal/api"     // Custom package for API handlers
	"wallet_ledger/internal/config"  // Custom package for configuration
	"wallet_ledger/internal/db"      // Database connection
	"wallet_ledger/internal/history" // History query service
	"wallet_ledger/internal/ledger"  // Ledger engine
	"wallet_ledger/internal/store"   // Persistence
	"wallet_ledger/internal/utils"   // Redis cache

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	log := logrus.StandardLogger()
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	// Connect to the database
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr, // Redis server address
		Password: cfg.Redis.Pass, // Redis password
		DB:       cfg.Redis.DB,   // Redis database number
	})
	defer redisClient.Close()

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(ctx).Err()
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cache := utils.NewCache(redisClient, cfg.CacheTTL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	wallets := store.NewGormStore(gdb)
	users := store.NewUserStore(gdb)
	engine := ledger.NewEngine(wallets, users,
		ledger.WithCache(cache),
		ledger.WithLogger(log),
		ledger.WithRetryDelay(cfg.RetryDelay),
	)
	hist := history.NewService(wallets, cache, log)

	r, err := api.NewRouter(api.Deps{
		Config:  cfg,
		DB:      gdb,
		Users:   users,
		Engine:  engine,
		History: hist,
		Cache:   cache,
		Log:     log,
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	log.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DB.Driver}).Info("Server running") // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
