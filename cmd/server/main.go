package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tsumibito/seoscan/internal/api"
	"github.com/tsumibito/seoscan/internal/database"
	"github.com/tsumibito/seoscan/internal/linkscan"
	"github.com/tsumibito/seoscan/internal/queue"
	"github.com/tsumibito/seoscan/pkg/logging"
)

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("seoscan service initializing", "version", "1.0.0")

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbPathDefault := getEnv("DB_PATH", "seoscan.db")
	redisAddrDefault := getEnv("REDIS_ADDR", "localhost:6379")
	concurrencyDefault := getEnvInt("WORKER_CONCURRENCY", 4)
	collectionsPathDefault := getEnv("COLLECTIONS_CONFIG", "")

	var (
		port            = flag.String("port", portDefault, "Server port (env: PORT)")
		dbPath          = flag.String("db", dbPathDefault, "Database file path (env: DB_PATH)")
		redisAddr       = flag.String("redis", redisAddrDefault, "Redis address for the task queue (env: REDIS_ADDR)")
		concurrency     = flag.Int("concurrency", concurrencyDefault, "Worker concurrency (env: WORKER_CONCURRENCY)")
		collectionsPath = flag.String("collections", collectionsPathDefault, "Collections config file, JSON (env: COLLECTIONS_CONFIG)")
	)
	flag.Parse()

	// Initialize database
	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Load the collection scan config
	scanCfg := linkscan.DefaultConfig()
	if *collectionsPath != "" {
		scanCfg, err = linkscan.LoadConfig(*collectionsPath)
		if err != nil {
			logger.Error("failed to load collections config", "error", err, "path", *collectionsPath)
			os.Exit(1)
		}
	}
	logger.Info("collections configured", "count", len(scanCfg.Collections))

	scanner := linkscan.NewScanner(scanCfg, db, logger)

	// Initialize queue client and worker
	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
	defer queueClient.Close()

	worker := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:   *redisAddr,
		Concurrency: *concurrency,
	}, db, scanner, scanCfg)

	go func() {
		if err := worker.Start(); err != nil {
			logger.Error("worker failed", "error", err)
			os.Exit(1)
		}
	}()

	// Initialize API handler
	apiHandler := api.NewHandler(db, scanner, scanCfg, queueClient)

	handler := logging.HTTPLoggingMiddleware(logger)(apiHandler)

	// Corpus scans over large collections can take a while.
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("seoscan service starting",
			"port", *port,
			"database", *dbPath,
			"redis", *redisAddr,
			"worker_concurrency", *concurrency,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	worker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
