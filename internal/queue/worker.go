package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tsumibito/seoscan/internal/database"
	"github.com/tsumibito/seoscan/internal/linkscan"
)

// Worker wraps the Asynq server for processing tasks
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	db          *database.DB
	scanner     *linkscan.Scanner
	scanCfg     linkscan.Config
	concurrency int
	logger      *slog.Logger
	metrics     *Metrics
}

// WorkerConfig contains configuration for the queue worker
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker
func NewWorker(
	cfg WorkerConfig,
	db *database.DB,
	scanner *linkscan.Scanner,
	scanCfg linkscan.Config,
) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		// Queue priority: higher value = higher priority.
		// Link recounts run corpus scans and are the user-facing action,
		// stats recomputes are cheap per-document follow-ups.
		Queues: map[string]int{
			"link-recount":    6,
			"stats-recompute": 3,
		},
		StrictPriority: false,

		// Recounts hit the database hard, back off quickly rather than
		// hammering a struggling store.
		RetryDelayFunc: retryDelay,

		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			slog.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
	}

	server := asynq.NewServer(redisOpt, serverCfg)
	mux := asynq.NewServeMux()

	w := &Worker{
		server:      server,
		mux:         mux,
		db:          db,
		scanner:     scanner,
		scanCfg:     scanCfg,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
		metrics:     NewMetrics(),
	}

	w.registerHandlers()

	return w
}

func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	delays := []time.Duration{
		30 * time.Second,
		2 * time.Minute,
		10 * time.Minute,
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// registerHandlers registers all task handlers with the worker
func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TypeRecountKeyword, w.handleRecountKeyword)
	w.mux.HandleFunc(TypeRecomputeStats, w.handleRecomputeStats)
}

// fieldsFor returns the rich-text field names scanned for a collection.
func (w *Worker) fieldsFor(collection string) []string {
	for _, c := range w.scanCfg.Collections {
		if c.Slug == collection {
			return c.Fields
		}
	}
	return nil
}

// Start starts the worker to begin processing tasks
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queues", map[string]int{"link-recount": 6, "stats-recompute": 3},
	)

	// Run is blocking - starts processing tasks
	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}
