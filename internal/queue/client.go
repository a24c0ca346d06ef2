package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Task type constants
const (
	TypeRecountKeyword = "seoscan:recount_keyword"
	TypeRecomputeStats = "seoscan:recompute_stats"
)

// RecountKeywordPayload requests a corpus-wide recount of one link keyword
// owned by a document.
type RecountKeywordPayload struct {
	DocumentID string `json:"document_id"`
	Keyword    string `json:"keyword"`
	Notes      string `json:"notes,omitempty"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// RecomputeStatsPayload requests a focus-keyphrase stats recompute for a
// document.
type RecomputeStatsPayload struct {
	DocumentID string `json:"document_id"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"`
}

// Client wraps the Asynq client for enqueueing tasks.
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client.
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client.
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}
	return &Client{client: asynq.NewClient(redisOpt)}
}

// EnqueueRecountKeyword enqueues a keyword recount task. Repeated enqueues
// for the same document/keyword pair collapse onto one task id.
func (c *Client) EnqueueRecountKeyword(ctx context.Context, documentID, keyword, notes string) (string, error) {
	payload := RecountKeywordPayload{
		DocumentID: documentID,
		Keyword:    keyword,
		Notes:      notes,
		EnqueuedAt: time.Now().UnixNano(),
	}

	taskID := documentID + "-recount-" + keyword
	attachTraceContext(ctx, &payload.TraceID, &payload.SpanID,
		attribute.String("task.type", TypeRecountKeyword),
		attribute.String("task.id", taskID),
		attribute.String("document.id", documentID),
		attribute.String("keyword", keyword),
	)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeRecountKeyword, payloadBytes, asynq.TaskID(taskID))
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
		asynq.Queue("link-recount"),
		asynq.Retention(24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue recount keyword task: %w", err)
	}
	return info.ID, nil
}

// EnqueueRecomputeStats enqueues a stats recompute task for a document.
func (c *Client) EnqueueRecomputeStats(ctx context.Context, documentID string) (string, error) {
	payload := RecomputeStatsPayload{
		DocumentID: documentID,
		EnqueuedAt: time.Now().UnixNano(),
	}

	taskID := documentID + "-stats"
	attachTraceContext(ctx, &payload.TraceID, &payload.SpanID,
		attribute.String("task.type", TypeRecomputeStats),
		attribute.String("task.id", taskID),
		attribute.String("document.id", documentID),
	)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeRecomputeStats, payloadBytes, asynq.TaskID(taskID))
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
		asynq.Queue("stats-recompute"),
		asynq.Retention(24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue recompute stats task: %w", err)
	}
	return info.ID, nil
}

// attachTraceContext stores the active span's identifiers into the payload
// and records an enqueue event, if a span is present.
func attachTraceContext(ctx context.Context, traceID, spanID *string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}
	spanCtx := span.SpanContext()
	*traceID = spanCtx.TraceID().String()
	*spanID = spanCtx.SpanID().String()
	span.AddEvent("task_enqueued", trace.WithAttributes(attrs...))
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
