package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsumibito/seoscan/internal/linkscan"
	"github.com/tsumibito/seoscan/internal/models"
	"github.com/tsumibito/seoscan/internal/seostats"
)

// handleRecountKeyword runs a full corpus scan for one link keyword and
// updates the stored keyword entry with fresh counts.
func (w *Worker) handleRecountKeyword(ctx context.Context, t *asynq.Task) error {
	var payload RecountKeywordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span := resumeTrace(ctx, payload.TraceID, payload.SpanID, TypeRecountKeyword,
		attribute.String("document.id", payload.DocumentID),
		attribute.String("keyword", payload.Keyword),
		attribute.Int64("enqueued_at", payload.EnqueuedAt),
	)
	if span != nil {
		defer span.End()
	}

	w.logger.Info("recounting keyword",
		"document_id", payload.DocumentID,
		"keyword", payload.Keyword,
		"queue_wait_seconds", queueWait(payload.EnqueuedAt).Seconds(),
	)

	started := time.Now()
	status := "success"
	defer func() {
		w.metrics.RecountsTotal.WithLabelValues(status).Inc()
		w.metrics.RecountDuration.Observe(time.Since(started).Seconds())
	}()

	doc, err := w.db.GetDocument(payload.DocumentID)
	if err != nil {
		status = "error"
		return fmt.Errorf("failed to load document: %w", err)
	}

	opts := linkscan.CountOptions{
		Anchor:            payload.Keyword,
		CurrentDocID:      doc.ID,
		CurrentCollection: doc.Collection,
		TargetSlug:        doc.Slug,
		Locale:            doc.Locale,
		IncludeDocuments:  true,
	}

	linkResult, err := w.scanner.CountInternalLinks(ctx, opts)
	if err != nil {
		status = "error"
		return fmt.Errorf("link scan failed: %w", err)
	}
	potentialResult, err := w.scanner.CountPotentialLinks(ctx, opts)
	if err != nil {
		status = "error"
		return fmt.Errorf("potential-link scan failed: %w", err)
	}

	docCtx := seostats.BuildContext(*doc, w.fieldsFor(doc.Collection), nil)
	cachedTotal, cachedHeadings := seostats.KeywordUsage(payload.Keyword, docCtx)

	entry := &models.KeywordEntry{
		ID:                  uuid.NewString(),
		DocumentID:          doc.ID,
		Keyword:             payload.Keyword,
		Notes:               payload.Notes,
		LinksCount:          linkResult.TotalLinks,
		PotentialLinksCount: potentialResult.TotalPotential,
		CachedTotal:         cachedTotal,
		CachedHeadings:      cachedHeadings,
		LinkDetails:         linkResult,
		PotentialDetails:    potentialResult,
		UpdatedAt:           time.Now(),
	}

	if err := w.db.SaveKeywordEntry(entry); err != nil {
		status = "error"
		return fmt.Errorf("failed to save keyword entry: %w", err)
	}

	w.logger.Info("keyword recount completed",
		"document_id", doc.ID,
		"keyword", payload.Keyword,
		"links", linkResult.TotalLinks,
		"potential", potentialResult.TotalPotential,
	)
	return nil
}

// handleRecomputeStats rebuilds a document's content context and refreshes
// its focus keyphrase stats. Stats are persisted only when they actually
// changed (the engine returns the previous snapshot otherwise).
func (w *Worker) handleRecomputeStats(ctx context.Context, t *asynq.Task) error {
	var payload RecomputeStatsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	ctx, span := resumeTrace(ctx, payload.TraceID, payload.SpanID, TypeRecomputeStats,
		attribute.String("document.id", payload.DocumentID),
		attribute.Int64("enqueued_at", payload.EnqueuedAt),
	)
	if span != nil {
		defer span.End()
	}

	doc, err := w.db.GetDocument(payload.DocumentID)
	if err != nil {
		w.metrics.StatsComputed.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load document: %w", err)
	}

	previous, err := w.db.GetFocusStats(doc.ID)
	if err != nil {
		w.metrics.StatsComputed.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load previous stats: %w", err)
	}

	entries, err := w.db.GetKeywordEntries(doc.ID)
	if err != nil {
		w.metrics.StatsComputed.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load keyword entries: %w", err)
	}
	keywords := make([]string, len(entries))
	for i, e := range entries {
		keywords[i] = e.Keyword
	}

	docCtx := seostats.BuildContext(*doc, w.fieldsFor(doc.Collection), keywords)
	stats := seostats.ComputeStats(doc.FocusPhrase, docCtx, previous)

	if stats == previous {
		w.metrics.StatsComputed.WithLabelValues("unchanged").Inc()
		w.logger.Info("stats unchanged", "document_id", doc.ID)
		return nil
	}

	if err := w.db.SaveFocusStats(doc.ID, doc.FocusPhrase, stats); err != nil {
		w.metrics.StatsComputed.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to save stats: %w", err)
	}

	w.metrics.StatsComputed.WithLabelValues("success").Inc()
	w.logger.Info("stats recomputed",
		"document_id", doc.ID,
		"in_content", stats.InContent,
		"content_percentage", stats.ContentPercentage,
	)
	return nil
}

// resumeTrace recreates a span linked to the enqueueing span from hex IDs
// carried in the task payload. Returns a nil span when no trace context
// was propagated.
func resumeTrace(ctx context.Context, traceIDHex, spanIDHex, taskType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if traceIDHex == "" || spanIDHex == "" {
		return ctx, nil
	}
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return ctx, nil
	}
	spanID, err := trace.SpanIDFromHex(spanIDHex)
	if err != nil {
		return ctx, nil
	}

	remoteSpanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx = trace.ContextWithRemoteSpanContext(ctx, remoteSpanCtx)

	ctx, span := otel.Tracer("seoscan").Start(ctx, "asynq.task.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(append(attrs, attribute.String("task.type", taskType))...),
	)
	return ctx, span
}

func queueWait(enqueuedAt int64) time.Duration {
	if enqueuedAt <= 0 {
		return 0
	}
	return time.Since(time.Unix(0, enqueuedAt))
}
