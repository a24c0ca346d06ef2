package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsumibito/seoscan/internal/database"
	"github.com/tsumibito/seoscan/internal/linkscan"
	"github.com/tsumibito/seoscan/internal/models"
	"github.com/tsumibito/seoscan/internal/seostats"
	"github.com/tsumibito/seoscan/internal/textproc"
)

// QueueClient enqueues background tasks for the worker pool.
type QueueClient interface {
	EnqueueRecountKeyword(ctx context.Context, documentID, keyword, notes string) (string, error)
	EnqueueRecomputeStats(ctx context.Context, documentID string) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	scanner     *linkscan.Scanner
	scanCfg     linkscan.Config
	queueClient QueueClient
	mux         *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics
func NewHandler(db *database.DB, scanner *linkscan.Scanner, scanCfg linkscan.Config, queueClient QueueClient) http.Handler {
	h := &Handler{
		db:          db,
		scanner:     scanner,
		scanCfg:     scanCfg,
		queueClient: queueClient,
		mux:         http.NewServeMux(),
	}

	h.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler()) // Prometheus metrics endpoint
	h.mux.HandleFunc("/api/documents", h.handleDocuments)
	h.mux.HandleFunc("/api/documents/", h.handleDocumentOperations)
	h.mux.HandleFunc("/api/stats", h.handleStats)
	h.mux.HandleFunc("/api/links/count", h.handleLinkCount)
	h.mux.HandleFunc("/api/links/potential", h.handlePotentialLinks)
	h.mux.HandleFunc("/api/keywords/recount", h.handleKeywordRecount)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleDocuments handles document upserts
func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if doc.Collection == "" || doc.Name == "" {
		respondError(w, "Collection and name fields are required", http.StatusBadRequest)
		return
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("document.id", doc.ID),
		attribute.String("document.collection", doc.Collection),
	)

	if err := h.db.SaveDocument(&doc); err != nil {
		respondError(w, fmt.Sprintf("Failed to save document: %v", err), http.StatusInternalServerError)
		return
	}

	// Saved content may invalidate the stored focus keyphrase stats.
	taskID, err := h.queueClient.EnqueueRecomputeStats(r.Context(), doc.ID)
	if err != nil {
		respondError(w, fmt.Sprintf("Document saved but stats recompute not queued: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"document": doc,
		"task_id":  taskID,
	}, http.StatusCreated)
}

// handleDocumentOperations handles GET/DELETE on a single document and
// its sub-resources (keywords, stats).
func (h *Handler) handleDocumentOperations(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	docID := rest
	sub := ""
	if idx := strings.Index(rest, "/"); idx != -1 {
		docID = rest[:idx]
		sub = rest[idx+1:]
	}
	if docID == "" {
		respondError(w, "Document ID is required", http.StatusBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.getDocument(w, docID)
	case sub == "" && r.Method == http.MethodDelete:
		h.deleteDocument(w, docID)
	case sub == "keywords" && r.Method == http.MethodGet:
		h.getKeywords(w, docID)
	case sub == "stats" && r.Method == http.MethodGet:
		h.getStats(w, docID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getDocument(w http.ResponseWriter, docID string) {
	doc, err := h.db.GetDocument(docID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Document not found", http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, doc, http.StatusOK)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, docID string) {
	if err := h.db.DeleteDocument(docID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Document not found", http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]string{"status": "deleted", "id": docID}, http.StatusOK)
}

func (h *Handler) getKeywords(w http.ResponseWriter, docID string) {
	entries, err := h.db.GetKeywordEntries(docID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, entries, http.StatusOK)
}

func (h *Handler) getStats(w http.ResponseWriter, docID string) {
	stats, err := h.db.GetFocusStats(docID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		respondError(w, "Stats not computed yet", http.StatusNotFound)
		return
	}
	respondJSON(w, stats, http.StatusOK)
}

// handleStats computes focus keyphrase stats for a document synchronously
// and persists the snapshot when it changed.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		DocumentID string `json:"documentId"`
		Phrase     string `json:"phrase,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		respondError(w, "documentId field is required", http.StatusBadRequest)
		return
	}

	doc, err := h.db.GetDocument(req.DocumentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Document not found", http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	phrase := doc.FocusPhrase
	if req.Phrase != "" {
		phrase = req.Phrase
	}

	previous, err := h.db.GetFocusStats(doc.ID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries, err := h.db.GetKeywordEntries(doc.ID)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	keywords := make([]string, len(entries))
	for i, e := range entries {
		keywords[i] = e.Keyword
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("document.id", doc.ID),
		attribute.Int("keywords.count", len(keywords)),
	)

	docCtx := seostats.BuildContext(*doc, h.fieldsFor(doc.Collection), keywords)
	stats := seostats.ComputeStats(phrase, docCtx, previous)

	if stats != previous {
		if err := h.db.SaveFocusStats(doc.ID, phrase, stats); err != nil {
			respondError(w, fmt.Sprintf("Failed to save stats: %v", err), http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, stats, http.StatusOK)
}

// handleLinkCount runs a synchronous corpus scan for existing internal
// links pointing at a document under a given anchor.
func (h *Handler) handleLinkCount(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.decodeScanRequest(w, r)
	if !ok {
		return
	}

	result, err := h.scanner.CountInternalLinks(r.Context(), opts)
	if err != nil {
		respondError(w, fmt.Sprintf("Link scan failed: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, result, http.StatusOK)
}

// handlePotentialLinks runs a synchronous corpus scan for unlinked
// mentions of an anchor.
func (h *Handler) handlePotentialLinks(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.decodeScanRequest(w, r)
	if !ok {
		return
	}

	result, err := h.scanner.CountPotentialLinks(r.Context(), opts)
	if err != nil {
		respondError(w, fmt.Sprintf("Potential link scan failed: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, result, http.StatusOK)
}

// decodeScanRequest reads a scan request body and resolves its document
// into scan options. Writes the error response itself on failure.
func (h *Handler) decodeScanRequest(w http.ResponseWriter, r *http.Request) (linkscan.CountOptions, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return linkscan.CountOptions{}, false
	}

	var req struct {
		DocumentID       string `json:"documentId"`
		Anchor           string `json:"anchor"`
		IncludeDocuments bool   `json:"includeDocuments,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return linkscan.CountOptions{}, false
	}
	if req.DocumentID == "" || strings.TrimSpace(req.Anchor) == "" {
		respondError(w, "documentId and anchor fields are required", http.StatusBadRequest)
		return linkscan.CountOptions{}, false
	}

	doc, err := h.db.GetDocument(req.DocumentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Document not found", http.StatusNotFound)
			return linkscan.CountOptions{}, false
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return linkscan.CountOptions{}, false
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("document.id", doc.ID),
		attribute.String("anchor", req.Anchor),
	)

	return linkscan.CountOptions{
		Anchor:            req.Anchor,
		CurrentDocID:      doc.ID,
		CurrentCollection: doc.Collection,
		TargetSlug:        doc.Slug,
		Locale:            doc.Locale,
		IncludeDocuments:  req.IncludeDocuments,
	}, true
}

// handleKeywordRecount enqueues a background recount for one link keyword.
func (h *Handler) handleKeywordRecount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		DocumentID string `json:"documentId"`
		Keyword    string `json:"keyword"`
		Notes      string `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" || strings.TrimSpace(req.Keyword) == "" {
		respondError(w, "documentId and keyword fields are required", http.StatusBadRequest)
		return
	}

	doc, err := h.db.GetDocument(req.DocumentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Document not found", http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Link keywords duplicating the focus phrase would double-count the
	// same occurrences across both analyses.
	if doc.FocusPhrase != "" &&
		textproc.Normalize(strings.TrimSpace(req.Keyword)) == textproc.Normalize(strings.TrimSpace(doc.FocusPhrase)) {
		respondError(w, "Keyword must differ from the document focus phrase", http.StatusUnprocessableEntity)
		return
	}

	taskID, err := h.queueClient.EnqueueRecountKeyword(r.Context(), doc.ID, strings.TrimSpace(req.Keyword), req.Notes)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue recount: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"task_id": taskID,
		"status":  "queued",
	}, http.StatusAccepted)
}

// fieldsFor returns the rich-text field names scanned for a collection.
func (h *Handler) fieldsFor(collection string) []string {
	for _, c := range h.scanCfg.Collections {
		if c.Slug == collection {
			return c.Fields
		}
	}
	return nil
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
