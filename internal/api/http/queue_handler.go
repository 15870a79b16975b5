// internal/api/http/queue_handler.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/metrics"
	"doc-analytics/internal/queue"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ResultSource merges aggregator snapshots for the /results endpoint.
type ResultSource interface {
	Collect(ctx context.Context) (map[string]domain.TopicMetrics, error)
}

// QueueHandler serves the worker queue's control API.
type QueueHandler struct {
	queue    *queue.WorkerQueue
	results  ResultSource
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewQueueHandler creates a QueueHandler. results may be nil when no
// collector is wired (local setups); /results then answers 503.
func NewQueueHandler(q *queue.WorkerQueue, results ResultSource, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{
		queue:    q,
		results:  results,
		logger:   logger.With("component", "queue-handler"),
		validate: validator.New(),
		tracer:   otel.Tracer("doc-analytics-api"),
	}
}

// A helper struct to capture the status code
type instrumentedResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *instrumentedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// RegisterRoutes registers the control routes on mux.
func (h *QueueHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/register_documents", h.instrument("/register_documents", h.handleRegisterDocuments))
	mux.Handle("/register_worker", h.instrument("/register_worker", h.handleRegisterWorker))
	mux.Handle("/distribute", h.instrument("/distribute", h.handleDistribute))
	mux.Handle("/results", h.instrument("/results", h.handleResults))
	mux.HandleFunc("/health", h.handleHealth)
}

func (h *QueueHandler) instrument(path string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "HTTP "+r.Method+" "+path, trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		))
		defer span.End()

		r = r.WithContext(ctx)

		iw := &instrumentedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(iw, r)

		metrics.HttpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(iw.statusCode)).Inc()

		span.SetAttributes(attribute.Int("http.status_code", iw.statusCode))
		if iw.statusCode >= 500 {
			span.SetStatus(codes.Error, "Server Error")
		}
	})
}

func (h *QueueHandler) handleRegisterDocuments(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "handler.RegisterDocuments")
	defer span.End()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "Failed to decode request body")
		span.RecordError(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.validateRequest(w, span, req) {
		return
	}

	docs := req.ToDomain()
	span.SetAttributes(attribute.Int("documents", len(docs)))
	h.queue.RegisterDocuments(docs)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *QueueHandler) handleRegisterWorker(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "handler.RegisterWorker")
	defer span.End()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "Failed to decode request body")
		span.RecordError(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.validateRequest(w, span, req) {
		return
	}

	worker := req.ToDomain()
	span.SetAttributes(attribute.String("worker.id", worker.ID))
	h.queue.RegisterWorker(worker)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *QueueHandler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.Distribute")
	defer span.End()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	outcome, err := h.queue.Distribute(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrNoWorkersAvailable) {
			// Distinguishable from the empty-pending 200 so callers can
			// branch on it.
			span.SetStatus(codes.Error, "no workers available")
			writeJSON(w, http.StatusConflict, map[string]string{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		span.SetStatus(codes.Error, "distribution failed")
		h.logger.Error("error distributing documents", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(
		attribute.Int("outcome.processed", outcome.Processed),
		attribute.Int("outcome.errors", outcome.Errors),
	)
	writeJSON(w, http.StatusOK, DistributionResponse{
		Status:    "completed",
		Processed: outcome.Processed,
		Errors:    outcome.Errors,
	})
}

func (h *QueueHandler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.Results")
	defer span.End()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.results == nil {
		http.Error(w, "No result collector configured", http.StatusServiceUnavailable)
		return
	}

	results, err := h.results.Collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect results")
		h.logger.Error("error collecting results", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": results,
	})
}

func (h *QueueHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// validateRequest runs struct validation and writes the 400 response on
// failure. Malformed registrations are rejected here, before any pass runs.
func (h *QueueHandler) validateRequest(w http.ResponseWriter, span trace.Span, req any) bool {
	if err := h.validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		span.RecordError(err)
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors,
				"Field '"+err.Field()+"' failed on the '"+err.Tag()+"' tag.",
			)
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": validationErrors,
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
