// internal/aggregator/server.go
package aggregator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"doc-analytics/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Server exposes an aggregator's snapshot over HTTP. The result collector
// and the CLI poll GET /snapshot.
type Server struct {
	agg    *TopicAggregator
	logger *slog.Logger
	tracer trace.Tracer
}

// NewServer creates the snapshot server for one aggregator.
func NewServer(agg *TopicAggregator, logger *slog.Logger) *Server {
	return &Server{
		agg:    agg,
		logger: logger.With("component", "aggregator-server"),
		tracer: otel.Tracer("doc-analytics-aggregator"),
	}
}

// RegisterRoutes registers the snapshot and health routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(r.Context(), "aggregator.Snapshot")
	defer span.End()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := s.agg.Metrics()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
	metrics.HttpRequestsTotal.WithLabelValues("/snapshot", r.Method, strconv.Itoa(http.StatusOK)).Inc()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
