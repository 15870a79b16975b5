// internal/processor/server.go
package processor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/metrics"
)

// Server is the worker-side HTTP surface: POST /process accepts
// {action:"process", item} and answers with a ProcessResult.
type Server struct {
	proc   *DocumentProcessor
	logger *slog.Logger
}

// NewServer creates the process server for one processor.
func NewServer(proc *DocumentProcessor, logger *slog.Logger) *Server {
	return &Server{
		proc:   proc,
		logger: logger.With("component", "processor-server"),
	}
}

// RegisterRoutes registers the process and health routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/health", s.handleHealth)
}

type processRequest struct {
	Action string `json:"action"`
	Item   string `json:"item"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResult(w, r, &domain.ProcessResult{
			Status:  domain.StatusError,
			Message: "malformed request body",
		}, http.StatusBadRequest)
		return
	}

	if req.Action != "process" {
		s.writeResult(w, r, &domain.ProcessResult{
			Status:  domain.StatusError,
			Message: "invalid action",
		}, http.StatusBadRequest)
		return
	}
	if req.Item == "" {
		s.writeResult(w, r, &domain.ProcessResult{
			Status:  domain.StatusError,
			Message: "missing item parameter",
		}, http.StatusBadRequest)
		return
	}

	result := s.proc.Process(r.Context(), domain.Document(req.Item))

	// Processing failures ride a 200 with status=error in the body; the
	// queue treats both shapes as the same per-item failure.
	s.writeResult(w, r, result, http.StatusOK)
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, result *domain.ProcessResult, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(result)
	metrics.HttpRequestsTotal.WithLabelValues("/process", r.Method, strconv.Itoa(code)).Inc()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
