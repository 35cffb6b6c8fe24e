// Package server exposes the chat API over HTTP with JSON error envelopes,
// request correlation, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apexdash/apexdash/rag"
)

// Answerer answers a chat message grounded in retrieved context.
// Satisfied by *rag.Engine.
type Answerer interface {
	Answer(ctx context.Context, message string, history []rag.Turn) (*rag.Answer, error)
}

// Server is the HTTP API server.
type Server struct {
	answerer Answerer
	logger   *slog.Logger
}

// New creates a Server. A nil logger falls back to slog.Default().
func New(answerer Answerer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{answerer: answerer, logger: logger}
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// healthResponse is the JSON response for GET /health.
type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// errorResponse is the standard error envelope. Internal details never
// leak to clients; they are logged server-side instead.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeJSONError writes a JSON error envelope.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
