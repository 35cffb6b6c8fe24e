package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/apexdash/apexdash/rag"
)

// chatRequest is the collaborator-facing chat contract.
type chatRequest struct {
	Message string     `json:"message"`
	History []rag.Turn `json:"history,omitempty"`
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	requestID := uuid.New().String()
	started := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		chatRequests.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		chatRequests.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, "Message is required")
		return
	}

	answer, err := s.answerer.Answer(r.Context(), req.Message, req.History)
	if err != nil {
		chatRequests.WithLabelValues("error").Inc()
		s.logger.Error("Chat request failed",
			"request_id", requestID,
			"duration", time.Since(started),
			"error", err)

		if errors.Is(err, rag.ErrEmptyResponse) {
			writeJSONError(w, http.StatusInternalServerError, rag.ErrEmptyResponse.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	chatRequests.WithLabelValues("ok").Inc()
	chatDuration.Observe(time.Since(started).Seconds())
	s.logger.Info("Chat request answered",
		"request_id", requestID,
		"duration", time.Since(started),
		"sources", len(answer.Sources))

	writeJSON(w, http.StatusOK, answer)
}
