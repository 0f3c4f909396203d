package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/insight-relay/server/apimodels"
	"github.com/insight-relay/server/internal/prompt"
)

func (s *Server) handleGemini(w http.ResponseWriter, r *http.Request) {
	var req apimodels.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{Error: "Invalid request body"})
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{Error: "Prompt is required"})
		return
	}

	slog.Debug("received relay request", "domain", req.Domain)

	result, err := s.relay.Respond(r.Context(), req.Prompt, req.Domain)
	if err != nil {
		var validationErr *prompt.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{
				Error:   "Invalid prompt",
				Message: validationErr.Error(),
			})
			return
		}

		slog.Error("relay request failed", "domain", req.Domain, "error", err)
		writeJSON(w, http.StatusInternalServerError, apimodels.ErrorResponse{
			Error:   "Failed to process request",
			Message: "an internal error occurred, please try again later",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apimodels.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
