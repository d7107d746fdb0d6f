package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koopa0/secondbrain/internal/chat"
	"github.com/koopa0/secondbrain/internal/gemini"
	"github.com/koopa0/secondbrain/internal/log"
)

// rateLimitedError is returned to clients when the upstream model
// rejects the request for quota reasons. The response field gives the
// frontend something renderable in place of an answer.
const (
	rateLimitedError    = "The AI Brain is thinking too hard (Rate Limit Exceeded). Please try again in a minute."
	rateLimitedResponse = "System is busy. Please wait a moment."
)

// Asker answers one chat turn. *chat.Orchestrator satisfies it.
type Asker interface {
	Ask(ctx context.Context, req chat.Request) (chat.Response, error)
}

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	asker  Asker
	logger log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(asker Asker, logger log.Logger) *ChatHandler {
	return &ChatHandler{asker: asker, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

// rateLimitedPayload mirrors ErrorResponse plus a renderable answer.
type rateLimitedPayload struct {
	Error    string `json:"error"`
	Response string `json:"response"`
}

// handleChat runs one retrieval-augmented conversation turn.
//
// Request body: {"message": "...", "previousHistory": [{"role": "...", "text": "..."}]}
// Response: {"response": "...", "sources": [{"id": "...", "score": 0.87}]}
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	resp, err := h.asker.Ask(r.Context(), req)
	if err != nil {
		h.logger.Error("chat failed", "error", err)
		if errors.Is(err, gemini.ErrRateLimited) {
			writeJSON(w, http.StatusTooManyRequests, rateLimitedPayload{
				Error:    rateLimitedError,
				Response: rateLimitedResponse,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
