package chat

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/soignetech/itsupport-chatbot/internal/service/chat"
	"github.com/soignetech/itsupport-chatbot/pkg/utils"
)

// Handler exposes the chatbot over HTTP.
type Handler struct {
	svc *chatservice.Service
}

// New creates the chat handler.
func New(svc *chatservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/reset/{sessionID}", h.handleReset)
	r.Get("/health", h.handleHealth)
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// handleChat runs one question through the pipeline.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Chat(r.Context(), payload.Question, payload.SessionID)
	if err != nil {
		var chatErr *chatservice.Error
		if errors.As(err, &chatErr) {
			utils.RespondError(w, statusFor(chatErr.Kind), chatErr.Message)
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// handleReset deletes a session.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.svc.Reset(sessionID) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":    "session reset",
		"session_id": sessionID,
	})
}

// handleHealth reports liveness and the live session count.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().Format(time.RFC3339),
		"active_sessions": h.svc.ActiveSessions(),
	})
}

func statusFor(kind chatservice.Kind) int {
	switch kind {
	case chatservice.KindValidation:
		return http.StatusBadRequest
	case chatservice.KindRateLimited:
		return http.StatusTooManyRequests
	case chatservice.KindUpstreamBusy, chatservice.KindUpstream, chatservice.KindUpstreamTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
