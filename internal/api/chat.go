package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voyago/voyago/internal/dialogue"
	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/store"
)

// maxRequestBodySize caps chat request bodies (64KB).
const maxRequestBodySize = 64 << 10

type chatRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string             `json:"sessionId"`
	Reply     string             `json:"reply"`
	Trip      domain.TripDetails `json:"tripDetails"`
	Phase     domain.Phase       `json:"phase"`
}

type clearUserRequest struct {
	UserID string `json:"userId"`
}

// RegisterChatRoutes mounts the conversation endpoints.
func (h *Handler) RegisterChatRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
	r.Get("/chat/history/{sessionID}", h.ChatHistory)
	r.Post("/reset/{sessionID}", h.ResetSession)
	r.Post("/clear-user-sessions", h.ClearUserSessions)
	r.Get("/trip-cost/{sessionID}", h.TripCost)
}

// Chat processes one user message through the dialogue manager.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := io.LimitReader(r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.conv.Converse(r.Context(), req.SessionID, req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			Error(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		slog.Error("Chat turn failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Reply:     result.Reply,
		Trip:      result.Trip,
		Phase:     result.Phase,
	})
}

// ChatHistory returns the ordered turn list for a session.
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.conv.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, dialogue.ErrSessionNotFound) {
			Error(w, http.StatusNotFound, "session not found")
			return
		}
		if errors.Is(err, store.ErrUnavailable) {
			Error(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"turns":     turns,
	})
}

// ResetSession clears a session's state.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.conv.Reset(r.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			Error(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "session reset successfully",
	})
}

// ClearUserSessions deletes every session owned by a user.
func (h *Handler) ClearUserSessions(w http.ResponseWriter, r *http.Request) {
	var req clearUserRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "userId is required")
		return
	}

	deleted, err := h.conv.ClearUserSessions(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			Error(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to clear sessions")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"deleted": deleted,
	})
}

// TripCost returns the cached or on-demand cost breakdown for a session.
func (h *Handler) TripCost(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	breakdown, err := h.conv.TripCost(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, dialogue.ErrSessionNotFound):
			Error(w, http.StatusNotFound, "session not found")
		case errors.Is(err, dialogue.ErrCostUnavailable):
			Error(w, http.StatusConflict, "trip cost unavailable until the itinerary is generated")
		case errors.Is(err, store.ErrUnavailable):
			Error(w, http.StatusServiceUnavailable, "session store unavailable")
		default:
			Error(w, http.StatusInternalServerError, "failed to compute trip cost")
		}
		return
	}

	JSON(w, http.StatusOK, breakdown)
}
