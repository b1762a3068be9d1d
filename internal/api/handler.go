// Package api provides the HTTP handlers for the travel planner.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/voyago/voyago/internal/dialogue"
	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/travel"
)

// Conversation is the dialogue surface the chat handlers depend on.
type Conversation interface {
	Converse(ctx context.Context, sessionID, userID, message string) (*dialogue.TurnResult, error)
	History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
	Reset(ctx context.Context, sessionID string) error
	ClearUserSessions(ctx context.Context, userID string) (int64, error)
	TripCost(ctx context.Context, sessionID string) (*domain.CostBreakdown, error)
}

// Handler holds the handler dependencies.
type Handler struct {
	conv    Conversation
	gateway travel.Gateway
}

// NewHandler creates a Handler.
func NewHandler(conv Conversation, gateway travel.Gateway) *Handler {
	return &Handler{conv: conv, gateway: gateway}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
