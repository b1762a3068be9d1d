package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/voyago/voyago/internal/dialogue"
	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/store"
	"github.com/voyago/voyago/internal/travel"
)

type stubConversation struct {
	converseErr error
	historyErr  error
	costErr     error
	cost        *domain.CostBreakdown
	lastSession string
}

func (s *stubConversation) Converse(_ context.Context, sessionID, _, message string) (*dialogue.TurnResult, error) {
	if s.converseErr != nil {
		return nil, s.converseErr
	}
	s.lastSession = sessionID
	return &dialogue.TurnResult{
		Reply: "Where are you departing from?",
		Trip:  domain.TripDetails{Destination: "Paris"},
		Phase: domain.PhaseCollecting,
	}, nil
}

func (s *stubConversation) History(_ context.Context, _ string) ([]domain.ChatTurn, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return []domain.ChatTurn{{Role: domain.RoleUser, Text: "hi"}}, nil
}

func (s *stubConversation) Reset(_ context.Context, _ string) error { return nil }

func (s *stubConversation) ClearUserSessions(_ context.Context, _ string) (int64, error) {
	return 2, nil
}

func (s *stubConversation) TripCost(_ context.Context, _ string) (*domain.CostBreakdown, error) {
	if s.costErr != nil {
		return nil, s.costErr
	}
	return s.cost, nil
}

type failingGateway struct{}

func (failingGateway) Flights(context.Context, travel.FlightQuery) ([]travel.Flight, error) {
	return nil, &travel.ProviderError{Provider: travel.ProviderFlights, Err: errors.New("down")}
}
func (failingGateway) Hotels(context.Context, travel.HotelQuery) ([]travel.Hotel, error) {
	return nil, &travel.ProviderError{Provider: travel.ProviderHotels, Err: errors.New("down")}
}
func (failingGateway) Activities(context.Context, travel.ActivityQuery) ([]travel.Activity, error) {
	return nil, &travel.ProviderError{Provider: travel.ProviderActivities, Err: errors.New("down")}
}
func (failingGateway) Events(context.Context, travel.EventQuery) ([]travel.Event, error) {
	return nil, &travel.ProviderError{Provider: travel.ProviderEvents, Err: errors.New("down")}
}
func (failingGateway) Places(context.Context, travel.PlaceQuery) ([]travel.Place, error) {
	return nil, &travel.ProviderError{Provider: travel.ProviderPlaces, Err: errors.New("down")}
}

type okGateway struct{ failingGateway }

func (okGateway) Events(context.Context, travel.EventQuery) ([]travel.Event, error) {
	return []travel.Event{{Title: "Jazz festival"}}, nil
}

func newTestRouter(conv Conversation, gw travel.Gateway) *chi.Mux {
	h := NewHandler(conv, gw)
	r := chi.NewRouter()
	h.RegisterChatRoutes(r)
	h.RegisterTravelRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat(t *testing.T) {
	conv := &stubConversation{}
	r := newTestRouter(conv, okGateway{})

	w := postJSON(t, r, "/chat", map[string]string{
		"sessionId": "s1", "userId": "u1", "message": "I want to visit Paris",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID string             `json:"sessionId"`
		Reply     string             `json:"reply"`
		Trip      domain.TripDetails `json:"tripDetails"`
		Phase     string             `json:"phase"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.SessionID != "s1" {
		t.Errorf("Expected sessionId s1, got %q", resp.SessionID)
	}
	if resp.Phase != "collecting" {
		t.Errorf("Expected phase collecting, got %q", resp.Phase)
	}
	if resp.Trip.Destination != "Paris" {
		t.Errorf("Expected destination Paris, got %q", resp.Trip.Destination)
	}
}

func TestChatGeneratesSessionID(t *testing.T) {
	conv := &stubConversation{}
	r := newTestRouter(conv, okGateway{})

	w := postJSON(t, r, "/chat", map[string]string{"userId": "u1", "message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if conv.lastSession == "" {
		t.Errorf("Expected a generated session id")
	}
}

func TestChatValidation(t *testing.T) {
	r := newTestRouter(&stubConversation{}, okGateway{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing message", map[string]string{"userId": "u1"}},
		{"blank message", map[string]string{"userId": "u1", "message": "   "}},
		{"missing userId", map[string]string{"message": "hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postJSON(t, r, "/chat", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", w.Code)
	}
}

func TestChatStoreUnavailable(t *testing.T) {
	conv := &stubConversation{converseErr: store.ErrUnavailable}
	r := newTestRouter(conv, okGateway{})

	w := postJSON(t, r, "/chat", map[string]string{"userId": "u1", "message": "hello"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when the store is down, got %d", w.Code)
	}
}

func TestChatHistoryNotFound(t *testing.T) {
	conv := &stubConversation{historyErr: dialogue.ErrSessionNotFound}
	r := newTestRouter(conv, okGateway{})

	req := httptest.NewRequest(http.MethodGet, "/chat/history/unknown", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestResetSession(t *testing.T) {
	r := newTestRouter(&stubConversation{}, okGateway{})

	req := httptest.NewRequest(http.MethodPost, "/reset/s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestClearUserSessions(t *testing.T) {
	r := newTestRouter(&stubConversation{}, okGateway{})

	w := postJSON(t, r, "/clear-user-sessions", map[string]string{"userId": "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", resp.Deleted)
	}

	if w := postJSON(t, r, "/clear-user-sessions", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without userId, got %d", w.Code)
	}
}

func TestTripCost(t *testing.T) {
	conv := &stubConversation{cost: &domain.CostBreakdown{Currency: "USD", Total: 2500}}
	r := newTestRouter(conv, okGateway{})

	req := httptest.NewRequest(http.MethodGet, "/trip-cost/s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp domain.CostBreakdown
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Total != 2500 {
		t.Errorf("Expected total 2500, got %v", resp.Total)
	}
}

func TestTripCostErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", dialogue.ErrSessionNotFound, http.StatusNotFound},
		{"not planned yet", dialogue.ErrCostUnavailable, http.StatusConflict},
		{"store down", store.ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubConversation{costErr: tt.err}, okGateway{})
			req := httptest.NewRequest(http.MethodGet, "/trip-cost/s1", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestEventsPassThrough(t *testing.T) {
	r := newTestRouter(&stubConversation{}, okGateway{})

	req := httptest.NewRequest(http.MethodGet, "/events/Paris", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Destination string         `json:"destination"`
		Events      []travel.Event `json:"events"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Destination != "Paris" || len(resp.Events) != 1 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestPassThroughProviderFailure(t *testing.T) {
	r := newTestRouter(&stubConversation{}, failingGateway{})

	for _, path := range []string{"/events/Paris", "/places/Paris", "/attractions/Paris", "/day-trips/Boston"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected 502 for %s, got %d", path, w.Code)
		}

		var resp map[string]string
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode error body: %v", err)
		}
		if !strings.Contains(resp["error"], "provider") {
			t.Errorf("Expected the provider named in the error, got %q", resp["error"])
		}
	}
}
