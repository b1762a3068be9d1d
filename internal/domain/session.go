package domain

import (
	"time"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single message in the conversation history.
type ChatTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ItinerarySection holds one provider's contribution to the itinerary.
// Missing is set when the provider failed; Reason explains why.
type ItinerarySection struct {
	Provider string   `json:"provider"`
	Results  []string `json:"results,omitempty"`
	Missing  bool     `json:"missing,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Itinerary is the generated day-by-day travel plan, derived once per
// confirmed TripDetails set and cached on the session.
type Itinerary struct {
	Text        string             `json:"text"`
	Sections    []ItinerarySection `json:"sections"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Section returns the section for a provider, or nil.
func (i *Itinerary) Section(provider string) *ItinerarySection {
	for idx := range i.Sections {
		if i.Sections[idx].Provider == provider {
			return &i.Sections[idx]
		}
	}
	return nil
}

// MissingSections lists providers whose results could not be fetched.
func (i *Itinerary) MissingSections() []string {
	var missing []string
	for _, s := range i.Sections {
		if s.Missing {
			missing = append(missing, s.Provider)
		}
	}
	return missing
}

// CostItem is one line of the trip cost breakdown.
type CostItem struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// CostBreakdown is the estimated trip cost parsed from the itinerary.
type CostBreakdown struct {
	Currency string     `json:"currency"`
	Total    float64    `json:"total"`
	Items    []CostItem `json:"items"`
}

// Session is the persisted per-conversation state, keyed by session id.
// It expires after an idle TTL enforced by the store.
type Session struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Turns         []ChatTurn     `json:"turns"`
	Trip          TripDetails    `json:"trip"`
	Phase         Phase          `json:"phase"`
	Itinerary     *Itinerary     `json:"itinerary,omitempty"`
	CostBreakdown *CostBreakdown `json:"costBreakdown,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// NewSession creates a fresh session in the collecting phase.
func NewSession(id, userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserID:    userID,
		Phase:     PhaseCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append records a turn and bumps UpdatedAt.
func (s *Session) Append(role Role, text string) {
	now := time.Now().UTC()
	s.Turns = append(s.Turns, ChatTurn{Role: role, Text: text, Timestamp: now})
	s.UpdatedAt = now
}

// RecentTurns returns the last n turns of history.
func (s *Session) RecentTurns(n int) []ChatTurn {
	if n >= len(s.Turns) {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// InvalidateArtifacts drops the cached itinerary and cost breakdown. Called
// whenever TripDetails changes after generation.
func (s *Session) InvalidateArtifacts() {
	s.Itinerary = nil
	s.CostBreakdown = nil
}
