package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/extract"
	"github.com/voyago/voyago/internal/llm"
	"github.com/voyago/voyago/internal/store"
	"github.com/voyago/voyago/internal/travel"
)

var (
	// ErrSessionNotFound is returned by lookups for absent sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCostUnavailable means no cost breakdown can be produced yet.
	ErrCostUnavailable = errors.New("trip cost unavailable until the itinerary is generated")
)

const fallbackReply = "I'm having trouble processing that right now. Could you please try again?"

// Manager owns the per-session conversation state machine. All collaborators
// are injected interfaces; per-session state lives in the store, never in
// package globals, so concurrent sessions cannot cross-talk.
type Manager struct {
	store       store.SessionStore
	extractor   extract.Extractor
	gateway     travel.Gateway
	completer   llm.Completer
	ttl         time.Duration
	historyKeep int
	locks       *sessionLocks
}

// NewManager wires a dialogue manager.
func NewManager(s store.SessionStore, e extract.Extractor, g travel.Gateway, c llm.Completer, ttl time.Duration, historyKeep int) *Manager {
	return &Manager{
		store:       s,
		extractor:   e,
		gateway:     g,
		completer:   c,
		ttl:         ttl,
		historyKeep: historyKeep,
		locks:       newSessionLocks(),
	}
}

// TurnResult is what one processed turn returns to the caller.
type TurnResult struct {
	Reply string
	Trip  domain.TripDetails
	Phase domain.Phase
}

// Converse processes one user turn: load session, extract, merge, evaluate
// the phase transition, optionally call the travel gateway, compose the
// reply, persist. The per-session lock is held for the whole turn so a
// rapid double-submission cannot lose a merge.
func (m *Manager) Converse(ctx context.Context, sessionID, userID, message string) (*TurnResult, error) {
	release := m.locks.acquire(sessionID)
	defer release()

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		// Unknown or expired session ids start a fresh conversation.
		sess = domain.NewSession(sessionID, userID)
		slog.Info("New session", "session_id", sessionID, "user_id", userID)
	}

	ext, err := m.extractor.Extract(ctx, message, sess.Trip)
	if err != nil {
		// Extraction failures degrade to an empty partial; the turn goes on.
		slog.Warn("Extraction failed", "session_id", sessionID, "error", err)
		ext = extract.ExtractedDetails{}
	}

	intent := classifyIntent(sess.Phase, message, ext, sess.Trip)
	slog.Info("Turn classified",
		"session_id", sessionID, "phase", sess.Phase.String(), "intent", intent.String())

	var reply string
	switch {
	case sess.Phase == domain.PhaseFollowUp && intent == IntentNewTrip:
		reply = m.startOver(ctx, sess, ext, message)

	case sess.Phase == domain.PhaseFollowUp && intent == IntentCustomize:
		reply = m.customize(ctx, sess, ext, message)

	case sess.Phase == domain.PhaseFollowUp:
		reply = m.answerFromItinerary(ctx, sess, message)

	case sess.Phase == domain.PhaseConfirming && intent == IntentAffirm:
		reply = m.confirmAndPlan(ctx, sess, ext)

	default:
		reply = m.collect(ctx, sess, ext, intent, message)
	}

	sess.Append(domain.RoleUser, message)
	sess.Append(domain.RoleAssistant, reply)

	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	return &TurnResult{Reply: reply, Trip: sess.Trip, Phase: sess.Phase}, nil
}

// collect handles Collecting turns and non-affirming Confirming turns:
// merge the extraction, re-evaluate the phase, and ask for what is missing.
func (m *Manager) collect(ctx context.Context, sess *domain.Session, ext extract.ExtractedDetails, intent Intent, message string) string {
	merged := mergeDetails(sess.Trip, ext)
	if !merged.Equal(sess.Trip) {
		sess.Trip = merged
		// Derived artifacts are stale the moment the details change.
		sess.InvalidateArtifacts()
	}

	sess.Phase = nextPhase(sess.Phase, sess.Trip, intent)

	return m.composeReply(ctx, sess, message)
}

// confirmAndPlan handles the affirmation in Confirming: generate the
// itinerary exactly once and advance to FollowUp. On gateway failure the
// phase does not advance; the error is recoverable and the user can retry.
func (m *Manager) confirmAndPlan(ctx context.Context, sess *domain.Session, ext extract.ExtractedDetails) string {
	sess.Trip = mergeDetails(sess.Trip, ext)
	if !sess.Trip.ReadyForConfirmation() {
		sess.Phase = domain.PhaseCollecting
		return m.composeReply(ctx, sess, "")
	}

	sess.Phase = nextPhase(sess.Phase, sess.Trip, IntentAffirm) // Planning

	itinerary, err := m.generateItinerary(ctx, sess)
	if err != nil {
		slog.Error("Itinerary generation failed", "session_id", sess.ID, "error", err)
		sess.Phase = domain.PhaseConfirming
		return "I couldn't reach the travel data providers just now, so your trip is still awaiting planning. Your details are saved — say \"yes\" again in a moment to retry."
	}

	sess.Trip.ConfirmAll()
	sess.Itinerary = itinerary
	sess.CostBreakdown = parseCostBreakdown(itinerary.Text)
	sess.Phase = nextPhase(domain.PhasePlanning, sess.Trip, IntentProvideInfo) // FollowUp

	reply := itinerary.Text
	if missing := itinerary.MissingSections(); len(missing) > 0 {
		reply += fmt.Sprintf("\n\nNote: %s results were unavailable and are not included. Ask me again later to fill them in.",
			strings.Join(missing, ", "))
	}
	return reply
}

// startOver resets the session for a materially new trip. The freshly
// extracted fields seed the new details; cached artifacts are dropped.
func (m *Manager) startOver(ctx context.Context, sess *domain.Session, ext extract.ExtractedDetails, message string) string {
	slog.Info("Follow-up introduced a new trip, starting over", "session_id", sess.ID)
	sess.Trip = tripFromExtraction(ext)
	sess.InvalidateArtifacts()
	sess.Phase = nextPhase(domain.PhaseFollowUp, sess.Trip, IntentNewTrip) // Collecting
	// A complete first message can go straight to confirmation.
	sess.Phase = nextPhase(sess.Phase, sess.Trip, IntentProvideInfo)

	return m.composeReply(ctx, sess, message)
}

// customize re-queries only the targeted provider and patches the cached
// itinerary instead of regenerating it wholesale.
func (m *Manager) customize(ctx context.Context, sess *domain.Session, ext extract.ExtractedDetails, message string) string {
	if sess.Itinerary == nil {
		return m.answerFromItinerary(ctx, sess, message)
	}

	provider := customizationTarget(message)

	// Preference fields may change under customization; core parameters may
	// not (a core change classifies as a new trip instead).
	hint := ""
	switch provider {
	case travel.ProviderHotels:
		if ext.HotelPreferences != "" {
			sess.Trip.HotelPreferences = ext.HotelPreferences
			hint = ext.HotelPreferences
		}
	case travel.ProviderActivities:
		if ext.ActivityPreferences != "" {
			sess.Trip.ActivityPreferences = ext.ActivityPreferences
			hint = ext.ActivityPreferences
		}
	}

	section := m.requery(ctx, provider, sess.Trip, hint)
	if section.Missing {
		return fmt.Sprintf("I couldn't fetch fresh %s options right now (%s). The existing itinerary is unchanged — please try again shortly.",
			provider, section.Reason)
	}

	patched := false
	for i := range sess.Itinerary.Sections {
		if sess.Itinerary.Sections[i].Provider == provider {
			sess.Itinerary.Sections[i] = section
			patched = true
			break
		}
	}
	if !patched {
		sess.Itinerary.Sections = append(sess.Itinerary.Sections, section)
	}

	// Costs are stale once a section changes; recompute lazily on demand.
	sess.CostBreakdown = nil
	sess.Itinerary.Text = m.composeItinerary(ctx, sess.Trip, sess.Itinerary.Sections)

	return fmt.Sprintf("Here are updated %s options for your trip:\n\n%s", provider, strings.Join(section.Results, "\n"))
}

// answerFromItinerary handles follow-up questions from the cached itinerary
// with no new provider calls.
func (m *Manager) answerFromItinerary(ctx context.Context, sess *domain.Session, message string) string {
	if sess.Itinerary == nil {
		return m.composeReply(ctx, sess, message)
	}

	reply, err := m.completer.Complete(ctx, []llm.Message{
		llm.System(buildFollowUpPrompt(sess.Trip, sess.Itinerary, message)),
	})
	if err != nil {
		slog.Warn("Follow-up completion failed", "session_id", sess.ID, "error", err)
		return fallbackReply
	}
	return reply
}

// composeReply produces the user-facing message for collection/confirmation
// turns: system prompt, trip context, recent history, current message.
func (m *Manager) composeReply(ctx context.Context, sess *domain.Session, message string) string {
	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.System(contextMessage(sess.Trip)),
	}
	for _, turn := range sess.RecentTurns(m.historyKeep) {
		switch turn.Role {
		case domain.RoleAssistant:
			messages = append(messages, llm.Assistant(turn.Text))
		default:
			messages = append(messages, llm.User(turn.Text))
		}
	}
	if message != "" {
		messages = append(messages, llm.User(message))
	}

	reply, err := m.completer.Complete(ctx, messages)
	if err != nil {
		slog.Warn("Reply completion failed", "session_id", sess.ID, "error", err)
		return fallbackReply
	}
	return reply
}

// History returns the ordered turn list for a session.
func (m *Manager) History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess.Turns, nil
}

// Reset destroys a session's state.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	release := m.locks.acquire(sessionID)
	defer release()

	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	slog.Info("Session reset", "session_id", sessionID)
	return nil
}

// ClearUserSessions deletes every session owned by a user.
func (m *Manager) ClearUserSessions(ctx context.Context, userID string) (int64, error) {
	deleted, err := m.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear user sessions: %w", err)
	}
	slog.Info("User sessions cleared", "user_id", userID, "count", deleted)
	return deleted, nil
}

// TripCost returns the cached cost breakdown, computing it on demand from
// the itinerary text when the trip has been confirmed.
func (m *Manager) TripCost(ctx context.Context, sessionID string) (*domain.CostBreakdown, error) {
	release := m.locks.acquire(sessionID)
	defer release()

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.CostBreakdown != nil {
		return sess.CostBreakdown, nil
	}
	if sess.Itinerary == nil {
		return nil, ErrCostUnavailable
	}

	breakdown := parseCostBreakdown(sess.Itinerary.Text)
	if breakdown == nil {
		return nil, ErrCostUnavailable
	}

	sess.CostBreakdown = breakdown
	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		slog.Warn("Failed to cache cost breakdown", "session_id", sessionID, "error", err)
	}
	return breakdown, nil
}
