package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/extract"
	"github.com/voyago/voyago/internal/llm"
	"github.com/voyago/voyago/internal/store"
	"github.com/voyago/voyago/internal/travel"
)

// itineraryText is what the scripted completer returns for every call. It
// carries a budget breakdown table so cost parsing has something to find.
const itineraryText = `Here is your day-by-day plan for Paris.

Day 1: Arrival and Montmartre.
Day 2: Louvre and Seine cruise.

## Budget Breakdown

| Category | Cost |
|----------|------|
| Flights | $800 |
| Hotels | $1,200 |
| Food | $500 |
| Total | $2,500 |
`

type scriptedExtractor struct {
	byMessage map[string]extract.ExtractedDetails
	err       error
}

func (s *scriptedExtractor) Extract(_ context.Context, text string, _ domain.TripDetails) (extract.ExtractedDetails, error) {
	if s.err != nil {
		return extract.ExtractedDetails{}, s.err
	}
	return s.byMessage[text], nil
}

// stubGateway returns canned results per provider and records call counts.
type stubGateway struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newStubGateway() *stubGateway {
	return &stubGateway{calls: make(map[string]int), fail: make(map[string]bool)}
}

func (g *stubGateway) record(provider string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[provider]++
	if g.fail[provider] {
		return &travel.ProviderError{Provider: provider, Err: errors.New("upstream down")}
	}
	return nil
}

func (g *stubGateway) callCount(provider string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[provider]
}

func (g *stubGateway) Flights(_ context.Context, _ travel.FlightQuery) ([]travel.Flight, error) {
	if err := g.record(travel.ProviderFlights); err != nil {
		return nil, err
	}
	return []travel.Flight{{Airline: "Air France", Price: 400}}, nil
}

func (g *stubGateway) Hotels(_ context.Context, q travel.HotelQuery) ([]travel.Hotel, error) {
	if err := g.record(travel.ProviderHotels); err != nil {
		return nil, err
	}
	name := "Hotel Lutetia"
	if q.Preferences != "" {
		name = q.Preferences + " stay"
	}
	return []travel.Hotel{{Name: name, Rating: 4.5, PricePerNight: 200}}, nil
}

func (g *stubGateway) Activities(_ context.Context, _ travel.ActivityQuery) ([]travel.Activity, error) {
	if err := g.record(travel.ProviderActivities); err != nil {
		return nil, err
	}
	return []travel.Activity{{Name: "Seine cruise", Rating: 4.7}}, nil
}

func (g *stubGateway) Events(_ context.Context, _ travel.EventQuery) ([]travel.Event, error) {
	if err := g.record(travel.ProviderEvents); err != nil {
		return nil, err
	}
	return []travel.Event{{Title: "Jazz festival"}}, nil
}

func (g *stubGateway) Places(_ context.Context, _ travel.PlaceQuery) ([]travel.Place, error) {
	if err := g.record(travel.ProviderPlaces); err != nil {
		return nil, err
	}
	return []travel.Place{{Name: "Eiffel Tower", Rating: 4.8}}, nil
}

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, _ []llm.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestManager(ext map[string]extract.ExtractedDetails, gw *stubGateway) (*Manager, *store.MemoryStore) {
	mem := store.NewMemory()
	m := NewManager(mem, &scriptedExtractor{byMessage: ext}, gw, &stubCompleter{reply: itineraryText}, 30*time.Minute, 10)
	return m, mem
}

func completeTrip() domain.TripDetails {
	return domain.TripDetails{
		Origin:      "Boston",
		Destination: "Paris",
		StartDate:   "2026-06-10",
		EndDate:     "2026-06-17",
		Travelers:   2,
	}
}

func seedSession(t *testing.T, mem *store.MemoryStore, phase domain.Phase, withItinerary bool) *domain.Session {
	t.Helper()
	sess := domain.NewSession("s1", "u1")
	sess.Trip = completeTrip()
	sess.Phase = phase
	if withItinerary {
		sess.Trip.ConfirmAll()
		sess.Itinerary = &domain.Itinerary{
			Text: itineraryText,
			Sections: []domain.ItinerarySection{
				{Provider: travel.ProviderFlights, Results: []string{"Air France, $400"}},
				{Provider: travel.ProviderHotels, Results: []string{"Hotel Lutetia"}},
				{Provider: travel.ProviderActivities, Results: []string{"Seine cruise"}},
			},
			GeneratedAt: time.Now().UTC(),
		}
	}
	if err := mem.Put(context.Background(), sess, 30*time.Minute); err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}
	return sess
}

func TestConverseFullFlow(t *testing.T) {
	gw := newStubGateway()
	m, _ := newTestManager(map[string]extract.ExtractedDetails{
		"We're planning a trip to Paris from Boston": {Origin: "Boston", Destination: "Paris"},
		"June 10 to June 17 2026, two of us":         {StartDate: "2026-06-10", EndDate: "2026-06-17", Travelers: 2},
	}, gw)

	ctx := context.Background()

	res, err := m.Converse(ctx, "s1", "u1", "We're planning a trip to Paris from Boston")
	if err != nil {
		t.Fatalf("Turn 1 failed: %v", err)
	}
	if res.Phase != domain.PhaseCollecting {
		t.Errorf("Expected collecting after turn 1, got %s", res.Phase)
	}
	if res.Trip.Origin != "Boston" || res.Trip.Destination != "Paris" {
		t.Errorf("Expected Boston->Paris, got %q->%q", res.Trip.Origin, res.Trip.Destination)
	}

	res, err = m.Converse(ctx, "s1", "u1", "June 10 to June 17 2026, two of us")
	if err != nil {
		t.Fatalf("Turn 2 failed: %v", err)
	}
	if res.Phase != domain.PhaseConfirming {
		t.Errorf("Expected confirming once required fields are in, got %s", res.Phase)
	}
	if res.Trip.Origin != "Boston" {
		t.Errorf("Earlier details must survive later turns, origin lost")
	}

	res, err = m.Converse(ctx, "s1", "u1", "yes")
	if err != nil {
		t.Fatalf("Turn 3 failed: %v", err)
	}
	if res.Phase != domain.PhaseFollowUp {
		t.Errorf("Expected follow_up after confirmation, got %s", res.Phase)
	}
	if res.Reply != itineraryText {
		t.Errorf("Expected itinerary text as reply, got %q", res.Reply)
	}
	if !res.Trip.IsConfirmed(domain.FieldDestination) {
		t.Errorf("Expected fields confirmed after planning")
	}
	for _, p := range []string{travel.ProviderFlights, travel.ProviderHotels, travel.ProviderActivities, travel.ProviderEvents, travel.ProviderPlaces} {
		if gw.callCount(p) != 1 {
			t.Errorf("Expected 1 call to %s, got %d", p, gw.callCount(p))
		}
	}

	breakdown, err := m.TripCost(ctx, "s1")
	if err != nil {
		t.Fatalf("TripCost failed: %v", err)
	}
	if breakdown.Total != 2500 {
		t.Errorf("Expected total 2500, got %v", breakdown.Total)
	}
	if len(breakdown.Items) != 3 {
		t.Errorf("Expected 3 cost items, got %d", len(breakdown.Items))
	}
}

func TestConversePartialProviderFailure(t *testing.T) {
	gw := newStubGateway()
	gw.fail[travel.ProviderEvents] = true

	m, mem := newTestManager(map[string]extract.ExtractedDetails{}, gw)
	seedSession(t, mem, domain.PhaseConfirming, false)

	res, err := m.Converse(context.Background(), "s1", "u1", "yes")
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}
	if res.Phase != domain.PhaseFollowUp {
		t.Errorf("One dead provider must not block planning, got phase %s", res.Phase)
	}
	if !strings.Contains(res.Reply, travel.ProviderEvents) {
		t.Errorf("Expected reply to flag the missing events section, got %q", res.Reply)
	}

	sess, _ := mem.Get(context.Background(), "s1")
	missing := sess.Itinerary.MissingSections()
	if len(missing) != 1 || missing[0] != travel.ProviderEvents {
		t.Errorf("Expected events flagged missing, got %v", missing)
	}
}

func TestConverseAllProvidersFail(t *testing.T) {
	gw := newStubGateway()
	for _, p := range []string{travel.ProviderFlights, travel.ProviderHotels, travel.ProviderActivities, travel.ProviderEvents, travel.ProviderPlaces} {
		gw.fail[p] = true
	}

	m, mem := newTestManager(map[string]extract.ExtractedDetails{}, gw)
	seedSession(t, mem, domain.PhaseConfirming, false)

	res, err := m.Converse(context.Background(), "s1", "u1", "yes")
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}
	if res.Phase != domain.PhaseConfirming {
		t.Errorf("Total provider failure must keep the session in confirming, got %s", res.Phase)
	}

	sess, _ := mem.Get(context.Background(), "s1")
	if sess.Itinerary != nil {
		t.Errorf("No itinerary should be cached after total failure")
	}
	if sess.Trip.IsConfirmed(domain.FieldDestination) {
		t.Errorf("Fields must not be confirmed when planning failed")
	}
}

func TestConverseCorrectionDuringConfirmation(t *testing.T) {
	gw := newStubGateway()
	m, mem := newTestManager(map[string]extract.ExtractedDetails{
		"actually make it 3 people": {Travelers: 3, Corrections: []domain.Field{domain.FieldTravelers}},
	}, gw)
	sess := seedSession(t, mem, domain.PhaseConfirming, false)
	sess.Trip.ConfirmAll()
	if err := mem.Put(context.Background(), sess, 30*time.Minute); err != nil {
		t.Fatalf("Failed to reseed: %v", err)
	}

	res, err := m.Converse(context.Background(), "s1", "u1", "actually make it 3 people")
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}
	if res.Trip.Travelers != 3 {
		t.Errorf("Correction must override the confirmed value, got %d travelers", res.Trip.Travelers)
	}
	if res.Phase != domain.PhaseConfirming {
		t.Errorf("Still-complete details should stay in confirming, got %s", res.Phase)
	}
	if gw.callCount(travel.ProviderFlights) != 0 {
		t.Errorf("A correction turn must not hit the travel providers")
	}
}

func TestConverseExpiredSessionStartsFresh(t *testing.T) {
	gw := newStubGateway()
	m, mem := newTestManager(map[string]extract.ExtractedDetails{
		"trip to Paris from Boston": {Origin: "Boston", Destination: "Paris"},
		"hello again":               {},
	}, gw)

	ctx := context.Background()
	if _, err := m.Converse(ctx, "s1", "u1", "trip to Paris from Boston"); err != nil {
		t.Fatalf("Turn 1 failed: %v", err)
	}
	mem.Expire("s1")

	res, err := m.Converse(ctx, "s1", "u1", "hello again")
	if err != nil {
		t.Fatalf("Turn after expiry failed: %v", err)
	}
	if res.Phase != domain.PhaseCollecting {
		t.Errorf("Expired session id must start a fresh conversation, got %s", res.Phase)
	}
	if res.Trip.Destination != "" {
		t.Errorf("Expired session must not leak old details, got destination %q", res.Trip.Destination)
	}

	sess, _ := mem.Get(ctx, "s1")
	if len(sess.Turns) != 2 {
		t.Errorf("Fresh session should hold only the new turn pair, got %d turns", len(sess.Turns))
	}
}

func TestConverseExtractionFailureDegrades(t *testing.T) {
	gw := newStubGateway()
	mem := store.NewMemory()
	m := NewManager(mem, &scriptedExtractor{err: errors.New("model unavailable")}, gw, &stubCompleter{reply: "Which city are you departing from?"}, 30*time.Minute, 10)

	res, err := m.Converse(context.Background(), "s1", "u1", "I want to plan a trip")
	if err != nil {
		t.Fatalf("Extraction failure must not fail the turn: %v", err)
	}
	if res.Phase != domain.PhaseCollecting {
		t.Errorf("Expected collecting, got %s", res.Phase)
	}
	if res.Reply == "" {
		t.Errorf("Expected a reply despite extraction failure")
	}
}

func TestFollowUpQuestionDoesNotMutate(t *testing.T) {
	gw := newStubGateway()
	m, mem := newTestManager(map[string]extract.ExtractedDetails{}, gw)
	seeded := seedSession(t, mem, domain.PhaseFollowUp, true)

	res, err := m.Converse(context.Background(), "s1", "u1", "what should we pack for the evenings?")
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}
	if res.Phase != domain.PhaseFollowUp {
		t.Errorf("Questions must keep the session in follow_up, got %s", res.Phase)
	}
	if !res.Trip.Equal(seeded.Trip) {
		t.Errorf("A question must not change trip details")
	}

	sess, _ := mem.Get(context.Background(), "s1")
	if !sess.Itinerary.GeneratedAt.Equal(seeded.Itinerary.GeneratedAt) {
		t.Errorf("A question must not regenerate the itinerary")
	}
	for p, n := range gw.calls {
		if n != 0 {
			t.Errorf("A question must answer from cache, but %s was called %d times", p, n)
		}
	}
}

func TestFollowUpCustomizeHotels(t *testing.T) {
	gw := newStubGateway()
	m, mem := newTestManager(map[string]extract.ExtractedDetails{
		"change the hotel to something boutique": {HotelPreferences: "boutique"},
	}, gw)
	seedSession(t, mem, domain.PhaseFollowUp, true)

	res, err := m.Converse(context.Background(), "s1", "u1", "change the hotel to something boutique")
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}
	if res.Phase != domain.PhaseFollowUp {
		t.Errorf("Customization stays in follow_up, got %s", res.Phase)
	}
	if res.Trip.HotelPreferences != "boutique" {
		t.Errorf("Expected hotel preferences updated, got %q", res.Trip.HotelPreferences)
	}
	if gw.callCount(travel.ProviderHotels) != 1 {
		t.Errorf("Expected exactly one hotels re-query, got %d", gw.callCount(travel.ProviderHotels))
	}
	if gw.callCount(travel.ProviderFlights) != 0 {
		t.Errorf("Customizing hotels must not re-query flights")
	}
	if !strings.Contains(res.Reply, "boutique stay") {
		t.Errorf("Expected fresh hotel options in the reply, got %q", res.Reply)
	}

	sess, _ := mem.Get(context.Background(), "s1")
	if sess.CostBreakdown != nil {
		t.Errorf("Cost breakdown must be invalidated after a section changes")
	}
	section := sess.Itinerary.Section(travel.ProviderHotels)
	if section == nil || len(section.Results) == 0 || !strings.Contains(section.Results[0], "boutique stay") {
		t.Errorf("Expected the hotels section patched, got %+v", section)
	}
}

func TestFollowUpNewTripStartsOver(t *testing.T) {
	gw := newStubGateway()
	m, mem := newTestManager(map[string]extract.ExtractedDetails{
		"now plan a trip to Tokyo": {Destination: "Tokyo"},
	}, gw)
	seedSession(t, mem, domain.PhaseFollowUp, true)

	res, err := m.Converse(context.Background(), "s1", "u1", "now plan a trip to Tokyo")
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}
	if res.Phase != domain.PhaseCollecting {
		t.Errorf("A new trip must restart collection, got %s", res.Phase)
	}
	if res.Trip.Destination != "Tokyo" {
		t.Errorf("Expected new destination Tokyo, got %q", res.Trip.Destination)
	}
	if res.Trip.Origin != "" {
		t.Errorf("Old trip details must not carry over, got origin %q", res.Trip.Origin)
	}

	sess, _ := mem.Get(context.Background(), "s1")
	if sess.Itinerary != nil {
		t.Errorf("Old itinerary must be dropped on a new trip")
	}
}

func TestHistoryAndReset(t *testing.T) {
	gw := newStubGateway()
	m, _ := newTestManager(map[string]extract.ExtractedDetails{"hi": {}}, gw)
	ctx := context.Background()

	if _, err := m.Converse(ctx, "s1", "u1", "hi"); err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	turns, err := m.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[1].Role != domain.RoleAssistant {
		t.Errorf("Expected user then assistant ordering, got %s, %s", turns[0].Role, turns[1].Role)
	}

	if err := m.Reset(ctx, "s1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := m.History(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after reset, got %v", err)
	}
}

func TestClearUserSessions(t *testing.T) {
	gw := newStubGateway()
	m, _ := newTestManager(map[string]extract.ExtractedDetails{"hi": {}}, gw)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.Converse(ctx, fmt.Sprintf("s%d", i), "u1", "hi"); err != nil {
			t.Fatalf("Converse failed: %v", err)
		}
	}
	if _, err := m.Converse(ctx, "other", "u2", "hi"); err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	deleted, err := m.ClearUserSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ClearUserSessions failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
	if _, err := m.History(ctx, "other"); err != nil {
		t.Errorf("Other users' sessions must survive: %v", err)
	}
}

func TestTripCostErrors(t *testing.T) {
	gw := newStubGateway()
	m, mem := newTestManager(map[string]extract.ExtractedDetails{}, gw)
	ctx := context.Background()

	if _, err := m.TripCost(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound for unknown session, got %v", err)
	}

	seedSession(t, mem, domain.PhaseCollecting, false)
	if _, err := m.TripCost(ctx, "s1"); !errors.Is(err, ErrCostUnavailable) {
		t.Errorf("Expected ErrCostUnavailable before planning, got %v", err)
	}
}
