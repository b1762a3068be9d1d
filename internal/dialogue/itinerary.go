package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/llm"
	"github.com/voyago/voyago/internal/travel"
)

// providerOutcome is one provider's settled result from the fan-out.
type providerOutcome struct {
	provider string
	results  []string
	err      error
}

// queryProviders fans out all five providers concurrently and waits for
// every one to settle. This is a partial-success barrier, not fail-fast:
// each outcome carries its own result or error, and a failure in one
// provider never cancels the others.
func (m *Manager) queryProviders(ctx context.Context, trip domain.TripDetails) []providerOutcome {
	queries := []struct {
		provider string
		fetch    func(context.Context) ([]string, error)
	}{
		{travel.ProviderFlights, func(ctx context.Context) ([]string, error) {
			flights, err := m.gateway.Flights(ctx, travel.FlightQuery{
				Origin:      trip.Origin,
				Destination: trip.Destination,
				StartDate:   trip.StartDate,
				EndDate:     trip.EndDate,
				Travelers:   trip.Travelers,
			})
			return renderFlights(flights), err
		}},
		{travel.ProviderHotels, func(ctx context.Context) ([]string, error) {
			hotels, err := m.gateway.Hotels(ctx, travel.HotelQuery{
				Destination: trip.Destination,
				CheckIn:     trip.StartDate,
				CheckOut:    trip.EndDate,
				Travelers:   trip.Travelers,
				Budget:      trip.Budget,
				Preferences: trip.HotelPreferences,
			})
			return renderHotels(hotels), err
		}},
		{travel.ProviderActivities, func(ctx context.Context) ([]string, error) {
			activities, err := m.gateway.Activities(ctx, travel.ActivityQuery{
				Destination: trip.Destination,
				Preferences: trip.ActivityPreferences,
			})
			return renderActivities(activities), err
		}},
		{travel.ProviderEvents, func(ctx context.Context) ([]string, error) {
			events, err := m.gateway.Events(ctx, travel.EventQuery{Destination: trip.Destination})
			return renderEvents(events), err
		}},
		{travel.ProviderPlaces, func(ctx context.Context) ([]string, error) {
			places, err := m.gateway.Places(ctx, travel.PlaceQuery{
				Location: trip.Destination,
				Kind:     travel.PlaceKindAttractions,
			})
			return renderPlaces(places), err
		}},
	}

	outcomes := make([]providerOutcome, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, provider string, fetch func(context.Context) ([]string, error)) {
			defer wg.Done()
			results, err := fetch(ctx)
			outcomes[i] = providerOutcome{provider: provider, results: results, err: err}
		}(i, q.provider, q.fetch)
	}
	wg.Wait()
	return outcomes
}

// generateItinerary produces the itinerary for confirmed trip details. It
// returns an error only when every provider failed; otherwise it assembles
// a best-effort plan and flags the missing sections.
func (m *Manager) generateItinerary(ctx context.Context, sess *domain.Session) (*domain.Itinerary, error) {
	outcomes := m.queryProviders(ctx, sess.Trip)

	sections := lo.Map(outcomes, func(o providerOutcome, _ int) domain.ItinerarySection {
		if o.err != nil {
			slog.Warn("Provider failed during itinerary generation",
				"session_id", sess.ID, "provider", o.provider, "error", o.err)
			return domain.ItinerarySection{Provider: o.provider, Missing: true, Reason: o.err.Error()}
		}
		return domain.ItinerarySection{Provider: o.provider, Results: o.results}
	})

	succeeded := lo.CountBy(sections, func(s domain.ItinerarySection) bool { return !s.Missing })
	if succeeded == 0 {
		return nil, fmt.Errorf("all travel providers failed")
	}

	text := m.composeItinerary(ctx, sess.Trip, sections)

	return &domain.Itinerary{
		Text:        text,
		Sections:    sections,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// composeItinerary asks the model to write the day-by-day plan from the
// provider results. If the completion fails, a plain deterministic summary
// is returned instead; the gathered data is not thrown away.
func (m *Manager) composeItinerary(ctx context.Context, trip domain.TripDetails, sections []domain.ItinerarySection) string {
	prompt := buildItineraryPrompt(trip, sections)
	text, err := m.completer.Complete(ctx, []llm.Message{llm.System(prompt)})
	if err != nil {
		slog.Warn("Itinerary composition failed, using plain summary", "error", err)
		return plainItinerary(trip, sections)
	}
	return text
}

// plainItinerary renders sections without the model. Fallback path only.
func plainItinerary(trip domain.TripDetails, sections []domain.ItinerarySection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your trip from %s to %s (%s to %s):\n",
		trip.Origin, trip.Destination, trip.StartDate, trip.EndDate)
	for _, s := range sections {
		fmt.Fprintf(&sb, "\n## %s\n", sectionHeading(s.Provider))
		if s.Missing {
			fmt.Fprintf(&sb, "Unavailable right now: %s results could not be fetched.\n", s.Provider)
			continue
		}
		for _, r := range s.Results {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}
	return sb.String()
}

func sectionHeading(provider string) string {
	if provider == "" {
		return provider
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}

func renderFlights(flights []travel.Flight) []string {
	return lo.Map(flights, func(f travel.Flight, _ int) string {
		return fmt.Sprintf("%s, %s -> %s, %s, %d stop(s), $%.0f",
			f.Airline, f.Departure, f.Arrival, f.Duration, f.Stops, f.Price)
	})
}

func renderHotels(hotels []travel.Hotel) []string {
	return lo.Map(hotels, func(h travel.Hotel, _ int) string {
		return fmt.Sprintf("%s, rating %.1f, $%.0f/night. %s", h.Name, h.Rating, h.PricePerNight, h.Description)
	})
}

func renderActivities(activities []travel.Activity) []string {
	return lo.Map(activities, func(a travel.Activity, _ int) string {
		return fmt.Sprintf("%s (%s), rating %.1f. %s", a.Name, a.Category, a.Rating, a.Description)
	})
}

func renderEvents(events []travel.Event) []string {
	return lo.Map(events, func(e travel.Event, _ int) string {
		return fmt.Sprintf("%s, %s at %s", e.Title, e.Date, e.Venue)
	})
}

func renderPlaces(places []travel.Place) []string {
	return lo.Map(places, func(p travel.Place, _ int) string {
		return fmt.Sprintf("%s, rating %.1f, %s", p.Name, p.Rating, p.Address)
	})
}

// requery runs a single provider again for a customization request and
// returns the patched section.
func (m *Manager) requery(ctx context.Context, provider string, trip domain.TripDetails, hint string) domain.ItinerarySection {
	var results []string
	var err error

	switch provider {
	case travel.ProviderFlights:
		var flights []travel.Flight
		flights, err = m.gateway.Flights(ctx, travel.FlightQuery{
			Origin: trip.Origin, Destination: trip.Destination,
			StartDate: trip.StartDate, EndDate: trip.EndDate, Travelers: trip.Travelers,
		})
		results = renderFlights(flights)
	case travel.ProviderHotels:
		prefs := trip.HotelPreferences
		if hint != "" {
			prefs = hint
		}
		var hotels []travel.Hotel
		hotels, err = m.gateway.Hotels(ctx, travel.HotelQuery{
			Destination: trip.Destination, CheckIn: trip.StartDate, CheckOut: trip.EndDate,
			Travelers: trip.Travelers, Budget: trip.Budget, Preferences: prefs,
		})
		results = renderHotels(hotels)
	case travel.ProviderActivities:
		prefs := trip.ActivityPreferences
		if hint != "" {
			prefs = hint
		}
		var activities []travel.Activity
		activities, err = m.gateway.Activities(ctx, travel.ActivityQuery{Destination: trip.Destination, Preferences: prefs})
		results = renderActivities(activities)
	case travel.ProviderEvents:
		var events []travel.Event
		events, err = m.gateway.Events(ctx, travel.EventQuery{Destination: trip.Destination})
		results = renderEvents(events)
	case travel.ProviderPlaces:
		var places []travel.Place
		places, err = m.gateway.Places(ctx, travel.PlaceQuery{Location: trip.Destination, Kind: travel.PlaceKindAttractions})
		results = renderPlaces(places)
	}

	if err != nil {
		return domain.ItinerarySection{Provider: provider, Missing: true, Reason: err.Error()}
	}
	return domain.ItinerarySection{Provider: provider, Results: results}
}
