package dialogue

import (
	"testing"

	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/extract"
	"github.com/voyago/voyago/internal/travel"
)

func TestIsAffirmation(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"yes", true},
		{"Yes!", true},
		{"yes, please", true},
		{"sounds good", true},
		{"book it", true},
		{"OK", true},
		{"looks good", true},
		{"no", false},
		{"no, that's wrong", false},
		{"not yet", false},
		{"yes but the dates are wrong", false},
		{"what about the hotel?", false},
		{"I want to go to Paris", false},
	}

	for _, tt := range tests {
		if got := isAffirmation(tt.message); got != tt.want {
			t.Errorf("isAffirmation(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestCustomizationTarget(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"change the hotel to something cheaper", travel.ProviderHotels},
		{"can we swap the flight for a direct one", travel.ProviderFlights},
		{"replace the museum visit", travel.ProviderPlaces},
		{"add a concert if there is one", travel.ProviderEvents},
		{"I'd like different activities", travel.ProviderActivities},
		{"what time does the tour start", ""},
		{"tell me about the hotel", ""},
	}

	for _, tt := range tests {
		if got := customizationTarget(tt.message); got != tt.want {
			t.Errorf("customizationTarget(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestIsNewTrip(t *testing.T) {
	trip := completeTrip()

	if !isNewTrip(extract.ExtractedDetails{Destination: "Tokyo"}, trip) {
		t.Errorf("A different destination is a new trip")
	}
	if isNewTrip(extract.ExtractedDetails{Destination: "paris"}, trip) {
		t.Errorf("The same destination in different case is not a new trip")
	}
	if !isNewTrip(extract.ExtractedDetails{StartDate: "2026-09-01", EndDate: "2026-09-08"}, trip) {
		t.Errorf("A fully different date range is a new trip")
	}
	if isNewTrip(extract.ExtractedDetails{StartDate: "2026-09-01"}, trip) {
		t.Errorf("A lone start date is a tweak, not a new trip")
	}
	if isNewTrip(extract.ExtractedDetails{}, trip) {
		t.Errorf("An empty extraction is never a new trip")
	}
}

func TestClassifyIntentConfirming(t *testing.T) {
	trip := completeTrip()

	if got := classifyIntent(domain.PhaseConfirming, "yes", extract.ExtractedDetails{}, trip); got != IntentAffirm {
		t.Errorf("Expected affirm, got %s", got)
	}

	// Explicit correction marker.
	ext := extract.ExtractedDetails{Travelers: 3, Corrections: []domain.Field{domain.FieldTravelers}}
	if got := classifyIntent(domain.PhaseConfirming, "actually make it 3", ext, trip); got != IntentDispute {
		t.Errorf("Expected dispute for a marked correction, got %s", got)
	}

	// A conflicting value during confirmation is a correction even without
	// a marker.
	ext = extract.ExtractedDetails{Travelers: 5}
	if got := classifyIntent(domain.PhaseConfirming, "5 travelers", ext, trip); got != IntentDispute {
		t.Errorf("Expected dispute for a conflicting value, got %s", got)
	}

	// Filling a previously absent optional field is plain info.
	ext = extract.ExtractedDetails{Budget: 3000}
	if got := classifyIntent(domain.PhaseConfirming, "our budget is $3000", ext, trip); got != IntentProvideInfo {
		t.Errorf("Expected provide_info for a new optional field, got %s", got)
	}
}

func TestClassifyIntentFollowUp(t *testing.T) {
	trip := completeTrip()

	if got := classifyIntent(domain.PhaseFollowUp, "plan a trip to Tokyo", extract.ExtractedDetails{Destination: "Tokyo"}, trip); got != IntentNewTrip {
		t.Errorf("Expected new_trip, got %s", got)
	}
	if got := classifyIntent(domain.PhaseFollowUp, "change the hotel", extract.ExtractedDetails{}, trip); got != IntentCustomize {
		t.Errorf("Expected customize, got %s", got)
	}
	if got := classifyIntent(domain.PhaseFollowUp, "how do we get to the airport?", extract.ExtractedDetails{}, trip); got != IntentQuestion {
		t.Errorf("Expected question, got %s", got)
	}
}
