package dialogue

import (
	"regexp"
	"strings"

	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/extract"
	"github.com/voyago/voyago/internal/travel"
)

var confirmationPhrases = map[string]bool{
	"yes": true, "yes please": true, "yes, please": true, "yeah": true,
	"yep": true, "sure": true, "ok": true, "okay": true, "proceed": true,
	"go ahead": true, "sounds good": true, "confirm": true, "correct": true,
	"looks good": true, "book it": true, "that's right": true,
}

var confirmationWords = []string{
	"yes", "yeah", "yep", "sure", "ok", "okay", "proceed",
	"confirm", "book", "correct", "perfect", "right",
}

var negationWords = []string{"no", "nope", "don't", "dont", "not", "cancel", "wrong", "incorrect"}

// isAffirmation reports whether the message confirms the summarized trip.
// Negations win over confirmation keywords ("no, that's not right").
func isAffirmation(message string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))
	msg = strings.TrimRight(msg, ".!")

	if confirmationPhrases[msg] {
		return true
	}

	words := strings.Fields(msg)
	hasConfirmation := false
	for _, w := range words {
		for _, c := range confirmationWords {
			if w == c {
				hasConfirmation = true
			}
		}
		for _, n := range negationWords {
			if w == n {
				return false
			}
		}
	}
	return hasConfirmation
}

var customizeVerbRe = regexp.MustCompile(`\b(change|swap|switch|replace|upgrade|downgrade|different|another|cheaper|nicer|instead|skip|remove|add)\b`)

var customizeTargets = map[string]string{
	"hotel":         travel.ProviderHotels,
	"accommodation": travel.ProviderHotels,
	"stay":          travel.ProviderHotels,
	"lodging":       travel.ProviderHotels,
	"flight":        travel.ProviderFlights,
	"airline":       travel.ProviderFlights,
	"activity":      travel.ProviderActivities,
	"activities":    travel.ProviderActivities,
	"tour":          travel.ProviderActivities,
	"restaurant":    travel.ProviderActivities,
	"event":         travel.ProviderEvents,
	"events":        travel.ProviderEvents,
	"concert":       travel.ProviderEvents,
	"attraction":    travel.ProviderPlaces,
	"attractions":   travel.ProviderPlaces,
	"museum":        travel.ProviderPlaces,
}

// customizationTarget returns the provider a customization request targets,
// or "" if the message is not a customization.
func customizationTarget(message string) string {
	msg := strings.ToLower(message)
	if !customizeVerbRe.MatchString(msg) {
		return ""
	}
	for keyword, provider := range customizeTargets {
		if strings.Contains(msg, keyword) {
			return provider
		}
	}
	return ""
}

// isNewTrip reports whether the extraction introduces a materially new trip:
// a different destination, or a fully different date range.
func isNewTrip(ext extract.ExtractedDetails, trip domain.TripDetails) bool {
	if ext.Destination != "" && !strings.EqualFold(ext.Destination, trip.Destination) {
		return true
	}
	if ext.StartDate != "" && ext.EndDate != "" &&
		(ext.StartDate != trip.StartDate || ext.EndDate != trip.EndDate) {
		return true
	}
	return false
}

// classifyIntent derives the turn's intent signal from the phase, the raw
// message and the extraction.
func classifyIntent(phase domain.Phase, message string, ext extract.ExtractedDetails, trip domain.TripDetails) Intent {
	switch phase {
	case domain.PhaseConfirming:
		if len(ext.Corrections) > 0 {
			return IntentDispute
		}
		if isAffirmation(message) {
			return IntentAffirm
		}
		// New values for already-present fields during confirmation are
		// corrections even without an explicit marker.
		for _, f := range allFields() {
			if ext.Has(f) && trip.Has(f) && ext.Get(f) != trip.Get(f) {
				return IntentDispute
			}
		}
		return IntentProvideInfo

	case domain.PhaseFollowUp:
		if isNewTrip(ext, trip) {
			return IntentNewTrip
		}
		if customizationTarget(message) != "" {
			return IntentCustomize
		}
		return IntentQuestion

	default:
		return IntentProvideInfo
	}
}
