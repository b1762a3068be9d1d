package dialogue

import (
	"testing"

	"github.com/voyago/voyago/internal/domain"
)

func TestNextPhase(t *testing.T) {
	complete := completeTrip()
	partial := domain.TripDetails{Destination: "Paris"}

	tests := []struct {
		name    string
		current domain.Phase
		trip    domain.TripDetails
		intent  Intent
		want    domain.Phase
	}{
		{"collecting stays with missing fields", domain.PhaseCollecting, partial, IntentProvideInfo, domain.PhaseCollecting},
		{"collecting advances when complete", domain.PhaseCollecting, complete, IntentProvideInfo, domain.PhaseConfirming},
		{"confirming plus affirmation plans", domain.PhaseConfirming, complete, IntentAffirm, domain.PhasePlanning},
		{"affirmation with missing fields collects", domain.PhaseConfirming, partial, IntentAffirm, domain.PhaseCollecting},
		{"dispute keeps confirming when complete", domain.PhaseConfirming, complete, IntentDispute, domain.PhaseConfirming},
		{"dispute falls back when a field was cleared", domain.PhaseConfirming, partial, IntentDispute, domain.PhaseCollecting},
		{"planning always hands off to follow-up", domain.PhasePlanning, complete, IntentProvideInfo, domain.PhaseFollowUp},
		{"follow-up question stays", domain.PhaseFollowUp, complete, IntentQuestion, domain.PhaseFollowUp},
		{"follow-up customization stays", domain.PhaseFollowUp, complete, IntentCustomize, domain.PhaseFollowUp},
		{"follow-up new trip restarts", domain.PhaseFollowUp, partial, IntentNewTrip, domain.PhaseCollecting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextPhase(tt.current, tt.trip, tt.intent); got != tt.want {
				t.Errorf("nextPhase(%s, %s) = %s, want %s", tt.current, tt.intent, got, tt.want)
			}
		})
	}
}

// The phase can only move forward through collect -> confirm -> plan ->
// follow-up; no intent may jump a session from collecting straight to
// planning or follow-up.
func TestNextPhaseNeverSkipsConfirmation(t *testing.T) {
	complete := completeTrip()
	for _, intent := range []Intent{IntentProvideInfo, IntentAffirm, IntentDispute, IntentQuestion, IntentCustomize, IntentNewTrip} {
		got := nextPhase(domain.PhaseCollecting, complete, intent)
		if got == domain.PhasePlanning || got == domain.PhaseFollowUp {
			t.Errorf("Collecting must never skip to %s (intent %s)", got, intent)
		}
	}
}
