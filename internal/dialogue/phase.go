// Package dialogue implements the conversation phase state machine and the
// trip-detail merge logic. It owns every phase transition; no other package
// mutates a session's phase.
package dialogue

import (
	"github.com/voyago/voyago/internal/domain"
)

// Intent is the signal classified from the latest user turn.
type Intent int

const (
	// IntentProvideInfo supplies new or additional trip information.
	IntentProvideInfo Intent = iota
	// IntentAffirm confirms the summarized details.
	IntentAffirm
	// IntentDispute corrects a previously provided field.
	IntentDispute
	// IntentQuestion asks about the existing itinerary.
	IntentQuestion
	// IntentCustomize requests a targeted itinerary change that keeps the
	// core trip parameters.
	IntentCustomize
	// IntentNewTrip introduces a materially different trip.
	IntentNewTrip
)

func (i Intent) String() string {
	switch i {
	case IntentProvideInfo:
		return "provide_info"
	case IntentAffirm:
		return "affirm"
	case IntentDispute:
		return "dispute"
	case IntentQuestion:
		return "question"
	case IntentCustomize:
		return "customize"
	case IntentNewTrip:
		return "new_trip"
	}
	return "unknown"
}

// nextPhase is the transition function: a pure function of the current
// phase, trip completeness and the turn's intent. Itinerary generation
// success is handled by the manager — an affirmation only reaches Planning
// here; the Planning -> FollowUp edge is taken by the manager once the
// itinerary has been generated and presented.
func nextPhase(current domain.Phase, trip domain.TripDetails, intent Intent) domain.Phase {
	switch current {
	case domain.PhaseCollecting:
		if trip.ReadyForConfirmation() {
			return domain.PhaseConfirming
		}
		return domain.PhaseCollecting

	case domain.PhaseConfirming:
		switch intent {
		case IntentAffirm:
			if trip.ReadyForConfirmation() {
				return domain.PhasePlanning
			}
			return domain.PhaseCollecting
		case IntentDispute, IntentProvideInfo:
			if !trip.ReadyForConfirmation() {
				return domain.PhaseCollecting
			}
			return domain.PhaseConfirming
		default:
			return domain.PhaseConfirming
		}

	case domain.PhasePlanning:
		// A session is only persisted in Planning if generation was
		// interrupted; the next turn presents the itinerary or retries.
		return domain.PhaseFollowUp

	case domain.PhaseFollowUp:
		if intent == IntentNewTrip {
			return domain.PhaseCollecting
		}
		return domain.PhaseFollowUp
	}
	return current
}
