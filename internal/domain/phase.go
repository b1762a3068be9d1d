package domain

import (
	"encoding/json"
	"fmt"
)

// Phase is the dialogue's current stage. Transitions are owned exclusively
// by the dialogue package; everything else treats Phase as read-only.
type Phase int

const (
	// PhaseCollecting gathers required trip fields.
	PhaseCollecting Phase = iota
	// PhaseConfirming summarizes the collected details and awaits affirmation.
	PhaseConfirming
	// PhasePlanning generates the itinerary from provider results.
	PhasePlanning
	// PhaseFollowUp answers questions about and customizes the itinerary.
	PhaseFollowUp
)

var phaseNames = map[Phase]string{
	PhaseCollecting: "collecting",
	PhaseConfirming: "confirming",
	PhasePlanning:   "planning",
	PhaseFollowUp:   "follow_up",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalJSON encodes the phase as its string name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a phase from its string name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for phase, name := range phaseNames {
		if name == s {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}
