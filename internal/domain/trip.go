// Package domain defines the core types shared across the service.
package domain

import (
	"fmt"
	"strings"
)

// Field names a TripDetails field. Used for confirmation tracking and
// correction signals.
type Field string

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldStartDate   Field = "start_date"
	FieldEndDate     Field = "end_date"
	FieldTravelers   Field = "travelers"
	FieldBudget      Field = "budget"
	FieldActivities  Field = "activity_preferences"
	FieldHotels      Field = "hotel_preferences"
)

// RequiredFields are the fields that must be present before the trip can be
// confirmed. Budget and preferences are optional.
var RequiredFields = []Field{
	FieldOrigin,
	FieldDestination,
	FieldStartDate,
	FieldEndDate,
	FieldTravelers,
}

// OptionalFields are collected opportunistically but never block confirmation.
var OptionalFields = []Field{
	FieldBudget,
	FieldActivities,
	FieldHotels,
}

// TripDetails holds the structured trip parameters accumulated over a
// session. Dates are ISO strings (YYYY-MM-DD). Zero values mean "not yet
// provided". Confirmed tracks fields the user has affirmed; a confirmed field
// is never silently overwritten by a later extraction unless the turn carries
// an explicit correction for it.
type TripDetails struct {
	Origin              string `json:"origin,omitempty"`
	Destination         string `json:"destination,omitempty"`
	StartDate           string `json:"startDate,omitempty"`
	EndDate             string `json:"endDate,omitempty"`
	Travelers           int    `json:"travelers,omitempty"`
	Budget              int    `json:"budget,omitempty"`
	ActivityPreferences string `json:"activityPreferences,omitempty"`
	HotelPreferences    string `json:"hotelPreferences,omitempty"`

	Confirmed map[Field]bool `json:"confirmed,omitempty"`
}

// Get returns the value of a field as a string ("" when unset).
func (t TripDetails) Get(f Field) string {
	switch f {
	case FieldOrigin:
		return t.Origin
	case FieldDestination:
		return t.Destination
	case FieldStartDate:
		return t.StartDate
	case FieldEndDate:
		return t.EndDate
	case FieldTravelers:
		if t.Travelers == 0 {
			return ""
		}
		return fmt.Sprintf("%d", t.Travelers)
	case FieldBudget:
		if t.Budget == 0 {
			return ""
		}
		return fmt.Sprintf("%d", t.Budget)
	case FieldActivities:
		return t.ActivityPreferences
	case FieldHotels:
		return t.HotelPreferences
	}
	return ""
}

// Has reports whether a field has been provided.
func (t TripDetails) Has(f Field) bool {
	return t.Get(f) != ""
}

// IsConfirmed reports whether a field has been affirmed by the user.
func (t TripDetails) IsConfirmed(f Field) bool {
	return t.Confirmed[f]
}

// ConfirmAll marks every present field as user-confirmed. Called when the
// user affirms the summarized details.
func (t *TripDetails) ConfirmAll() {
	if t.Confirmed == nil {
		t.Confirmed = make(map[Field]bool)
	}
	for _, f := range append(append([]Field{}, RequiredFields...), OptionalFields...) {
		if t.Has(f) {
			t.Confirmed[f] = true
		}
	}
}

// MissingRequired returns required fields that have not been provided yet.
func (t TripDetails) MissingRequired() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if !t.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// MissingOptional returns optional fields that have not been provided yet.
func (t TripDetails) MissingOptional() []Field {
	var missing []Field
	for _, f := range OptionalFields {
		if !t.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// ReadyForConfirmation reports whether every required field is present.
func (t TripDetails) ReadyForConfirmation() bool {
	return len(t.MissingRequired()) == 0
}

// Equal compares field values, ignoring confirmation state.
func (t TripDetails) Equal(o TripDetails) bool {
	return t.Origin == o.Origin &&
		t.Destination == o.Destination &&
		t.StartDate == o.StartDate &&
		t.EndDate == o.EndDate &&
		t.Travelers == o.Travelers &&
		t.Budget == o.Budget &&
		t.ActivityPreferences == o.ActivityPreferences &&
		t.HotelPreferences == o.HotelPreferences
}

// Clone returns a deep copy.
func (t TripDetails) Clone() TripDetails {
	out := t
	if t.Confirmed != nil {
		out.Confirmed = make(map[Field]bool, len(t.Confirmed))
		for k, v := range t.Confirmed {
			out.Confirmed[k] = v
		}
	}
	return out
}

// Summary renders the known fields for prompts and logs.
func (t TripDetails) Summary() string {
	var parts []string
	if t.Origin != "" {
		parts = append(parts, "Origin: "+t.Origin)
	}
	if t.Destination != "" {
		parts = append(parts, "Destination: "+t.Destination)
	}
	if t.StartDate != "" {
		parts = append(parts, "Start Date: "+t.StartDate)
	}
	if t.EndDate != "" {
		parts = append(parts, "End Date: "+t.EndDate)
	}
	if t.Travelers > 0 {
		parts = append(parts, fmt.Sprintf("Travelers: %d", t.Travelers))
	}
	if t.Budget > 0 {
		parts = append(parts, fmt.Sprintf("Budget: $%d", t.Budget))
	}
	if t.ActivityPreferences != "" {
		parts = append(parts, "Activity Preferences: "+t.ActivityPreferences)
	}
	if t.HotelPreferences != "" {
		parts = append(parts, "Hotel Preferences: "+t.HotelPreferences)
	}
	if len(parts) == 0 {
		return "no trip details yet"
	}
	return strings.Join(parts, ", ")
}
