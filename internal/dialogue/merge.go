package dialogue

import (
	"github.com/voyago/voyago/internal/domain"
	"github.com/voyago/voyago/internal/extract"
)

// mergeDetails folds one turn's extraction into the accumulated trip
// details. The operation is all-or-nothing: it builds a new value from a
// clone and never mutates prev.
//
// Per-field rule: a non-empty extracted value replaces the previous value
// only if the field is not user-confirmed, or the turn carries an explicit
// correction for that field. Fields the extractor did not return are left
// untouched, so re-submitting the same message is idempotent.
func mergeDetails(prev domain.TripDetails, ext extract.ExtractedDetails) domain.TripDetails {
	out := prev.Clone()

	for _, f := range allFields() {
		if !ext.Has(f) {
			continue
		}
		if prev.IsConfirmed(f) && !ext.IsCorrection(f) {
			continue
		}
		setField(&out, f, ext)
	}

	return out
}

func allFields() []domain.Field {
	return append(append([]domain.Field{}, domain.RequiredFields...), domain.OptionalFields...)
}

func setField(t *domain.TripDetails, f domain.Field, ext extract.ExtractedDetails) {
	switch f {
	case domain.FieldOrigin:
		t.Origin = ext.Origin
	case domain.FieldDestination:
		t.Destination = ext.Destination
	case domain.FieldStartDate:
		t.StartDate = ext.StartDate
	case domain.FieldEndDate:
		t.EndDate = ext.EndDate
	case domain.FieldTravelers:
		t.Travelers = ext.Travelers
	case domain.FieldBudget:
		t.Budget = ext.Budget
	case domain.FieldActivities:
		t.ActivityPreferences = ext.ActivityPreferences
	case domain.FieldHotels:
		t.HotelPreferences = ext.HotelPreferences
	}
}

// tripFromExtraction builds fresh details from a single extraction. Used
// when a follow-up introduces a new trip and the session starts over.
func tripFromExtraction(ext extract.ExtractedDetails) domain.TripDetails {
	var t domain.TripDetails
	for _, f := range allFields() {
		if ext.Has(f) {
			setField(&t, f, ext)
		}
	}
	return t
}
