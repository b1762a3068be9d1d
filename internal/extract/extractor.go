// Package extract turns raw user text into partial trip details.
package extract

import (
	"context"

	"github.com/voyago/voyago/internal/domain"
)

// Confidence grades how directly a value was stated by the user.
type Confidence string

const (
	// ConfidenceExplicit means the user stated the value directly.
	ConfidenceExplicit Confidence = "explicit"
	// ConfidenceInferred means the value was derived (vague dates, counts).
	ConfidenceInferred Confidence = "inferred"
)

// ExtractedDetails is a best-effort partial trip record for one turn. Absent
// fields keep their zero value; an extractor never fabricates a field the
// text does not contain. Corrections lists fields the user explicitly
// changed, which allows the merge to override confirmed values.
type ExtractedDetails struct {
	Origin              string
	Destination         string
	StartDate           string
	EndDate             string
	Travelers           int
	Budget              int
	ActivityPreferences string
	HotelPreferences    string

	Confidence  map[domain.Field]Confidence
	Corrections []domain.Field
}

// Get returns a field's extracted value as a string ("" when absent).
func (e ExtractedDetails) Get(f domain.Field) string {
	return e.asTrip().Get(f)
}

// Has reports whether the extractor found a value for a field.
func (e ExtractedDetails) Has(f domain.Field) bool {
	return e.Get(f) != ""
}

// IsEmpty reports whether nothing was extracted.
func (e ExtractedDetails) IsEmpty() bool {
	for _, f := range append(append([]domain.Field{}, domain.RequiredFields...), domain.OptionalFields...) {
		if e.Has(f) {
			return false
		}
	}
	return true
}

// IsCorrection reports whether the turn explicitly corrects a field.
func (e ExtractedDetails) IsCorrection(f domain.Field) bool {
	for _, c := range e.Corrections {
		if c == f {
			return true
		}
	}
	return false
}

func (e ExtractedDetails) asTrip() domain.TripDetails {
	return domain.TripDetails{
		Origin:              e.Origin,
		Destination:         e.Destination,
		StartDate:           e.StartDate,
		EndDate:             e.EndDate,
		Travelers:           e.Travelers,
		Budget:              e.Budget,
		ActivityPreferences: e.ActivityPreferences,
		HotelPreferences:    e.HotelPreferences,
	}
}

func (e *ExtractedDetails) markConfidence(f domain.Field, c Confidence) {
	if e.Confidence == nil {
		e.Confidence = make(map[domain.Field]Confidence)
	}
	e.Confidence[f] = c
}

// Extractor parses trip details out of a user message. Implementations must
// be side-effect-free. Known details are passed for context only; the
// extractor never copies them into its output.
type Extractor interface {
	Extract(ctx context.Context, text string, known domain.TripDetails) (ExtractedDetails, error)
}
