// Package travel wraps the external travel-data providers behind one
// gateway. Each query operation is independent; there is no shared logic
// beyond request/response shaping and caching.
package travel

import (
	"context"
)

// Provider names, used in itinerary sections and error reporting.
const (
	ProviderFlights    = "flights"
	ProviderHotels     = "hotels"
	ProviderActivities = "activities"
	ProviderEvents     = "events"
	ProviderPlaces     = "places"
)

// FlightQuery asks for flight options between two cities.
type FlightQuery struct {
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Travelers   int
}

// Flight is one flight option.
type Flight struct {
	Airline   string  `json:"airline"`
	Departure string  `json:"departure"`
	Arrival   string  `json:"arrival"`
	Duration  string  `json:"duration"`
	Stops     int     `json:"stops"`
	Price     float64 `json:"price"`
}

// HotelQuery asks for accommodation options.
type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Travelers   int
	Budget      int
	Preferences string
}

// Hotel is one accommodation option.
type Hotel struct {
	Name          string  `json:"name"`
	Address       string  `json:"address,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	PricePerNight float64 `json:"pricePerNight,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// ActivityQuery asks for things to do at the destination.
type ActivityQuery struct {
	Destination string
	Preferences string
}

// Activity is one recommended activity.
type Activity struct {
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Price       string  `json:"price,omitempty"`
}

// EventQuery asks for events happening at a destination.
type EventQuery struct {
	Destination string
}

// Event is one local event.
type Event struct {
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Venue   string `json:"venue,omitempty"`
	Address string `json:"address,omitempty"`
	Link    string `json:"link,omitempty"`
}

// PlaceKind selects the flavor of a places lookup.
type PlaceKind string

const (
	PlaceKindGeneral     PlaceKind = "places"
	PlaceKindAttractions PlaceKind = "attractions"
	PlaceKindDayTrips    PlaceKind = "day-trips"
)

// PlaceQuery asks for points of interest around a location.
type PlaceQuery struct {
	Location string
	Kind     PlaceKind
}

// Place is one point of interest.
type Place struct {
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Gateway exposes the five provider queries. Each call is independent; a
// failure in one provider never blocks the others.
type Gateway interface {
	Flights(ctx context.Context, q FlightQuery) ([]Flight, error)
	Hotels(ctx context.Context, q HotelQuery) ([]Hotel, error)
	Activities(ctx context.Context, q ActivityQuery) ([]Activity, error)
	Events(ctx context.Context, q EventQuery) ([]Event, error)
	Places(ctx context.Context, q PlaceQuery) ([]Place, error)
}
