package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voyago/voyago/internal/travel"
)

// RegisterTravelRoutes mounts the session-free gateway pass-through
// endpoints.
func (h *Handler) RegisterTravelRoutes(r chi.Router) {
	r.Get("/events/{destination}", h.Events)
	r.Get("/places/{location}", h.Places)
	r.Get("/attractions/{location}", h.Attractions)
	r.Get("/day-trips/{origin}", h.DayTrips)
}

// Events returns events at a destination.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	destination := chi.URLParam(r, "destination")

	events, err := h.gateway.Events(r.Context(), travel.EventQuery{Destination: destination})
	if err != nil {
		writeProviderError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"destination": destination, "events": events})
}

// Places returns points of interest around a location.
func (h *Handler) Places(w http.ResponseWriter, r *http.Request) {
	h.placesByKind(w, r, chi.URLParam(r, "location"), travel.PlaceKindGeneral)
}

// Attractions returns top attractions at a location.
func (h *Handler) Attractions(w http.ResponseWriter, r *http.Request) {
	h.placesByKind(w, r, chi.URLParam(r, "location"), travel.PlaceKindAttractions)
}

// DayTrips returns day-trip destinations reachable from an origin.
func (h *Handler) DayTrips(w http.ResponseWriter, r *http.Request) {
	h.placesByKind(w, r, chi.URLParam(r, "origin"), travel.PlaceKindDayTrips)
}

func (h *Handler) placesByKind(w http.ResponseWriter, r *http.Request, location string, kind travel.PlaceKind) {
	places, err := h.gateway.Places(r.Context(), travel.PlaceQuery{Location: location, Kind: kind})
	if err != nil {
		writeProviderError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"location": location, "kind": kind, "places": places})
}

func writeProviderError(w http.ResponseWriter, err error) {
	var provErr *travel.ProviderError
	if errors.As(err, &provErr) {
		slog.Warn("Provider pass-through failed", "provider", provErr.Provider, "timeout", provErr.Timeout, "error", err)
		Error(w, http.StatusBadGateway, "provider "+provErr.Provider+" unavailable")
		return
	}
	slog.Error("Provider pass-through failed", "error", err)
	Error(w, http.StatusBadGateway, "travel data unavailable")
}
