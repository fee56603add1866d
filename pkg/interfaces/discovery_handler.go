package interfaces

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/search"
)

// DiscoveryHandler serves lookups that do not touch explore state.
type DiscoveryHandler struct {
	api    domain.DiscoveryAPI
	logger zerolog.Logger
}

func NewDiscoveryHandler(api domain.DiscoveryAPI, logger zerolog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{api: api, logger: logger}
}

func (h *DiscoveryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cities", h.SuggestCities).Methods("GET")
	router.HandleFunc("/api/places/{kind}", h.Places).Methods("GET")
	router.HandleFunc("/api/artists/events", h.ArtistEvents).Methods("GET")
}

func (h *DiscoveryHandler) SuggestCities(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{
		"cities": search.SuggestCities(r.URL.Query().Get("q")),
	})
}

func (h *DiscoveryHandler) Places(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	kind := domain.PlaceKind(mux.Vars(r)["kind"])
	if kind != domain.PlaceRestaurants && kind != domain.PlaceAttractions {
		respondWithError(w, http.StatusNotFound, "unknown place kind")
		return
	}

	params := r.URL.Query()
	// an empty location falls back to the client default
	query := domain.PlaceQuery{Location: params.Get("location")}

	// coordinates are only sent as a pair
	lat, latErr := strconv.ParseFloat(params.Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(params.Get("longitude"), 64)
	if latErr == nil && lonErr == nil && lat != 0 && lon != 0 {
		query.Latitude, query.Longitude = &lat, &lon
	}

	places, err := h.api.Places(ctx, kind, query)
	if err != nil {
		h.logger.Error().Err(err).Str("kind", string(kind)).Str("location", query.Location).Msg("error fetching places")
		respondWithDomainError(w, err, "Failed to load "+string(kind))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"kind": kind, "places": places})
}

func (h *DiscoveryHandler) ArtistEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter 'name' is required")
		return
	}

	events, err := h.api.SearchArtistEvents(ctx, name)
	if err != nil {
		h.logger.Error().Err(err).Str("artist", name).Msg("error searching artist events")
		respondWithDomainError(w, err, "Failed to search for artist events")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"artist": name,
		"events": search.GroupEvents(events),
	})
}
