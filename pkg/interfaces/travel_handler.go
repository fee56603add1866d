package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/yair/localgeo/pkg/itinerary"
)

// TravelHandler serves the my-travel section: saved events, AI itineraries and voice notes.
type TravelHandler struct {
	saved *itinerary.SavedStore
	ai    *itinerary.AIPlanner
	voice *itinerary.VoiceNotes
}

func NewTravelHandler(saved *itinerary.SavedStore, ai *itinerary.AIPlanner, voice *itinerary.VoiceNotes) *TravelHandler {
	return &TravelHandler{saved: saved, ai: ai, voice: voice}
}

func (h *TravelHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/saved", h.ListSaved).Methods("GET")
	router.HandleFunc("/api/ai/itineraries", h.GenerateItinerary).Methods("POST")
	router.HandleFunc("/api/ai/itineraries", h.ListItineraries).Methods("GET")
	router.HandleFunc("/api/ai/itineraries/{id}", h.GetItinerary).Methods("GET")
	router.HandleFunc("/api/ai/itineraries/{id}", h.DeleteItinerary).Methods("DELETE")
	router.HandleFunc("/api/voice-notes", h.ListVoiceNotes).Methods("GET")
	router.HandleFunc("/api/voice-notes/{id}", h.DeleteVoiceNote).Methods("DELETE")
}

func (h *TravelHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{"events": h.saved.Get()})
}

func (h *TravelHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	// generation runs a language model on the backend
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	it, err := h.ai.Generate(ctx)
	if err != nil {
		respondWithDomainError(w, err, "Failed to generate itinerary")
		return
	}
	respondWithJSON(w, http.StatusCreated, it)
}

func (h *TravelHandler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	list, err := h.ai.List(ctx)
	if err != nil {
		respondWithDomainError(w, err, "Failed to fetch itineraries")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"itineraries": list})
}

func (h *TravelHandler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	it, err := h.ai.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err, "Failed to fetch itinerary")
		return
	}
	respondWithJSON(w, http.StatusOK, it)
}

func (h *TravelHandler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.ai.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, err, "Failed to delete itinerary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TravelHandler) ListVoiceNotes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	notes, err := h.voice.List(ctx)
	if err != nil {
		respondWithDomainError(w, err, "Failed to fetch voice notes")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"voiceNotes": notes})
}

func (h *TravelHandler) DeleteVoiceNote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.voice.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, err, "Failed to delete voice note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
