package interfaces

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/itinerary"
	"github.com/yair/localgeo/pkg/search"
)

const resolveTimeout = 30 * time.Second

// ExploreResponse is the explore view model plus the user's annotations on it.
type ExploreResponse struct {
	search.View
	URL          string                   `json:"url"`
	Statuses     map[string]domain.Status `json:"statuses"`
	SavedIDs     []string                 `json:"savedIds"`
	Notification *itinerary.Notification  `json:"notification,omitempty"`
}

type ExploreHandler struct {
	controller *search.Controller
	memory     *search.ExploreMemory
	planner    *itinerary.Planner
	saved      *itinerary.SavedStore
	notifier   *itinerary.Notifier
	logger     zerolog.Logger
}

func NewExploreHandler(controller *search.Controller, memory *search.ExploreMemory, planner *itinerary.Planner, saved *itinerary.SavedStore, notifier *itinerary.Notifier, logger zerolog.Logger) *ExploreHandler {
	return &ExploreHandler{
		controller: controller,
		memory:     memory,
		planner:    planner,
		saved:      saved,
		notifier:   notifier,
		logger:     logger,
	}
}

func (h *ExploreHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/explore", h.GetView).Methods("GET")
	router.HandleFunc("/api/explore/target", h.GetTarget).Methods("GET")
	router.HandleFunc("/api/explore/input", h.SetInput).Methods("PUT")
	router.HandleFunc("/api/explore/next", h.Next).Methods("POST")
	router.HandleFunc("/api/explore/back", h.Back).Methods("POST")
	router.HandleFunc("/api/explore/reset", h.Reset).Methods("POST")
	router.HandleFunc("/api/explore/search", h.Search).Methods("POST")
	router.HandleFunc("/api/explore/reload", h.Reload).Methods("POST")
	router.HandleFunc("/api/explore/page", h.SetPage).Methods("PUT")
	router.HandleFunc("/api/explore/artist", h.SetArtist).Methods("PUT")
	router.HandleFunc("/api/explore/events/{id}/expand", h.ToggleExpand).Methods("POST")
	router.HandleFunc("/api/explore/events/{id}/image", h.CycleImage).Methods("POST")
	router.HandleFunc("/api/itinerary/{id}", h.MarkEvent).Methods("POST")
	router.HandleFunc("/api/saved/{id}/toggle", h.ToggleSave).Methods("POST")
}

func (h *ExploreHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.respondWithView(w, http.StatusOK)
}

func (h *ExploreHandler) GetTarget(w http.ResponseWriter, r *http.Request) {
	target := h.memory.Target()
	respondWithJSON(w, http.StatusOK, map[string]any{
		"step":    target.Get("step"),
		"city":    target.Get("city"),
		"date":    target.Get("date"),
		"url":     target.Encode(),
		"reached": h.memory.Reached(),
	})
}

type inputRequest struct {
	City *string `json:"city"`
	Date *string `json:"date"`
}

func (h *ExploreHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithDomainError(w, err, "invalid input")
		return
	}

	if req.City != nil {
		h.controller.SetCity(*req.City)
	}
	if req.Date != nil {
		h.controller.SetDate(*req.Date)
	}
	h.observe(r.Context())
	h.respondWithView(w, http.StatusOK)
}

func (h *ExploreHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	before := h.controller.Wizard().Step
	err := h.controller.Next(ctx)
	if before == search.StepDate && h.controller.Wizard().Step == search.StepResults {
		h.planner.LoadMarks(ctx, h.controller.Wizard().Committed)
	}
	h.afterTransition(w, r, err)
}

func (h *ExploreHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.afterTransition(w, r, h.controller.Back())
}

func (h *ExploreHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	h.planner.ClearMarks()
	h.notifier.Clear()
	h.afterTransition(w, r, nil)
}

func (h *ExploreHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	err := h.controller.Submit(ctx)
	if err == nil {
		h.planner.LoadMarks(ctx, h.controller.Wizard().Committed)
	}
	h.afterTransition(w, r, err)
}

func (h *ExploreHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	err := h.controller.Reload(ctx)
	if err == nil {
		h.planner.LoadMarks(ctx, h.controller.Wizard().Committed)
	}
	h.afterTransition(w, r, err)
}

// afterTransition persists explore progress and answers with the view. Resolve
// failures are already part of the view, so only rejected transitions are errors.
func (h *ExploreHandler) afterTransition(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidTransition):
			respondWithDomainError(w, err, "invalid request")
			return
		case errors.Is(err, domain.ErrStaleResult):
			h.logger.Debug().Msg("superseded by a newer search")
		default:
			h.logger.Warn().Err(err).Msg("search failed")
		}
	}

	h.observe(r.Context())
	h.respondWithView(w, http.StatusOK)
}

type pageRequest struct {
	Page int `json:"page"`
}

func (h *ExploreHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithDomainError(w, err, "invalid page")
		return
	}
	h.controller.SetPage(req.Page)
	h.respondWithView(w, http.StatusOK)
}

type artistRequest struct {
	Artist string `json:"artist"`
}

func (h *ExploreHandler) SetArtist(w http.ResponseWriter, r *http.Request) {
	var req artistRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithDomainError(w, err, "invalid artist filter")
		return
	}
	h.controller.SetArtistFilter(req.Artist)
	h.respondWithView(w, http.StatusOK)
}

func (h *ExploreHandler) ToggleExpand(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.ToggleExpand(mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, err, "event not found")
		return
	}
	h.respondWithView(w, http.StatusOK)
}

func (h *ExploreHandler) CycleImage(w http.ResponseWriter, r *http.Request) {
	dir := search.Direction(r.URL.Query().Get("dir"))
	if dir == "" {
		dir = search.DirectionNext
	}
	if _, err := h.controller.CycleImage(mux.Vars(r)["id"], dir); err != nil {
		respondWithDomainError(w, err, "cannot change image")
		return
	}
	h.respondWithView(w, http.StatusOK)
}

type markRequest struct {
	Status domain.Status `json:"status"`
}

func (h *ExploreHandler) MarkEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	var req markRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithDomainError(w, err, "invalid status")
		return
	}

	query := h.controller.Wizard().Committed
	if err := h.planner.MarkEvent(ctx, query, mux.Vars(r)["id"], req.Status); err != nil {
		respondWithDomainError(w, err, itinerary.UpdateFailedMessage)
		return
	}
	h.respondWithView(w, http.StatusOK)
}

func (h *ExploreHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	id := mux.Vars(r)["id"]
	event, ok := h.controller.Event(id)
	if !ok {
		if !h.saved.Contains(id) {
			respondWithError(w, http.StatusNotFound, "event not found")
			return
		}
		// unsaving something no longer on screen only needs the id
		event = domain.MergedEvent{RawEvent: domain.RawEvent{ID: id}}
	}

	saved, err := h.planner.ToggleSave(ctx, h.controller.Wizard().Committed, event)
	if err != nil {
		respondWithDomainError(w, err, "failed to update saved events")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"id": id, "saved": saved})
}

func (h *ExploreHandler) observe(ctx context.Context) {
	h.memory.Observe(ctx, search.EncodeURL(h.controller.Wizard()))
}

func (h *ExploreHandler) respondWithView(w http.ResponseWriter, code int) {
	view := h.controller.View()

	saved := h.saved.Get()
	ids := make([]string, 0, len(saved))
	for _, e := range saved {
		ids = append(ids, e.ID)
	}

	resp := ExploreResponse{
		View:     view,
		URL:      search.EncodeURL(view.Wizard).Encode(),
		Statuses: h.planner.Marks(),
		SavedIDs: ids,
	}
	if note, ok := h.notifier.Current(); ok {
		resp.Notification = &note
	}
	respondWithJSON(w, code, resp)
}
