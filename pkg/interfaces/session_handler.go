package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/itinerary"
	"github.com/yair/localgeo/pkg/search"
	"github.com/yair/localgeo/pkg/session"
)

type SessionHandler struct {
	sessions   *session.Manager
	ui         *session.UIState
	planner    *itinerary.Planner
	controller *search.Controller
}

func NewSessionHandler(sessions *session.Manager, ui *session.UIState, planner *itinerary.Planner, controller *search.Controller) *SessionHandler {
	return &SessionHandler{sessions: sessions, ui: ui, planner: planner, controller: controller}
}

func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/session", h.Current).Methods("GET")
	router.HandleFunc("/api/session/login", h.Login).Methods("POST")
	router.HandleFunc("/api/session/register", h.Register).Methods("POST")
	router.HandleFunc("/api/session/logout", h.Logout).Methods("POST")
	router.HandleFunc("/api/ui/section", h.GetSection).Methods("GET")
	router.HandleFunc("/api/ui/section", h.SetSection).Methods("PUT")
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.respondWithSession(w, http.StatusOK)
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		respondWithDomainError(w, err, "invalid credentials")
		return
	}

	if _, err := h.sessions.Login(ctx, creds.Username, creds.Password); err != nil {
		respondWithDomainError(w, err, "Login failed. Please try again.")
		return
	}

	if wiz := h.controller.Wizard(); wiz.Step == search.StepResults {
		h.planner.LoadMarks(ctx, wiz.Committed)
	}
	h.respondWithSession(w, http.StatusOK)
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req domain.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithDomainError(w, err, "invalid registration")
		return
	}

	if err := h.sessions.Register(ctx, req); err != nil {
		respondWithDomainError(w, err, "Registration failed. Please try again.")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	h.planner.ClearMarks()
	h.respondWithSession(w, http.StatusOK)
}

func (h *SessionHandler) respondWithSession(w http.ResponseWriter, code int) {
	resp := sessionResponse{}
	if current, ok := h.sessions.Current(); ok {
		resp.Authenticated = true
		resp.User = &current.User
	}
	respondWithJSON(w, code, resp)
}

type sectionRequest struct {
	Section session.Section `json:"section"`
}

func (h *SessionHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, sectionRequest{Section: h.ui.Section()})
}

func (h *SessionHandler) SetSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithDomainError(w, err, "invalid section")
		return
	}
	if err := h.ui.SetSection(req.Section); err != nil {
		respondWithDomainError(w, err, "invalid section")
		return
	}
	respondWithJSON(w, http.StatusOK, req)
}
