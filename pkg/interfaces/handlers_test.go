package interfaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yair/localgeo/pkg/cache"
	"github.com/yair/localgeo/pkg/collectors"
	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/integrations"
	"github.com/yair/localgeo/pkg/itinerary"
	"github.com/yair/localgeo/pkg/observability"
	"github.com/yair/localgeo/pkg/search"
	"github.com/yair/localgeo/pkg/session"
)

type fetcherFunc func(ctx context.Context, query domain.Query) integrations.QueryResult

func (f fetcherFunc) Fetch(ctx context.Context, query domain.Query) integrations.QueryResult {
	return f(ctx, query)
}

// fakeBackend stands in for every backend API the handlers reach.
type fakeBackend struct {
	token       string
	posted      []domain.ItineraryUpdate
	placeQuery  domain.PlaceQuery
	artistQuery string
}

func (f *fakeBackend) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if creds.Password != "secret" {
		return "", &domain.APIError{StatusCode: 401, Message: "Invalid username or password"}
	}
	return f.token, nil
}

func (f *fakeBackend) Register(ctx context.Context, req domain.RegisterRequest) error { return nil }

func (f *fakeBackend) GetUser(ctx context.Context, token, userID string) (*domain.User, error) {
	return &domain.User{UserID: userID, Username: "ana", DisplayName: "Ana"}, nil
}

func (f *fakeBackend) GetItinerary(ctx context.Context, token string, query domain.Query) ([]domain.ItineraryMark, error) {
	return []domain.ItineraryMark{}, nil
}

func (f *fakeBackend) PostItinerary(ctx context.Context, token string, update domain.ItineraryUpdate) error {
	f.posted = append(f.posted, update)
	return nil
}

func (f *fakeBackend) GenerateItinerary(ctx context.Context, token string, events []domain.SelectedEvent) (*domain.AIItinerary, error) {
	return &domain.AIItinerary{ID: "it-1", DayPlans: []domain.DayPlan{}}, nil
}

func (f *fakeBackend) ListAIItineraries(ctx context.Context, token string) ([]domain.AIItinerary, error) {
	return []domain.AIItinerary{}, nil
}

func (f *fakeBackend) GetAIItinerary(ctx context.Context, token, id string) (*domain.AIItinerary, error) {
	return nil, &domain.APIError{StatusCode: 404}
}

func (f *fakeBackend) DeleteAIItinerary(ctx context.Context, token, id string) error { return nil }

func (f *fakeBackend) ListVoiceNotes(ctx context.Context, token string) ([]domain.VoiceNote, error) {
	return []domain.VoiceNote{}, nil
}

func (f *fakeBackend) UploadVoiceNote(ctx context.Context, token string, upload domain.VoiceNoteUpload) (*domain.VoiceNote, error) {
	return &domain.VoiceNote{ID: "n1"}, nil
}

func (f *fakeBackend) DeleteVoiceNote(ctx context.Context, token, id string) error { return nil }

func (f *fakeBackend) SearchArtistEvents(ctx context.Context, artistName string) ([]domain.RawEvent, error) {
	f.artistQuery = artistName
	return []domain.RawEvent{{ID: "a1", Venue: "V", Name: "N", StartDate: "2025-06-01"}}, nil
}

func (f *fakeBackend) Places(ctx context.Context, kind domain.PlaceKind, query domain.PlaceQuery) ([]domain.Place, error) {
	f.placeQuery = query
	return []domain.Place{{ID: "p1", Name: "Diner"}}, nil
}

type testApp struct {
	router  *mux.Router
	backend *fakeBackend
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zerolog.Nop()
	store := collectors.NewMemoryStore(1)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	backend := &fakeBackend{token: token}

	fetcher := fetcherFunc(func(ctx context.Context, q domain.Query) integrations.QueryResult {
		lat, lon := 30.1, -97.1
		return integrations.QueryResult{
			Events: []domain.RawEvent{
				{ID: "1", Venue: "Mohawk", Name: "Gig", StartDate: "2025-06-01T18:00:00", Latitude: &lat, Longitude: &lon, Artists: []string{"Band"}},
				{ID: "2", Venue: "Mohawk", Name: "Gig", StartDate: "2025-06-01T20:00:00"},
			},
			Center: domain.MapCenter{30.27, -97.74},
		}
	})

	eventCache := cache.NewEventCache(store, nil, nil, logger)
	controller := search.NewController(search.ControllerConfig{}, eventCache, fetcher, nil, logger)
	sessions := session.NewManager(backend, store, logger)
	saved := itinerary.NewSavedStore(store, logger)
	notifier := itinerary.NewNotifier(time.Minute)
	planner := itinerary.NewPlanner(backend, saved, sessions, notifier, logger)

	router := NewRouter(logger, nil, nil,
		NewExploreHandler(controller, search.NewExploreMemory(store, logger), planner, saved, notifier, logger),
		NewDiscoveryHandler(backend, logger),
		NewTravelHandler(saved, itinerary.NewAIPlanner(backend, saved, sessions, logger), itinerary.NewVoiceNotes(backend, sessions, logger)),
		NewSessionHandler(sessions, session.NewUIState(), planner, controller),
	)
	return &testApp{router: router, backend: backend}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (a *testApp) enterResults(t *testing.T) ExploreResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, a.do(t, "PUT", "/api/explore/input", `{"city":"Austin"}`).Code)
	require.Equal(t, http.StatusOK, a.do(t, "POST", "/api/explore/next", "").Code)
	require.Equal(t, http.StatusOK, a.do(t, "PUT", "/api/explore/input", `{"date":"2025-06-01"}`).Code)
	rr := a.do(t, "POST", "/api/explore/next", "")
	require.Equal(t, http.StatusOK, rr.Code)
	return decode[ExploreResponse](t, rr)
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	rr := a.do(t, "POST", "/api/session/login", `{"username":"ana","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestHealth(t *testing.T) {
	rr := newTestApp(t).do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestExploreHandler_Flow(t *testing.T) {
	t.Run("wizard reaches results", func(t *testing.T) {
		app := newTestApp(t)
		view := app.enterResults(t)

		assert.Equal(t, search.StepResults, view.Wizard.Step)
		require.Len(t, view.Events, 1)
		assert.Equal(t, []string{"2025-06-01T18:00:00", "2025-06-01T20:00:00"}, view.Events[0].AllStartTimes)
		assert.Equal(t, "2025-06-01T18:00:00", view.Events[0].StartDate)
		assert.Equal(t, "city=Austin&date=2025-06-01&step=3", view.URL)

		target := decode[map[string]any](t, app.do(t, "GET", "/api/explore/target", ""))
		assert.Equal(t, "3", target["step"])
		assert.Equal(t, true, target["reached"])

		reloaded := decode[ExploreResponse](t, app.do(t, "POST", "/api/explore/reload", ""))
		assert.Len(t, reloaded.Events, 1)
	})

	t.Run("missing city is rejected", func(t *testing.T) {
		rr := newTestApp(t).do(t, "POST", "/api/explore/next", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"city is required"}`, rr.Body.String())
	})

	t.Run("back from first step conflicts", func(t *testing.T) {
		rr := newTestApp(t).do(t, "POST", "/api/explore/back", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rr := newTestApp(t).do(t, "PUT", "/api/explore/input", "{")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("expand and cycle", func(t *testing.T) {
		app := newTestApp(t)
		app.enterResults(t)

		view := decode[ExploreResponse](t, app.do(t, "POST", "/api/explore/events/1/expand", ""))
		assert.Equal(t, "1", view.ExpandedID)
		assert.Equal(t, domain.MapCenter{30.1, -97.1}, view.MapCenter)

		assert.Equal(t, http.StatusNotFound, app.do(t, "POST", "/api/explore/events/nope/expand", "").Code)
		assert.Equal(t, http.StatusBadRequest, app.do(t, "POST", "/api/explore/events/1/image?dir=up", "").Code)
		assert.Equal(t, http.StatusOK, app.do(t, "POST", "/api/explore/events/1/image?dir=prev", "").Code)
	})

	t.Run("artist filter and reset", func(t *testing.T) {
		app := newTestApp(t)
		app.enterResults(t)

		view := decode[ExploreResponse](t, app.do(t, "PUT", "/api/explore/artist", `{"artist":"nobody"}`))
		assert.Empty(t, view.Events)
		assert.Equal(t, []string{"Band"}, view.AvailableArtists)

		view = decode[ExploreResponse](t, app.do(t, "POST", "/api/explore/reset", ""))
		assert.Equal(t, search.StepCity, view.Wizard.Step)
		assert.Empty(t, view.ArtistFilter)
	})
}

func TestExploreHandler_Itinerary(t *testing.T) {
	t.Run("marking needs a session", func(t *testing.T) {
		app := newTestApp(t)
		app.enterResults(t)

		rr := app.do(t, "POST", "/api/itinerary/1", `{"status":"going"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, app.backend.posted)
	})

	t.Run("marking with a session", func(t *testing.T) {
		app := newTestApp(t)
		app.enterResults(t)
		app.login(t)

		rr := app.do(t, "POST", "/api/itinerary/1", `{"status":"going"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		view := decode[ExploreResponse](t, rr)
		assert.Equal(t, domain.StatusGoing, view.Statuses["1"])
		require.NotNil(t, view.Notification)
		assert.Equal(t, "Marked as 'Going'!", view.Notification.Message)
		require.Len(t, app.backend.posted, 1)
		assert.Equal(t, domain.ItineraryUpdate{EventID: "1", City: "Austin", Date: "2025-06-01", Status: domain.StatusGoing}, app.backend.posted[0])
	})

	t.Run("toggle save", func(t *testing.T) {
		app := newTestApp(t)
		app.enterResults(t)

		assert.Equal(t, http.StatusNotFound, app.do(t, "POST", "/api/saved/nope/toggle", "").Code)

		res := decode[map[string]any](t, app.do(t, "POST", "/api/saved/1/toggle", ""))
		assert.Equal(t, true, res["saved"])

		list := decode[struct {
			Events []domain.SavedEvent `json:"events"`
		}](t, app.do(t, "GET", "/api/saved", ""))
		require.Len(t, list.Events, 1)
		assert.Equal(t, "Gig", list.Events[0].Name)

		app.do(t, "POST", "/api/explore/reset", "")
		res = decode[map[string]any](t, app.do(t, "POST", "/api/saved/1/toggle", ""))
		assert.Equal(t, false, res["saved"], "saved events can be removed off screen")
	})
}

func TestDiscoveryHandler(t *testing.T) {
	t.Run("city suggestions", func(t *testing.T) {
		res := decode[map[string][]string](t, newTestApp(t).do(t, "GET", "/api/cities?q=san%20d", ""))
		assert.Equal(t, []string{"San Diego"}, res["cities"])
	})

	t.Run("places query passthrough", func(t *testing.T) {
		app := newTestApp(t)
		rr := app.do(t, "GET", "/api/places/restaurants?latitude=40.7", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, app.backend.placeQuery.Location, "location default belongs to the backend client")
		assert.Nil(t, app.backend.placeQuery.Latitude)

		app.do(t, "GET", "/api/places/attractions?location=Austin&latitude=30.2&longitude=-97.7", "")
		assert.Equal(t, "Austin", app.backend.placeQuery.Location)
		require.NotNil(t, app.backend.placeQuery.Longitude)
		assert.Equal(t, -97.7, *app.backend.placeQuery.Longitude)

		assert.Equal(t, http.StatusNotFound, app.do(t, "GET", "/api/places/museums", "").Code)
	})

	t.Run("artist events", func(t *testing.T) {
		app := newTestApp(t)
		assert.Equal(t, http.StatusBadRequest, app.do(t, "GET", "/api/artists/events", "").Code)

		rr := app.do(t, "GET", "/api/artists/events?name=Band", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Band", app.backend.artistQuery)
	})
}

func TestTravelHandler(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, "GET", "/api/ai/itineraries", "").Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, "GET", "/api/voice-notes", "").Code)

	app.login(t)
	assert.Equal(t, http.StatusBadRequest, app.do(t, "POST", "/api/ai/itineraries", "").Code, "nothing saved yet")
	assert.Equal(t, http.StatusNotFound, app.do(t, "GET", "/api/ai/itineraries/missing", "").Code)
	assert.Equal(t, http.StatusNoContent, app.do(t, "DELETE", "/api/ai/itineraries/it-1", "").Code)
	assert.Equal(t, http.StatusOK, app.do(t, "GET", "/api/voice-notes", "").Code)
	assert.Equal(t, http.StatusNoContent, app.do(t, "DELETE", "/api/voice-notes/n1", "").Code)

	app.enterResults(t)
	app.do(t, "POST", "/api/saved/1/toggle", "")
	assert.Equal(t, http.StatusCreated, app.do(t, "POST", "/api/ai/itineraries", "").Code)
}

func TestSessionHandler(t *testing.T) {
	t.Run("login lifecycle", func(t *testing.T) {
		app := newTestApp(t)

		res := decode[sessionResponse](t, app.do(t, "GET", "/api/session", ""))
		assert.False(t, res.Authenticated)

		rr := app.do(t, "POST", "/api/session/login", `{"username":"ana","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"Invalid username or password"}`, rr.Body.String())

		assert.Equal(t, http.StatusBadRequest, app.do(t, "POST", "/api/session/login", `{"username":"ana"}`).Code)

		app.login(t)
		res = decode[sessionResponse](t, app.do(t, "GET", "/api/session", ""))
		require.True(t, res.Authenticated)
		assert.Equal(t, "Ana", res.User.DisplayName)

		res = decode[sessionResponse](t, app.do(t, "POST", "/api/session/logout", ""))
		assert.False(t, res.Authenticated)
	})

	t.Run("register", func(t *testing.T) {
		app := newTestApp(t)
		assert.Equal(t, http.StatusCreated, app.do(t, "POST", "/api/session/register", `{"username":"ana","password":"secret1","displayName":"Ana"}`).Code)
		assert.Equal(t, http.StatusBadRequest, app.do(t, "POST", "/api/session/register", `{"username":"a"}`).Code)
	})

	t.Run("section", func(t *testing.T) {
		app := newTestApp(t)
		assert.JSONEq(t, `{"section":"explore"}`, app.do(t, "GET", "/api/ui/section", "").Body.String())
		assert.Equal(t, http.StatusOK, app.do(t, "PUT", "/api/ui/section", `{"section":"mytravel"}`).Code)
		assert.Equal(t, http.StatusBadRequest, app.do(t, "PUT", "/api/ui/section", `{"section":"other"}`).Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsProvider(true, reg)
	router := NewRouter(zerolog.Nop(), metrics, reg, NewDiscoveryHandler(&fakeBackend{}, zerolog.Nop()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/cities?q=a", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `localgeo_requests_total{endpoint="/api/cities"`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ValidationError{Field: "x", Message: "y"}, http.StatusBadRequest},
		{domain.ErrAuthRequired, http.StatusUnauthorized},
		{&domain.APIError{StatusCode: 403}, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{&domain.APIError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
		{domain.ErrNetworkFailure, http.StatusBadGateway},
		{domain.ErrStorageFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
