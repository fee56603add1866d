package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yair/localgeo/pkg/config"
	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/interfaces"
)

func testConfig(backendURL, geocoderURL string) *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Backend:   config.BackendConfig{BaseURL: backendURL, Timeout: time.Second},
		Geocoder:  config.GeocoderConfig{BaseURL: geocoderURL, UserAgent: "LocalGeo/test"},
		Store:     config.StoreConfig{Driver: "memory", MemorySizeMB: 1},
		Cache:     config.CacheConfig{Compress: true},
		Search:    config.SearchConfig{PageSize: 15},
		Itinerary: config.ItineraryConfig{NotificationTTL: time.Second},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
}

func TestInitApp_RestoresSearchFromURL(t *testing.T) {
	var backendCalls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "Austin", r.URL.Query().Get("city"))
		backendCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1","name":"Gig","venue":"Mohawk","startDate":"2025-06-01T20:00:00"}]`))
	}))
	defer backend.Close()

	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer geocoder.Close()

	app, cleanup, err := InitApp(testConfig(backend.URL, geocoder.URL), zerolog.Nop())
	require.NoError(t, err)
	defer cleanup()

	app.Bootstrap(context.Background(), url.Values{"step": {"3"}, "city": {"Austin"}, "date": {"2025-06-01"}})
	assert.Equal(t, int32(1), backendCalls.Load())

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/api/explore", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var view interfaces.ExploreResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Len(t, view.Events, 1)
	assert.Equal(t, domain.DefaultMapCenter, view.MapCenter, "empty geocode falls back to the default center")

	rr = httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "localgeo_geocode_fallbacks_total")
}

func TestInitApp_InvalidBackend(t *testing.T) {
	cfg := testConfig("", "http://localhost")
	_, _, err := InitApp(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestProvideControllerConfig(t *testing.T) {
	cfg := testConfig("http://b", "http://g")
	assert.Equal(t, domain.DefaultMapCenter, provideControllerConfig(cfg).DefaultCenter)

	cfg.Search.DefaultLatitude, cfg.Search.DefaultLongitude = 51.5, -0.12
	assert.Equal(t, domain.MapCenter{51.5, -0.12}, provideControllerConfig(cfg).DefaultCenter)
}
