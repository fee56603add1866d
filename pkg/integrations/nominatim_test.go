package integrations

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yair/localgeo/pkg/domain"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *NominatimGeocoder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	geocoder, err := NewNominatimGeocoder(NominatimConfig{BaseURL: server.URL, UserAgent: "localgeo-test"}, nil, zerolog.Nop())
	require.NoError(t, err)
	return geocoder
}

func TestNewNominatimGeocoder(t *testing.T) {
	_, err := NewNominatimGeocoder(NominatimConfig{}, nil, zerolog.Nop())
	assert.Error(t, err, "user agent is required by the usage policy")
}

func TestNominatimGeocoder_Geocode(t *testing.T) {
	t.Run("parses first match", func(t *testing.T) {
		geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "Austin", r.URL.Query().Get("q"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "localgeo-test", r.Header.Get("User-Agent"))
			io.WriteString(w, `[{"lat":"30.2711286","lon":"-97.7436995","display_name":"Austin, Texas"}]`)
		})

		center, err := geocoder.Geocode(context.Background(), "Austin")
		require.NoError(t, err)
		assert.InDelta(t, 30.2711286, center.Lat(), 1e-9)
		assert.InDelta(t, -97.7436995, center.Lon(), 1e-9)
	})

	t.Run("no match", func(t *testing.T) {
		geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[]`)
		})

		_, err := geocoder.Geocode(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"lat":"north","lon":"-97.7"}]`)
		})

		_, err := geocoder.Geocode(context.Background(), "Austin")
		assert.ErrorIs(t, err, domain.ErrDecodeFailure)
	})

	t.Run("server error", func(t *testing.T) {
		geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := geocoder.Geocode(context.Background(), "Austin")
		var apiErr *domain.APIError
		assert.ErrorAs(t, err, &apiErr)
	})

	t.Run("empty city", func(t *testing.T) {
		geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := geocoder.Geocode(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
