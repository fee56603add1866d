package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/observability"
)

type NominatimConfig struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
}

// NominatimGeocoder resolves a city name to coordinates via the OSM search endpoint.
type NominatimGeocoder struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rateLimiter
	metrics     observability.MetricsProviderInterface
	logger      zerolog.Logger
}

func NewNominatimGeocoder(config NominatimConfig, metrics observability.MetricsProviderInterface, logger zerolog.Logger) (*NominatimGeocoder, error) {
	if config.UserAgent == "" {
		return nil, fmt.Errorf("nominatim user agent is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}

	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: newRateLimiter(0, time.Hour, config.MinInterval),
		metrics:     metrics,
		logger:      logger,
	}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, city string) (domain.MapCenter, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return domain.MapCenter{}, domain.ValidationError{Field: "city", Message: "city is required"}
	}

	if err := g.rateLimiter.Wait(ctx); err != nil {
		return domain.MapCenter{}, err
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", city)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.MapCenter{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	g.metrics.ObserveBackendDuration("geocode", time.Since(start))
	if err != nil {
		g.metrics.IncBackendRequests("geocode", 0)
		return domain.MapCenter{}, fmt.Errorf("geocode %q: %w: %v", city, domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	g.metrics.IncBackendRequests("geocode", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return domain.MapCenter{}, fmt.Errorf("geocode %q: %w", city, readAPIError(resp))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.MapCenter{}, fmt.Errorf("failed to decode geocode response: %w: %v", domain.ErrDecodeFailure, err)
	}
	if len(places) == 0 {
		return domain.MapCenter{}, fmt.Errorf("geocode %q: %w", city, domain.ErrNotFound)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.MapCenter{}, fmt.Errorf("geocode %q returned invalid coordinates: %w", city, domain.ErrDecodeFailure)
	}

	g.logger.Debug().Str("city", city).Str("match", places[0].DisplayName).Msg("geocoded city")
	return domain.MapCenter{lat, lon}, nil
}
