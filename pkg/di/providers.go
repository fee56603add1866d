package di

import (
	"context"

	"github.com/google/wire"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/cache"
	"github.com/yair/localgeo/pkg/collectors"
	"github.com/yair/localgeo/pkg/config"
	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/integrations"
	"github.com/yair/localgeo/pkg/interfaces"
	"github.com/yair/localgeo/pkg/itinerary"
	"github.com/yair/localgeo/pkg/observability"
	"github.com/yair/localgeo/pkg/search"
	"github.com/yair/localgeo/pkg/session"
)

// BackendSet binds every backend-facing interface to the one REST client.
var BackendSet = wire.NewSet(
	provideBackend,
	wire.Bind(new(domain.EventSource), new(*integrations.BackendClient)),
	wire.Bind(new(domain.AuthAPI), new(*integrations.BackendClient)),
	wire.Bind(new(domain.ItineraryAPI), new(*integrations.BackendClient)),
	wire.Bind(new(domain.AIItineraryAPI), new(*integrations.BackendClient)),
	wire.Bind(new(domain.VoiceNoteAPI), new(*integrations.BackendClient)),
	wire.Bind(new(domain.DiscoveryAPI), new(*integrations.BackendClient)),
)

var SearchSet = wire.NewSet(
	provideGeocoder,
	wire.Bind(new(domain.Geocoder), new(*integrations.NominatimGeocoder)),
	integrations.NewQueryAggregator,
	wire.Bind(new(search.Fetcher), new(*integrations.QueryAggregator)),
	provideCodec,
	cache.NewEventCache,
	wire.Bind(new(search.EventCache), new(*cache.EventCache)),
	provideControllerConfig,
	search.NewController,
	search.NewExploreMemory,
)

var TravelSet = wire.NewSet(
	session.NewManager,
	session.NewUIState,
	wire.Bind(new(itinerary.TokenSource), new(*session.Manager)),
	itinerary.NewSavedStore,
	provideNotifier,
	itinerary.NewPlanner,
	itinerary.NewAIPlanner,
	itinerary.NewVoiceNotes,
)

var HTTPSet = wire.NewSet(
	interfaces.NewExploreHandler,
	interfaces.NewDiscoveryHandler,
	interfaces.NewTravelHandler,
	interfaces.NewSessionHandler,
	provideRouter,
)

func provideStore(cfg *config.Config) (collectors.Store, func(), error) {
	store, err := collectors.NewStore(context.Background(), cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func provideKeyValueStore(store collectors.Store) domain.KeyValueStore {
	return store
}

func provideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func provideMetrics(cfg *config.Config, reg *prometheus.Registry) observability.MetricsProviderInterface {
	return observability.NewMetricsProvider(cfg.Metrics.Enabled, reg)
}

func provideCodec(cfg *config.Config) (cache.Codec, error) {
	return cache.NewCodec(cfg.Cache.Compress)
}

func provideBackend(cfg *config.Config, metrics observability.MetricsProviderInterface, logger zerolog.Logger) (*integrations.BackendClient, error) {
	return integrations.NewBackendClient(integrations.BackendConfig{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, metrics, logger.With().Str("component", "backend").Logger())
}

func provideGeocoder(cfg *config.Config, metrics observability.MetricsProviderInterface, logger zerolog.Logger) (*integrations.NominatimGeocoder, error) {
	return integrations.NewNominatimGeocoder(integrations.NominatimConfig{
		BaseURL:     cfg.Geocoder.BaseURL,
		UserAgent:   cfg.Geocoder.UserAgent,
		MinInterval: cfg.Geocoder.MinInterval,
		Timeout:     cfg.Backend.Timeout,
	}, metrics, logger.With().Str("component", "geocoder").Logger())
}

func provideControllerConfig(cfg *config.Config) search.ControllerConfig {
	center := domain.DefaultMapCenter
	if cfg.Search.DefaultLatitude != 0 && cfg.Search.DefaultLongitude != 0 {
		center = domain.MapCenter{cfg.Search.DefaultLatitude, cfg.Search.DefaultLongitude}
	}
	return search.ControllerConfig{PageSize: cfg.Search.PageSize, DefaultCenter: center}
}

func provideNotifier(cfg *config.Config) *itinerary.Notifier {
	return itinerary.NewNotifier(cfg.Itinerary.NotificationTTL)
}

func provideRouter(
	cfg *config.Config,
	logger zerolog.Logger,
	metrics observability.MetricsProviderInterface,
	reg *prometheus.Registry,
	explore *interfaces.ExploreHandler,
	discovery *interfaces.DiscoveryHandler,
	travel *interfaces.TravelHandler,
	sessions *interfaces.SessionHandler,
) *mux.Router {
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = reg
	}
	return interfaces.NewRouter(logger, metrics, gatherer, explore, discovery, travel, sessions)
}
