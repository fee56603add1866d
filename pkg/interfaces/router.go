package interfaces

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/observability"
)

type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter mounts every handler plus /health, and /metrics when gatherer is non-nil.
func NewRouter(logger zerolog.Logger, metrics observability.MetricsProviderInterface, gatherer prometheus.Gatherer, handlers ...RouteRegistrar) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger), MetricsMiddleware(metrics))

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	return router
}
