package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/config"
	"github.com/yair/localgeo/pkg/itinerary"
	"github.com/yair/localgeo/pkg/search"
	"github.com/yair/localgeo/pkg/session"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     *mux.Router
	controller *search.Controller
	memory     *search.ExploreMemory
	sessions   *session.Manager
	saved      *itinerary.SavedStore
	planner    *itinerary.Planner
}

func NewApp(
	cfg *config.Config,
	logger zerolog.Logger,
	router *mux.Router,
	controller *search.Controller,
	memory *search.ExploreMemory,
	sessions *session.Manager,
	saved *itinerary.SavedStore,
	planner *itinerary.Planner,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		router:     router,
		controller: controller,
		memory:     memory,
		sessions:   sessions,
		saved:      saved,
		planner:    planner,
	}
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Bootstrap restores persisted state and the explore flow encoded in initial.
// A failed restore still leaves a usable app.
func (a *App) Bootstrap(ctx context.Context, initial url.Values) {
	if s, ok := a.sessions.Bootstrap(ctx); ok {
		a.logger.Info().Str("user_id", s.User.UserID).Str("display_name", s.User.DisplayName).Msg("session restored")
	}
	a.saved.Load(ctx)
	a.memory.Load(ctx)

	wizard := search.DecodeURL(initial)
	if err := a.controller.Restore(ctx, wizard); err != nil {
		// Log error but continue
		a.logger.Warn().Err(err).Str("city", wizard.Committed.City).Msg("failed to restore search")
	}
	if wizard.Step == search.StepResults {
		a.planner.LoadMarks(ctx, wizard.Committed)
	}
	a.memory.Observe(ctx, search.EncodeURL(a.controller.Wizard()))
}

// Run serves the local API until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	a.router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		path, _ := route.GetPathTemplate()
		methods, _ := route.GetMethods()
		a.logger.Debug().Strs("methods", methods).Str("path", path).Msg("route")
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
