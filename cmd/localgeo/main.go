package main

import (
	"context"
	"flag"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/yair/localgeo/pkg/config"
	"github.com/yair/localgeo/pkg/di"
	"github.com/yair/localgeo/pkg/observability"
)

const serviceName = "localgeo"

func main() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}

	configPath := flag.String("config", defaultConfig, "path to the configuration file")
	initialURL := flag.String("url", "", "initial explore query, e.g. step=3&city=Austin&date=2025-06-01")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}

	logger := observability.InitLogger(serviceName, cfg.Logger.Env, cfg.Logger.Level)
	logger.Info().Str("store", cfg.Store.Driver).Str("backend", cfg.Backend.BaseURL).Msg("starting localgeo")

	app, cleanup, err := di.InitApp(cfg, observability.Component("app"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer cleanup()

	initial, err := parseInitialURL(*initialURL)
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring malformed initial url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	app.Bootstrap(bootCtx, initial)
	cancel()

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}

// parseInitialURL accepts either a bare query string or a full URL.
func parseInitialURL(raw string) (url.Values, error) {
	if raw == "" {
		return url.Values{}, nil
	}
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}, err
	}
	return values, nil
}
