//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/config"
)

func InitApp(cfg *config.Config, logger zerolog.Logger) (*App, func(), error) {

	wire.Build(
		provideStore,
		provideKeyValueStore,
		provideRegistry,
		provideMetrics,

		BackendSet,
		SearchSet,
		TravelSet,
		HTTPSet,
		NewApp,
	)

	return nil, nil, nil
}
