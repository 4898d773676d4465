//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"seedvault/internal"
	"seedvault/internal/controllers"
	"seedvault/internal/providers"
	"seedvault/internal/services"
	"seedvault/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMetricsProvider,

		services.NewSeedService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
