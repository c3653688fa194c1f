//go:build wireinject
// +build wireinject

package di

import (
	"OscLens/pkg/config"
	"OscLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideSeriesStore,
		ProvideCandleStore,
		ProvideCacheService,
		ProvideComputeCache,
		ProvideBinanceRest,

		// Analytics services
		ProvideSeriesProvider,
		ProvideVolatilityEstimator,
		ProvideRegimeClassifier,

		// Use cases
		ProvideOscillatorUsecase,
		ProvideRegimeUsecase,
		ProvideTensionUsecase,
		ProvideDatasetUsecase,
		ProvideStatusUsecase,
		ProvideCandlesUsecase,

		// HTTP surface
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
