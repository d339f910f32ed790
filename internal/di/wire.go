//go:build wireinject
// +build wireinject

package di

import (
	"ZScout/pkg/config"
	"ZScout/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Data access
		ProvideStore,
		ProvideLimiter,
		ProvideYahooClient,
		ProvidePriceSource,
		ProvideQuoteSource,
		ProvidePublisher,

		// Analysis
		ProvideClassifier,

		// Use cases
		ProvideAnalyzer,
		ProvideSeeder,
		ProvideScreener,
		ProvideResultReader,

		// HTTP surface
		ProvideHandler,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
