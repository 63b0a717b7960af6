//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"ModelVault/pkg/config"
	"ModelVault/pkg/server"
)

// InitializeApp builds the application graph from config. The returned
// cleanup closes caches, the ClickHouse pool and the Kafka producer.
func InitializeApp(ctx context.Context, cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideBackend,
		ProvideResolver,
		ProvideBytesCache,
		ProvideLoader,
		ProvideCostService,
		ProvideRouter,
		ProvideServer,
		ProvideApp,
	)
	return nil, nil, nil
}
