//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/config"
)

// SuperSet contains every provider in dependency order.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideBookRepository,
	ProvideTagRepository,
	ProvideCollectionRepository,
	ProvideProgressRepository,
	ProvideBookTagStore,
	ProvideCollectionBookStore,
	ProvideEventPublisher,
	ProvideJWTValidator,
	ProvideBookService,
	ProvideTagService,
	ProvideCollectionService,
	ProvideProgressService,
	ProvideAnalyticsService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
