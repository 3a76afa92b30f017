package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/config"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/di"
	"github.com/mohammedfirdouss/serverless-book-tracker/interfaces/appsync"
)

var dispatcher *appsync.Dispatcher

func init() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	dispatcher = appsync.NewDispatcher(
		container.BookService,
		container.TagService,
		container.CollectionService,
		container.ProgressService,
		container.AnalyticsService,
		container.Metrics,
		container.Tracer,
		container.Logger,
	)

	container.Logger.Info("resolver initialized", zap.String("environment", cfg.Environment))
}

func handle(ctx context.Context, event appsync.ResolveEvent) (interface{}, error) {
	return dispatcher.Handle(ctx, event)
}

func main() {
	lambda.Start(handle)
}
