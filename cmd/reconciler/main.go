// The reconciler re-runs cascade cleanup for deletion events. Deletes are
// best-effort at request time; when a step failed, the published event lands
// here via an EventBridge rule and the idempotent cascade runs again, sweeping
// any relationship or progress records the original pass left behind.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/domain/events"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/config"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/di"
)

var container *di.Container

func init() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

func handle(ctx context.Context, event awsevents.CloudWatchEvent) error {
	var detail events.BaseEvent
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to decode event detail: %w", err)
	}

	logger := container.Logger.With(
		zap.String("eventType", event.DetailType),
		zap.String("entityId", detail.EntityID),
		zap.String("ownerId", detail.OwnerID),
	)
	logger.Info("reconciling cascade")

	var err error
	switch event.DetailType {
	case events.EventTypeBookDeleted:
		err = container.BookService.CascadeCleanup(ctx, detail.OwnerID, detail.EntityID)
	case events.EventTypeTagDeleted:
		err = container.TagService.CascadeCleanup(ctx, detail.OwnerID, detail.EntityID)
	case events.EventTypeCollectionDeleted:
		err = container.CollectionService.CascadeCleanup(ctx, detail.OwnerID, detail.EntityID)
	default:
		logger.Warn("ignoring unrecognized event type")
		return nil
	}

	if err != nil {
		logger.Error("cascade reconciliation failed", zap.Error(err))
		// Returning the error lets EventBridge retry per its policy.
		return err
	}

	logger.Info("cascade reconciled")
	return nil
}

func main() {
	lambda.Start(handle)
}
