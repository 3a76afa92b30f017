// Package di assembles the application with google/wire. Two relationship
// stores share one implementation type, so each gets a distinct named type
// for the injector to key on.
package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/config"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/messaging/eventbridge"
	dynamostore "github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/persistence/dynamodb"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/observability"
)

// BookTagStore is the book-tag relationship store.
type BookTagStore ports.RelationshipStore

// CollectionBookStore is the collection-book relationship store.
type CollectionBookStore ports.RelationshipStore

// Container holds the wired application.
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	Books             ports.BookRepository
	Tags              ports.TagRepository
	Collections       ports.CollectionRepository
	Progress          ports.ProgressRepository
	BookTags          BookTagStore
	CollectionBooks   CollectionBookStore
	Publisher         ports.EventPublisher
	Metrics           *observability.Metrics
	Tracer            *observability.Tracer
	JWTValidator      *auth.JWTValidator
	BookService       *services.BookService
	TagService        *services.TagService
	CollectionService *services.CollectionService
	ProgressService   *services.ProgressService
	AnalyticsService  *services.AnalyticsService
}

// ProvideLogger creates the logger for the configured environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the default AWS configuration.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client.
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client.
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the metrics emitter. Disabled configurations get a
// no-op emitter.
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("BookTracker", nil, logger)
	}
	return observability.NewMetrics("BookTracker", client, logger)
}

// ProvideTracer creates the tracer, or nil when tracing is disabled.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("book-tracker")
}

// ProvideBookRepository creates the book store.
func ProvideBookRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.BookRepository {
	return dynamostore.NewBookRepository(client, cfg.BooksTable, cfg.UserIndexName, logger)
}

// ProvideTagRepository creates the tag store.
func ProvideTagRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TagRepository {
	return dynamostore.NewTagRepository(client, cfg.TagsTable, cfg.UserIndexName, logger)
}

// ProvideCollectionRepository creates the collection store.
func ProvideCollectionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.CollectionRepository {
	return dynamostore.NewCollectionRepository(client, cfg.CollectionsTable, cfg.UserIndexName, logger)
}

// ProvideProgressRepository creates the progress store.
func ProvideProgressRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ProgressRepository {
	return dynamostore.NewProgressRepository(client, cfg.ProgressTable, cfg.UserIndexName, logger)
}

// ProvideBookTagStore creates the book-tag relationship store.
func ProvideBookTagStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) BookTagStore {
	return dynamostore.NewRelationshipStore(client, cfg.BookTagsTable, dynamostore.BookTagKeyAttribute, cfg.LeftIndexName, cfg.RightIndexName, logger)
}

// ProvideCollectionBookStore creates the collection-book relationship store.
func ProvideCollectionBookStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) CollectionBookStore {
	return dynamostore.NewRelationshipStore(client, cfg.CollectionBooksTable, dynamostore.CollectionBookKeyAttribute, cfg.LeftIndexName, cfg.RightIndexName, logger)
}

// ProvideEventPublisher creates the EventBridge publisher.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJWTValidator creates the REST token validator. An empty secret is
// allowed outside production; the validator then rejects every token and the
// gateway-authorized path is the only way in.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideBookService creates the book service.
func ProvideBookService(
	books ports.BookRepository,
	bookTags BookTagStore,
	collectionBooks CollectionBookStore,
	progress ports.ProgressRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.BookService {
	return services.NewBookService(books, bookTags, collectionBooks, progress, publisher, metrics, logger)
}

// ProvideTagService creates the tag service.
func ProvideTagService(
	tags ports.TagRepository,
	books ports.BookRepository,
	bookTags BookTagStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.TagService {
	return services.NewTagService(tags, books, bookTags, publisher, metrics, logger)
}

// ProvideCollectionService creates the collection service.
func ProvideCollectionService(
	collections ports.CollectionRepository,
	books ports.BookRepository,
	collectionBooks CollectionBookStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.CollectionService {
	return services.NewCollectionService(collections, books, collectionBooks, publisher, metrics, logger)
}

// ProvideProgressService creates the progress service.
func ProvideProgressService(
	progress ports.ProgressRepository,
	books ports.BookRepository,
	logger *zap.Logger,
) *services.ProgressService {
	return services.NewProgressService(progress, books, logger)
}

// ProvideAnalyticsService creates the analytics service.
func ProvideAnalyticsService(progress ports.ProgressRepository, logger *zap.Logger) *services.AnalyticsService {
	return services.NewAnalyticsService(progress, logger)
}
