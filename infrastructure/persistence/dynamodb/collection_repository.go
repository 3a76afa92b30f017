package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// CollectionRepository implements ports.CollectionRepository over the
// Collections table.
type CollectionRepository struct {
	client    *dynamodb.Client
	tableName string
	userIndex string
	logger    *zap.Logger
}

// NewCollectionRepository creates a CollectionRepository.
func NewCollectionRepository(client *dynamodb.Client, tableName, userIndex string, logger *zap.Logger) ports.CollectionRepository {
	return &CollectionRepository{
		client:    client,
		tableName: tableName,
		userIndex: userIndex,
		logger:    logger,
	}
}

type collectionItem struct {
	ID          string `dynamodbav:"id"`
	UserID      string `dynamodbav:"userId"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

func toCollectionItem(collection *entities.Collection) collectionItem {
	return collectionItem{
		ID:          collection.ID,
		UserID:      collection.UserID,
		Name:        collection.Name,
		Description: collection.Description,
		CreatedAt:   collection.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   collection.UpdatedAt.Format(time.RFC3339),
	}
}

func (i collectionItem) toEntity() *entities.Collection {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)
	return &entities.Collection{
		ID:          i.ID,
		UserID:      i.UserID,
		Name:        i.Name,
		Description: i.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Create persists a new collection, rejecting an existing (id, owner) key.
func (r *CollectionRepository) Create(ctx context.Context, collection *entities.Collection) error {
	av, err := attributevalue.MarshalMap(toCollectionItem(collection))
	if err != nil {
		return errors.NewInternalError("failed to marshal collection").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return errors.NewConflictError("collection already exists")
		}
		return translateStorageError("create collection", err)
	}
	return nil
}

// Put upserts a collection.
func (r *CollectionRepository) Put(ctx context.Context, collection *entities.Collection) error {
	av, err := attributevalue.MarshalMap(toCollectionItem(collection))
	if err != nil {
		return errors.NewInternalError("failed to marshal collection").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateStorageError("put collection", err)
	}
	return nil
}

// Get retrieves a collection by its full (id, owner) key.
func (r *CollectionRepository) Get(ctx context.Context, id, ownerID string) (*entities.Collection, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       entityKey(id, ownerID),
	})
	if err != nil {
		return nil, translateStorageError("get collection", err)
	}
	if result.Item == nil {
		return nil, errors.NewNotFoundError("collection")
	}

	var item collectionItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal collection").WithCause(err)
	}
	return item.toEntity(), nil
}

// Delete removes a collection; an absent key is NotFound.
func (r *CollectionRepository) Delete(ctx context.Context, id, ownerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 entityKey(id, ownerID),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return errors.NewNotFoundError("collection")
		}
		return translateStorageError("delete collection", err)
	}
	return nil
}

// ListByOwner retrieves all collections for an owner.
func (r *CollectionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Collection, error) {
	items, err := queryByOwner(ctx, r.client, r.tableName, r.userIndex, ownerID, r.logger)
	if err != nil {
		return nil, translateStorageError("list collections", err)
	}

	collections := make([]*entities.Collection, 0, len(items))
	for _, raw := range items {
		var item collectionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping unreadable collection item", zap.Error(err))
			continue
		}
		collections = append(collections, item.toEntity())
	}
	return collections, nil
}
