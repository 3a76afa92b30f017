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

// TagRepository implements ports.TagRepository over the Tags table.
type TagRepository struct {
	client    *dynamodb.Client
	tableName string
	userIndex string
	logger    *zap.Logger
}

// NewTagRepository creates a TagRepository.
func NewTagRepository(client *dynamodb.Client, tableName, userIndex string, logger *zap.Logger) ports.TagRepository {
	return &TagRepository{
		client:    client,
		tableName: tableName,
		userIndex: userIndex,
		logger:    logger,
	}
}

type tagItem struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"userId"`
	Label     string `dynamodbav:"label"`
	CreatedAt string `dynamodbav:"createdAt"`
}

func (i tagItem) toEntity() *entities.Tag {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return &entities.Tag{
		ID:        i.ID,
		UserID:    i.UserID,
		Label:     i.Label,
		CreatedAt: createdAt,
	}
}

// Create persists a new tag, rejecting an existing (id, owner) key.
func (r *TagRepository) Create(ctx context.Context, tag *entities.Tag) error {
	av, err := attributevalue.MarshalMap(tagItem{
		ID:        tag.ID,
		UserID:    tag.UserID,
		Label:     tag.Label,
		CreatedAt: tag.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return errors.NewInternalError("failed to marshal tag").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return errors.NewConflictError("tag already exists")
		}
		return translateStorageError("create tag", err)
	}
	return nil
}

// Get retrieves a tag by its full (id, owner) key.
func (r *TagRepository) Get(ctx context.Context, id, ownerID string) (*entities.Tag, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       entityKey(id, ownerID),
	})
	if err != nil {
		return nil, translateStorageError("get tag", err)
	}
	if result.Item == nil {
		return nil, errors.NewNotFoundError("tag")
	}

	var item tagItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal tag").WithCause(err)
	}
	return item.toEntity(), nil
}

// Delete removes a tag; an absent key is NotFound.
func (r *TagRepository) Delete(ctx context.Context, id, ownerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 entityKey(id, ownerID),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return errors.NewNotFoundError("tag")
		}
		return translateStorageError("delete tag", err)
	}
	return nil
}

// ListByOwner retrieves all tags for an owner.
func (r *TagRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Tag, error) {
	items, err := queryByOwner(ctx, r.client, r.tableName, r.userIndex, ownerID, r.logger)
	if err != nil {
		return nil, translateStorageError("list tags", err)
	}

	tags := make([]*entities.Tag, 0, len(items))
	for _, raw := range items {
		var item tagItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping unreadable tag item", zap.Error(err))
			continue
		}
		tags = append(tags, item.toEntity())
	}
	return tags, nil
}
