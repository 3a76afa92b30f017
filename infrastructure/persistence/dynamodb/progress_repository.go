package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// ProgressRepository implements ports.ProgressRepository over the Progress
// table (partition key "bookId", sort key "userId"). The key shape itself
// enforces at most one record per book per owner.
type ProgressRepository struct {
	client    *dynamodb.Client
	tableName string
	userIndex string
	logger    *zap.Logger
}

// NewProgressRepository creates a ProgressRepository.
func NewProgressRepository(client *dynamodb.Client, tableName, userIndex string, logger *zap.Logger) ports.ProgressRepository {
	return &ProgressRepository{
		client:    client,
		tableName: tableName,
		userIndex: userIndex,
		logger:    logger,
	}
}

type progressItem struct {
	BookID     string  `dynamodbav:"bookId"`
	UserID     string  `dynamodbav:"userId"`
	Page       int     `dynamodbav:"page"`
	Percentage float64 `dynamodbav:"percentage"`
	Status     string  `dynamodbav:"status"`
	StartedAt  string  `dynamodbav:"startedAt,omitempty"`
	FinishedAt string  `dynamodbav:"finishedAt,omitempty"`
	UpdatedAt  string  `dynamodbav:"updatedAt"`
}

func toProgressItem(progress *entities.Progress) progressItem {
	item := progressItem{
		BookID:     progress.BookID,
		UserID:     progress.UserID,
		Page:       progress.Page,
		Percentage: progress.Percentage,
		Status:     string(progress.Status),
		UpdatedAt:  progress.UpdatedAt.Format(time.RFC3339),
	}
	if progress.StartedAt != nil {
		item.StartedAt = progress.StartedAt.Format(time.RFC3339)
	}
	if progress.FinishedAt != nil {
		item.FinishedAt = progress.FinishedAt.Format(time.RFC3339)
	}
	return item
}

func (i progressItem) toEntity() *entities.Progress {
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)
	progress := &entities.Progress{
		BookID:     i.BookID,
		UserID:     i.UserID,
		Page:       i.Page,
		Percentage: i.Percentage,
		Status:     entities.ReadingStatus(i.Status),
		UpdatedAt:  updatedAt,
	}
	// Tolerate partial records: an unknown status reads as unstarted.
	if !progress.Status.IsValid() {
		progress.Status = entities.StatusUnstarted
	}
	if i.StartedAt != "" {
		if startedAt, err := time.Parse(time.RFC3339, i.StartedAt); err == nil {
			progress.StartedAt = &startedAt
		}
	}
	if i.FinishedAt != "" {
		if finishedAt, err := time.Parse(time.RFC3339, i.FinishedAt); err == nil {
			progress.FinishedAt = &finishedAt
		}
	}
	return progress
}

func progressKey(bookID, ownerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"bookId": &types.AttributeValueMemberS{Value: bookID},
		"userId": &types.AttributeValueMemberS{Value: ownerID},
	}
}

// Put upserts a progress record; the last write wins.
func (r *ProgressRepository) Put(ctx context.Context, progress *entities.Progress) error {
	av, err := attributevalue.MarshalMap(toProgressItem(progress))
	if err != nil {
		return errors.NewInternalError("failed to marshal progress").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateStorageError("put progress", err)
	}
	return nil
}

// Get retrieves the progress for a book.
func (r *ProgressRepository) Get(ctx context.Context, bookID, ownerID string) (*entities.Progress, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       progressKey(bookID, ownerID),
	})
	if err != nil {
		return nil, translateStorageError("get progress", err)
	}
	if result.Item == nil {
		return nil, errors.NewNotFoundError("progress")
	}

	var item progressItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal progress").WithCause(err)
	}
	return item.toEntity(), nil
}

// Delete removes the progress for a book. Absence is not an error; the
// delete-book cascade retries through here and must stay idempotent.
func (r *ProgressRepository) Delete(ctx context.Context, bookID, ownerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       progressKey(bookID, ownerID),
	})
	if err != nil {
		return translateStorageError("delete progress", err)
	}
	return nil
}

// ListByOwner retrieves all progress records for an owner.
func (r *ProgressRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Progress, error) {
	items, err := queryByOwner(ctx, r.client, r.tableName, r.userIndex, ownerID, r.logger)
	if err != nil {
		return nil, translateStorageError("list progress", err)
	}

	records := make([]*entities.Progress, 0, len(items))
	for _, raw := range items {
		var item progressItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping unreadable progress item", zap.Error(err))
			continue
		}
		records = append(records, item.toEntity())
	}
	return records, nil
}
