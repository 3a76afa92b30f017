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

// BookRepository implements ports.BookRepository over the Books table
// (partition key "id", sort key "userId"). The owner half of the key makes
// every operation owner-scoped: a Get with the wrong owner simply misses.
type BookRepository struct {
	client    *dynamodb.Client
	tableName string
	userIndex string
	logger    *zap.Logger
}

// NewBookRepository creates a BookRepository.
func NewBookRepository(client *dynamodb.Client, tableName, userIndex string, logger *zap.Logger) ports.BookRepository {
	return &BookRepository{
		client:    client,
		tableName: tableName,
		userIndex: userIndex,
		logger:    logger,
	}
}

// bookItem is the DynamoDB item shape for a book.
type bookItem struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"userId"`
	Title     string `dynamodbav:"title"`
	Author    string `dynamodbav:"author,omitempty"`
	ISBN      string `dynamodbav:"isbn,omitempty"`
	CoverURL  string `dynamodbav:"coverUrl,omitempty"`
	Publisher string `dynamodbav:"publisher,omitempty"`
	PageCount int    `dynamodbav:"pageCount,omitempty"`
	Notes     string `dynamodbav:"notes,omitempty"`
	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

func toBookItem(book *entities.Book) bookItem {
	return bookItem{
		ID:        book.ID,
		UserID:    book.UserID,
		Title:     book.Title,
		Author:    book.Author,
		ISBN:      book.ISBN,
		CoverURL:  book.CoverURL,
		Publisher: book.Publisher,
		PageCount: book.PageCount,
		Notes:     book.Notes,
		CreatedAt: book.CreatedAt.Format(time.RFC3339),
		UpdatedAt: book.UpdatedAt.Format(time.RFC3339),
	}
}

func (i bookItem) toEntity() *entities.Book {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)
	return &entities.Book{
		ID:        i.ID,
		UserID:    i.UserID,
		Title:     i.Title,
		Author:    i.Author,
		ISBN:      i.ISBN,
		CoverURL:  i.CoverURL,
		Publisher: i.Publisher,
		PageCount: i.PageCount,
		Notes:     i.Notes,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Create persists a new book, rejecting an existing (id, owner) key.
func (r *BookRepository) Create(ctx context.Context, book *entities.Book) error {
	av, err := attributevalue.MarshalMap(toBookItem(book))
	if err != nil {
		return errors.NewInternalError("failed to marshal book").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return errors.NewConflictError("book already exists")
		}
		return translateStorageError("create book", err)
	}
	return nil
}

// Put upserts a book.
func (r *BookRepository) Put(ctx context.Context, book *entities.Book) error {
	av, err := attributevalue.MarshalMap(toBookItem(book))
	if err != nil {
		return errors.NewInternalError("failed to marshal book").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateStorageError("put book", err)
	}
	return nil
}

// Get retrieves a book by its full (id, owner) key.
func (r *BookRepository) Get(ctx context.Context, id, ownerID string) (*entities.Book, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       entityKey(id, ownerID),
	})
	if err != nil {
		return nil, translateStorageError("get book", err)
	}
	if result.Item == nil {
		return nil, errors.NewNotFoundError("book")
	}

	var item bookItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal book").WithCause(err)
	}
	return item.toEntity(), nil
}

// Delete removes a book; an absent key is NotFound.
func (r *BookRepository) Delete(ctx context.Context, id, ownerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 entityKey(id, ownerID),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return errors.NewNotFoundError("book")
		}
		return translateStorageError("delete book", err)
	}
	return nil
}

// ListByOwner retrieves all books for an owner via the UserIndex GSI. With no
// index configured it falls back to a filtered scan, which reads the whole
// table and is only acceptable for local development.
func (r *BookRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Book, error) {
	items, err := queryByOwner(ctx, r.client, r.tableName, r.userIndex, ownerID, r.logger)
	if err != nil {
		return nil, translateStorageError("list books", err)
	}

	books := make([]*entities.Book, 0, len(items))
	for _, raw := range items {
		var item bookItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping unreadable book item", zap.Error(err))
			continue
		}
		books = append(books, item.toEntity())
	}
	return books, nil
}
