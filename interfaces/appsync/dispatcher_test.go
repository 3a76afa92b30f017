package appsync

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/persistence/memory"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

func newDispatcher() *Dispatcher {
	logger := zap.NewNop()
	bookStore := memory.NewBookStore()
	tagStore := memory.NewTagStore()
	collectionStore := memory.NewCollectionStore()
	progressStore := memory.NewProgressStore()
	bookTags := memory.NewRelationshipStore()
	collectionBooks := memory.NewRelationshipStore()
	eventLog := memory.NewEventLog()

	return NewDispatcher(
		services.NewBookService(bookStore, bookTags, collectionBooks, progressStore, eventLog, nil, logger),
		services.NewTagService(tagStore, bookStore, bookTags, eventLog, nil, logger),
		services.NewCollectionService(collectionStore, bookStore, collectionBooks, eventLog, nil, logger),
		services.NewProgressService(progressStore, bookStore, logger),
		services.NewAnalyticsService(progressStore, logger),
		nil,
		nil,
		logger,
	)
}

func resolve(t *testing.T, d *Dispatcher, sub, field string, args string) interface{} {
	t.Helper()
	result, err := d.Handle(context.Background(), ResolveEvent{
		Field:     field,
		Arguments: json.RawMessage(args),
		Identity:  Identity{Sub: sub},
	})
	require.NoError(t, err)
	return result
}

func resolveErr(t *testing.T, d *Dispatcher, sub, field string, args string) error {
	t.Helper()
	_, err := d.Handle(context.Background(), ResolveEvent{
		Field:     field,
		Arguments: json.RawMessage(args),
		Identity:  Identity{Sub: sub},
	})
	require.Error(t, err)
	return err
}

func TestDispatchBookLifecycle(t *testing.T) {
	d := newDispatcher()

	created := resolve(t, d, "u1", "createBook", `{"title":"Dune","author":"Frank Herbert","pageCount":412}`)
	book, ok := created.(*entities.Book)
	require.True(t, ok)
	assert.Equal(t, "u1", book.UserID)
	assert.NotEmpty(t, book.ID)

	got := resolve(t, d, "u1", "getBook", `{"bookId":"`+book.ID+`"}`)
	assert.Equal(t, book.ID, got.(*entities.Book).ID)

	updated := resolve(t, d, "u1", "updateBook", `{"bookId":"`+book.ID+`","notes":"a classic"}`)
	assert.Equal(t, "a classic", updated.(*entities.Book).Notes)

	deleted := resolve(t, d, "u1", "deleteBook", `{"bookId":"`+book.ID+`"}`)
	assert.Equal(t, deletedResponse{Deleted: true, ID: book.ID}, deleted)

	err := resolveErr(t, d, "u1", "getBook", `{"bookId":"`+book.ID+`"}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeNotFound)))
}

func TestDispatchRejectsUnknownField(t *testing.T) {
	d := newDispatcher()
	err := resolveErr(t, d, "u1", "dropAllTables", `{}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))
}

func TestDispatchValidatesArguments(t *testing.T) {
	d := newDispatcher()

	err := resolveErr(t, d, "u1", "createBook", `{"author":"no title"}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))

	err = resolveErr(t, d, "u1", "createBook", `{not json`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))

	err = resolveErr(t, d, "u1", "recordProgress", `{"bookId":"b1","status":"abandoned"}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))
}

func TestDispatchRequiresIdentity(t *testing.T) {
	d := newDispatcher()

	err := resolveErr(t, d, "", "listBooks", `{}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))

	// Fields that reach the repository first must still fail at dispatch,
	// not surface a storage miss for owner "".
	book := resolve(t, d, "u1", "createBook", `{"title":"Dune","author":"Frank Herbert"}`).(*entities.Book)
	err = resolveErr(t, d, "", "getBook", `{"bookId":"`+book.ID+`"}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))

	err = resolveErr(t, d, "", "getProgress", `{"bookId":"`+book.ID+`"}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeValidation)))
}

func TestDispatchCrossOwnerLooksLikeMiss(t *testing.T) {
	d := newDispatcher()

	created := resolve(t, d, "u1", "createBook", `{"title":"Dune","author":"Frank Herbert"}`)
	book := created.(*entities.Book)

	err := resolveErr(t, d, "u2", "getBook", `{"bookId":"`+book.ID+`"}`)
	assert.True(t, strings.HasPrefix(err.Error(), string(errors.ErrorTypeNotFound)))

	// A foreign id and a nonexistent id produce the same outcome.
	missing := resolveErr(t, d, "u2", "getBook", `{"bookId":"does-not-exist"}`)
	assert.Equal(t, err.Error(), missing.Error())
}

func TestDispatchTagAndCollectionFlow(t *testing.T) {
	d := newDispatcher()

	book := resolve(t, d, "u1", "createBook", `{"title":"Dune","author":"Frank Herbert"}`).(*entities.Book)
	tag := resolve(t, d, "u1", "createTag", `{"label":"sci-fi"}`).(*entities.Tag)

	resolve(t, d, "u1", "attachTag", `{"bookId":"`+book.ID+`","tagId":"`+tag.ID+`"}`)

	tagsForBook := resolve(t, d, "u1", "listTagsForBook", `{"bookId":"`+book.ID+`"}`).([]*entities.Tag)
	require.Len(t, tagsForBook, 1)
	assert.Equal(t, "sci-fi", tagsForBook[0].Label)

	collection := resolve(t, d, "u1", "createCollection", `{"name":"favorites"}`).(*entities.Collection)
	resolve(t, d, "u1", "addBookToCollection", `{"collectionId":"`+collection.ID+`","bookId":"`+book.ID+`"}`)

	books := resolve(t, d, "u1", "listCollectionBooks", `{"collectionId":"`+collection.ID+`"}`).([]*entities.Book)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)
}

func TestDispatchProgressAndSummary(t *testing.T) {
	d := newDispatcher()

	book := resolve(t, d, "u1", "createBook", `{"title":"Dune","author":"Frank Herbert"}`).(*entities.Book)

	resolve(t, d, "u1", "recordProgress", `{"bookId":"`+book.ID+`","page":50,"status":"in-progress"}`)
	resolve(t, d, "u1", "recordProgress", `{"bookId":"`+book.ID+`","page":412,"status":"finished"}`)

	progress := resolve(t, d, "u1", "getProgress", `{"bookId":"`+book.ID+`"}`).(*entities.Progress)
	assert.Equal(t, 412, progress.Page)
	assert.Equal(t, entities.StatusFinished, progress.Status)

	summary := resolve(t, d, "u1", "readingSummary", `{}`).(*services.ReadingSummary)
	assert.Equal(t, 1, summary.TotalBooks)
	assert.Equal(t, 1, summary.BooksFinished)
	assert.Equal(t, 412, summary.TotalPagesRead)
}
