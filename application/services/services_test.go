package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/events"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/persistence/memory"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/observability"
)

type fixture struct {
	books           *BookService
	tags            *TagService
	collections     *CollectionService
	progress        *ProgressService
	analytics       *AnalyticsService
	bookTags        *memory.RelationshipStore
	collectionBooks *memory.RelationshipStore
	eventLog        *memory.EventLog
}

func newFixture() *fixture {
	logger := zap.NewNop()
	bookStore := memory.NewBookStore()
	tagStore := memory.NewTagStore()
	collectionStore := memory.NewCollectionStore()
	progressStore := memory.NewProgressStore()
	bookTags := memory.NewRelationshipStore()
	collectionBooks := memory.NewRelationshipStore()
	eventLog := memory.NewEventLog()

	return &fixture{
		books:           NewBookService(bookStore, bookTags, collectionBooks, progressStore, eventLog, nil, logger),
		tags:            NewTagService(tagStore, bookStore, bookTags, eventLog, nil, logger),
		collections:     NewCollectionService(collectionStore, bookStore, collectionBooks, eventLog, nil, logger),
		progress:        NewProgressService(progressStore, bookStore, logger),
		analytics:       NewAnalyticsService(progressStore, logger),
		bookTags:        bookTags,
		collectionBooks: collectionBooks,
		eventLog:        eventLog,
	}
}

func (f *fixture) mustCreateBook(t *testing.T, owner, title string) *entities.Book {
	t.Helper()
	book, err := f.books.Create(context.Background(), owner, CreateBookInput{Title: title, Author: "someone"})
	require.NoError(t, err)
	return book
}

func (f *fixture) mustCreateTag(t *testing.T, owner, label string) *entities.Tag {
	t.Helper()
	tag, err := f.tags.Create(context.Background(), owner, label)
	require.NoError(t, err)
	return tag
}

func TestOwnerIsolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")

	_, err := f.books.Get(ctx, "u2", book.ID)
	assert.True(t, errors.IsNotFound(err), "another owner's read must look like a miss")

	err = f.books.Delete(ctx, "u2", book.ID)
	assert.True(t, errors.IsNotFound(err))

	_, err = f.books.Update(ctx, "u2", book.ID, UpdateBookInput{})
	assert.True(t, errors.IsNotFound(err))

	// The record is untouched for its real owner.
	got, err := f.books.Get(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestListIsOwnerScoped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.mustCreateBook(t, "u1", "Dune")
	f.mustCreateBook(t, "u1", "Hyperion")
	f.mustCreateBook(t, "u2", "Solaris")

	mine, err := f.books.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := f.books.List(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestAttachDetachTag(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")
	tag := f.mustCreateTag(t, "u1", "sci-fi")

	require.NoError(t, f.tags.Attach(ctx, "u1", book.ID, tag.ID))

	linked, err := f.bookTags.Exists(ctx, "u1", book.ID, tag.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	// Attaching twice yields the same state as attaching once.
	require.NoError(t, f.tags.Attach(ctx, "u1", book.ID, tag.ID))
	tagsForBook, err := f.tags.ListForBook(ctx, "u1", book.ID)
	require.NoError(t, err)
	require.Len(t, tagsForBook, 1)
	assert.Equal(t, tag.ID, tagsForBook[0].ID)

	require.NoError(t, f.tags.Detach(ctx, "u1", book.ID, tag.ID))
	linked, err = f.bookTags.Exists(ctx, "u1", book.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	// Detaching an absent link stays a success.
	require.NoError(t, f.tags.Detach(ctx, "u1", book.ID, tag.ID))
}

func TestAttachRequiresOwnedEndpoints(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")
	foreignTag := f.mustCreateTag(t, "u2", "their-tag")

	err := f.tags.Attach(ctx, "u1", book.ID, foreignTag.ID)
	assert.True(t, errors.IsNotFound(err))

	err = f.tags.Attach(ctx, "u2", book.ID, foreignTag.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteBookCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")
	tag := f.mustCreateTag(t, "u1", "sci-fi")
	collection, err := f.collections.Create(ctx, "u1", "favorites", "")
	require.NoError(t, err)

	require.NoError(t, f.tags.Attach(ctx, "u1", book.ID, tag.ID))
	require.NoError(t, f.collections.AddBook(ctx, "u1", collection.ID, book.ID))
	_, err = f.progress.Record(ctx, "u1", RecordProgressInput{BookID: book.ID, Page: 50, Status: entities.StatusInProgress})
	require.NoError(t, err)

	require.NoError(t, f.books.Delete(ctx, "u1", book.ID))

	linked, err := f.bookTags.Exists(ctx, "u1", book.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	member, err := f.collectionBooks.Exists(ctx, "u1", collection.ID, book.ID)
	require.NoError(t, err)
	assert.False(t, member)

	_, err = f.progress.Get(ctx, "u1", book.ID)
	assert.True(t, errors.IsNotFound(err))

	rights, err := f.bookTags.ListRightsForLeft(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Empty(t, rights)

	// The tag and collection themselves survive.
	_, err = f.tags.Get(ctx, "u1", tag.ID)
	assert.NoError(t, err)
	_, err = f.collections.Get(ctx, "u1", collection.ID)
	assert.NoError(t, err)

	recorded := f.eventLog.Recorded()
	require.NotEmpty(t, recorded)
	assert.Equal(t, events.EventTypeBookDeleted, recorded[len(recorded)-1].GetEventType())
}

func TestDeleteTagCascadesOnlyItsLinks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bookA := f.mustCreateBook(t, "u1", "Dune")
	bookB := f.mustCreateBook(t, "u1", "Hyperion")
	doomed := f.mustCreateTag(t, "u1", "sci-fi")
	keeper := f.mustCreateTag(t, "u1", "classics")

	require.NoError(t, f.tags.Attach(ctx, "u1", bookA.ID, doomed.ID))
	require.NoError(t, f.tags.Attach(ctx, "u1", bookB.ID, doomed.ID))
	require.NoError(t, f.tags.Attach(ctx, "u1", bookA.ID, keeper.ID))

	require.NoError(t, f.tags.Delete(ctx, "u1", doomed.ID))

	for _, bookID := range []string{bookA.ID, bookB.ID} {
		linked, err := f.bookTags.Exists(ctx, "u1", bookID, doomed.ID)
		require.NoError(t, err)
		assert.False(t, linked)
	}

	// Unrelated books and tags are untouched.
	linked, err := f.bookTags.Exists(ctx, "u1", bookA.ID, keeper.ID)
	require.NoError(t, err)
	assert.True(t, linked)
	_, err = f.books.Get(ctx, "u1", bookA.ID)
	assert.NoError(t, err)
}

func TestProgressUpsertLastWriteWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")

	_, err := f.progress.Record(ctx, "u1", RecordProgressInput{
		BookID: book.ID, Page: 50, Status: entities.StatusInProgress,
	})
	require.NoError(t, err)

	_, err = f.progress.Record(ctx, "u1", RecordProgressInput{
		BookID: book.ID, Page: 120, Status: entities.StatusFinished,
	})
	require.NoError(t, err)

	got, err := f.progress.Get(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, got.Page)
	assert.Equal(t, entities.StatusFinished, got.Status)

	records, err := f.progress.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 1, "at most one progress record per (book, owner)")
}

func TestProgressForUnownedBookIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")

	_, err := f.progress.Record(ctx, "u2", RecordProgressInput{
		BookID: book.ID, Page: 10, Status: entities.StatusInProgress,
	})
	assert.True(t, errors.IsNotFound(err))

	_, err = f.progress.Record(ctx, "u1", RecordProgressInput{
		BookID: "no-such-book", Page: 10, Status: entities.StatusInProgress,
	})
	assert.True(t, errors.IsNotFound(err))
}

func TestScenarioTagThenDeleteBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "b1")
	tag := f.mustCreateTag(t, "u1", "t1")

	require.NoError(t, f.tags.Attach(ctx, "u1", book.ID, tag.ID))

	rights, err := f.bookTags.ListRightsForLeft(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, rights)

	require.NoError(t, f.books.Delete(ctx, "u1", book.ID))

	linked, err := f.bookTags.Exists(ctx, "u1", book.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	rights, err = f.bookTags.ListRightsForLeft(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Empty(t, rights)
}

func TestCollectionMembership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")
	collection, err := f.collections.Create(ctx, "u1", "favorites", "the good ones")
	require.NoError(t, err)

	require.NoError(t, f.collections.AddBook(ctx, "u1", collection.ID, book.ID))
	require.NoError(t, f.collections.AddBook(ctx, "u1", collection.ID, book.ID))

	books, err := f.collections.ListBooks(ctx, "u1", collection.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)

	require.NoError(t, f.collections.RemoveBook(ctx, "u1", collection.ID, book.ID))
	books, err = f.collections.ListBooks(ctx, "u1", collection.ID)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestDeleteCollectionKeepsBooks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")
	collection, err := f.collections.Create(ctx, "u1", "favorites", "")
	require.NoError(t, err)
	require.NoError(t, f.collections.AddBook(ctx, "u1", collection.ID, book.ID))

	require.NoError(t, f.collections.Delete(ctx, "u1", collection.ID))

	member, err := f.collectionBooks.Exists(ctx, "u1", collection.ID, book.ID)
	require.NoError(t, err)
	assert.False(t, member)

	_, err = f.books.Get(ctx, "u1", book.ID)
	assert.NoError(t, err)
}

func TestSoftGarbageFilteredAtRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.mustCreateBook(t, "u1", "Dune")
	tag := f.mustCreateTag(t, "u1", "sci-fi")

	// Simulate a partial cascade: the link survived a tag delete.
	require.NoError(t, f.tags.Attach(ctx, "u1", book.ID, tag.ID))
	require.NoError(t, f.bookTags.Link(ctx, "u1", book.ID, "ghost-tag"))

	tagsForBook, err := f.tags.ListForBook(ctx, "u1", book.ID)
	require.NoError(t, err)
	require.Len(t, tagsForBook, 1)
	assert.Equal(t, tag.ID, tagsForBook[0].ID)
}

func TestAnalyticsSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	finished := f.mustCreateBook(t, "u1", "Dune")
	reading := f.mustCreateBook(t, "u1", "Hyperion")
	queued := f.mustCreateBook(t, "u1", "Solaris")

	_, err := f.progress.Record(ctx, "u1", RecordProgressInput{BookID: finished.ID, Page: 412, Status: entities.StatusFinished})
	require.NoError(t, err)
	_, err = f.progress.Record(ctx, "u1", RecordProgressInput{BookID: reading.ID, Page: 88, Status: entities.StatusInProgress})
	require.NoError(t, err)
	_, err = f.progress.Record(ctx, "u1", RecordProgressInput{BookID: queued.ID, Status: entities.StatusUnstarted})
	require.NoError(t, err)

	// Another owner's records stay out of the aggregate.
	other := f.mustCreateBook(t, "u2", "Foundation")
	_, err = f.progress.Record(ctx, "u2", RecordProgressInput{BookID: other.ID, Page: 999, Status: entities.StatusFinished})
	require.NoError(t, err)

	summary, err := f.analytics.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalBooks)
	assert.Equal(t, 1, summary.BooksFinished)
	assert.Equal(t, 1, summary.BooksInProgress)
	assert.Equal(t, 1, summary.BooksUnstarted)
	assert.Equal(t, 500, summary.TotalPagesRead)
}

// brokenRelationshipStore fails every listing, stranding link records the
// way a throttled join table would.
type brokenRelationshipStore struct {
	*memory.RelationshipStore
}

func (s *brokenRelationshipStore) ListRightsForLeft(ctx context.Context, ownerID, leftID string) ([]string, error) {
	return nil, errors.NewUnavailableError("list rights for left", nil)
}

func TestDeleteBookCascadeFailureSurfacesInternal(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	bookStore := memory.NewBookStore()
	eventLog := memory.NewEventLog()
	metrics := observability.NewMetrics("BookTrackerTest", nil, logger)
	svc := NewBookService(
		bookStore,
		&brokenRelationshipStore{memory.NewRelationshipStore()},
		memory.NewRelationshipStore(),
		memory.NewProgressStore(),
		eventLog,
		metrics,
		logger,
	)

	book, err := svc.Create(ctx, "u1", CreateBookInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	err = svc.Delete(ctx, "u1", book.ID)
	assert.True(t, errors.IsInternal(err), "a partial cascade must surface as internal")

	// The book row itself is gone and the deletion event still went out, so
	// the reconciler can finish the sweep.
	_, err = bookStore.Get(ctx, book.ID, "u1")
	assert.True(t, errors.IsNotFound(err))
	recorded := eventLog.Recorded()
	require.NotEmpty(t, recorded)
	assert.Equal(t, events.EventTypeBookDeleted, recorded[len(recorded)-1].GetEventType())
}

func TestCreateDuplicateBookIDConflicts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBookStore()
	svc := NewBookService(store, memory.NewRelationshipStore(), memory.NewRelationshipStore(), memory.NewProgressStore(), memory.NewEventLog(), nil, zap.NewNop())

	book, err := svc.Create(ctx, "u1", CreateBookInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	err = store.Create(ctx, book)
	assert.True(t, errors.IsConflict(err))
}
