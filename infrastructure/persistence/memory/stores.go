// Package memory provides in-memory implementations of the persistence
// ports with the same key semantics as the DynamoDB stores. They back the
// service and dispatcher tests and the local development server.
package memory

import (
	"context"
	"sync"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/events"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

type recordKey struct {
	id      string
	ownerID string
}

// BookStore is an in-memory ports.BookRepository.
type BookStore struct {
	mu    sync.RWMutex
	items map[recordKey]entities.Book
}

// NewBookStore creates an empty BookStore.
func NewBookStore() *BookStore {
	return &BookStore{items: make(map[recordKey]entities.Book)}
}

func (s *BookStore) Create(ctx context.Context, book *entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{book.ID, book.UserID}
	if _, exists := s.items[key]; exists {
		return errors.NewConflictError("book already exists")
	}
	s.items[key] = *book
	return nil
}

func (s *BookStore) Put(ctx context.Context, book *entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[recordKey{book.ID, book.UserID}] = *book
	return nil
}

func (s *BookStore) Get(ctx context.Context, id, ownerID string) (*entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.items[recordKey{id, ownerID}]
	if !ok {
		return nil, errors.NewNotFoundError("book")
	}
	copied := book
	return &copied, nil
}

func (s *BookStore) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{id, ownerID}
	if _, ok := s.items[key]; !ok {
		return errors.NewNotFoundError("book")
	}
	delete(s.items, key)
	return nil
}

func (s *BookStore) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var books []*entities.Book
	for key, book := range s.items {
		if key.ownerID == ownerID {
			copied := book
			books = append(books, &copied)
		}
	}
	return books, nil
}

// TagStore is an in-memory ports.TagRepository.
type TagStore struct {
	mu    sync.RWMutex
	items map[recordKey]entities.Tag
}

// NewTagStore creates an empty TagStore.
func NewTagStore() *TagStore {
	return &TagStore{items: make(map[recordKey]entities.Tag)}
}

func (s *TagStore) Create(ctx context.Context, tag *entities.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{tag.ID, tag.UserID}
	if _, exists := s.items[key]; exists {
		return errors.NewConflictError("tag already exists")
	}
	s.items[key] = *tag
	return nil
}

func (s *TagStore) Get(ctx context.Context, id, ownerID string) (*entities.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.items[recordKey{id, ownerID}]
	if !ok {
		return nil, errors.NewNotFoundError("tag")
	}
	copied := tag
	return &copied, nil
}

func (s *TagStore) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{id, ownerID}
	if _, ok := s.items[key]; !ok {
		return errors.NewNotFoundError("tag")
	}
	delete(s.items, key)
	return nil
}

func (s *TagStore) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tags []*entities.Tag
	for key, tag := range s.items {
		if key.ownerID == ownerID {
			copied := tag
			tags = append(tags, &copied)
		}
	}
	return tags, nil
}

// CollectionStore is an in-memory ports.CollectionRepository.
type CollectionStore struct {
	mu    sync.RWMutex
	items map[recordKey]entities.Collection
}

// NewCollectionStore creates an empty CollectionStore.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{items: make(map[recordKey]entities.Collection)}
}

func (s *CollectionStore) Create(ctx context.Context, collection *entities.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{collection.ID, collection.UserID}
	if _, exists := s.items[key]; exists {
		return errors.NewConflictError("collection already exists")
	}
	s.items[key] = *collection
	return nil
}

func (s *CollectionStore) Put(ctx context.Context, collection *entities.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[recordKey{collection.ID, collection.UserID}] = *collection
	return nil
}

func (s *CollectionStore) Get(ctx context.Context, id, ownerID string) (*entities.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	collection, ok := s.items[recordKey{id, ownerID}]
	if !ok {
		return nil, errors.NewNotFoundError("collection")
	}
	copied := collection
	return &copied, nil
}

func (s *CollectionStore) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{id, ownerID}
	if _, ok := s.items[key]; !ok {
		return errors.NewNotFoundError("collection")
	}
	delete(s.items, key)
	return nil
}

func (s *CollectionStore) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var collections []*entities.Collection
	for key, collection := range s.items {
		if key.ownerID == ownerID {
			copied := collection
			collections = append(collections, &copied)
		}
	}
	return collections, nil
}

// ProgressStore is an in-memory ports.ProgressRepository keyed by
// (bookID, owner), so upserts naturally collapse to one record.
type ProgressStore struct {
	mu    sync.RWMutex
	items map[recordKey]entities.Progress
}

// NewProgressStore creates an empty ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{items: make(map[recordKey]entities.Progress)}
}

func (s *ProgressStore) Put(ctx context.Context, progress *entities.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[recordKey{progress.BookID, progress.UserID}] = *progress
	return nil
}

func (s *ProgressStore) Get(ctx context.Context, bookID, ownerID string) (*entities.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.items[recordKey{bookID, ownerID}]
	if !ok {
		return nil, errors.NewNotFoundError("progress")
	}
	copied := progress
	return &copied, nil
}

func (s *ProgressStore) Delete(ctx context.Context, bookID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, recordKey{bookID, ownerID})
	return nil
}

func (s *ProgressStore) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*entities.Progress
	for key, progress := range s.items {
		if key.ownerID == ownerID {
			copied := progress
			records = append(records, &copied)
		}
	}
	return records, nil
}

type linkKey struct {
	composite string
	ownerID   string
}

// RelationshipStore is an in-memory ports.RelationshipStore with the same
// composite-key semantics as the DynamoDB join tables.
type RelationshipStore struct {
	mu    sync.RWMutex
	items map[linkKey]struct {
		leftID  string
		rightID string
	}
}

// NewRelationshipStore creates an empty RelationshipStore.
func NewRelationshipStore() *RelationshipStore {
	return &RelationshipStore{items: make(map[linkKey]struct {
		leftID  string
		rightID string
	})}
}

func compositeKey(leftID, rightID string) string {
	return leftID + "_" + rightID
}

func (s *RelationshipStore) Link(ctx context.Context, ownerID, leftID, rightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[linkKey{compositeKey(leftID, rightID), ownerID}] = struct {
		leftID  string
		rightID string
	}{leftID, rightID}
	return nil
}

func (s *RelationshipStore) Unlink(ctx context.Context, ownerID, leftID, rightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, linkKey{compositeKey(leftID, rightID), ownerID})
	return nil
}

func (s *RelationshipStore) Exists(ctx context.Context, ownerID, leftID, rightID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[linkKey{compositeKey(leftID, rightID), ownerID}]
	return ok, nil
}

func (s *RelationshipStore) ListRightsForLeft(ctx context.Context, ownerID, leftID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rights []string
	for key, link := range s.items {
		if key.ownerID == ownerID && link.leftID == leftID {
			rights = append(rights, link.rightID)
		}
	}
	return rights, nil
}

func (s *RelationshipStore) ListLeftsForRight(ctx context.Context, ownerID, rightID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lefts []string
	for key, link := range s.items {
		if key.ownerID == ownerID && link.rightID == rightID {
			lefts = append(lefts, link.leftID)
		}
	}
	return lefts, nil
}

// EventLog is an in-memory ports.EventPublisher that records everything it
// is given, for tests and the local server.
type EventLog struct {
	mu     sync.Mutex
	Events []events.DomainEvent
}

// NewEventLog creates an empty EventLog.
func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Publish(ctx context.Context, event events.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, event)
	return nil
}

func (l *EventLog) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, batch...)
	return nil
}

// Recorded returns a snapshot of the published events.
func (l *EventLog) Recorded() []events.DomainEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.DomainEvent, len(l.Events))
	copy(out, l.Events)
	return out
}

// Interface conformance checks.
var (
	_ ports.BookRepository       = (*BookStore)(nil)
	_ ports.TagRepository        = (*TagStore)(nil)
	_ ports.CollectionRepository = (*CollectionStore)(nil)
	_ ports.ProgressRepository   = (*ProgressStore)(nil)
	_ ports.RelationshipStore    = (*RelationshipStore)(nil)
	_ ports.EventPublisher       = (*EventLog)(nil)
)
