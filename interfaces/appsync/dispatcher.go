package appsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/observability"
)

// handlerFunc resolves one field for an authenticated caller.
type handlerFunc func(ctx context.Context, callerID string, args json.RawMessage) (interface{}, error)

// Dispatcher routes resolver events to domain services by field name. It
// validates argument shape before any service runs, and translates every
// failure into a stable caller-facing code so storage detail never leaks.
type Dispatcher struct {
	books       *services.BookService
	tags        *services.TagService
	collections *services.CollectionService
	progress    *services.ProgressService
	analytics   *services.AnalyticsService
	validate    *validator.Validate
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	logger      *zap.Logger
	handlers    map[string]handlerFunc
}

// NewDispatcher creates a Dispatcher over the given services. metrics and
// tracer may be nil to disable emission.
func NewDispatcher(
	books *services.BookService,
	tags *services.TagService,
	collections *services.CollectionService,
	progress *services.ProgressService,
	analytics *services.AnalyticsService,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Dispatcher {
	d := &Dispatcher{
		books:       books,
		tags:        tags,
		collections: collections,
		progress:    progress,
		analytics:   analytics,
		validate:    validator.New(),
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
	}
	d.handlers = map[string]handlerFunc{
		"createBook": d.createBook,
		"getBook":    d.getBook,
		"listBooks":  d.listBooks,
		"updateBook": d.updateBook,
		"deleteBook": d.deleteBook,

		"createTag":       d.createTag,
		"getTag":          d.getTag,
		"listTags":        d.listTags,
		"deleteTag":       d.deleteTag,
		"attachTag":       d.attachTag,
		"detachTag":       d.detachTag,
		"listTagsForBook": d.listTagsForBook,
		"listBooksForTag": d.listBooksForTag,

		"createCollection":         d.createCollection,
		"getCollection":            d.getCollection,
		"listCollections":          d.listCollections,
		"updateCollection":         d.updateCollection,
		"deleteCollection":         d.deleteCollection,
		"addBookToCollection":      d.addBookToCollection,
		"removeBookFromCollection": d.removeBookFromCollection,
		"listCollectionBooks":      d.listCollectionBooks,

		"recordProgress": d.recordProgress,
		"getProgress":    d.getProgress,
		"listProgress":   d.listProgress,

		"readingSummary": d.readingSummary,
	}
	return d
}

// Handle resolves one event. The returned error message always leads with the
// stable error code. An empty subject is rejected here so no anonymous
// invocation ever reaches a service or touches storage.
func (d *Dispatcher) Handle(ctx context.Context, event ResolveEvent) (interface{}, error) {
	start := time.Now()

	callerID := event.Identity.Sub
	if callerID == "" {
		return nil, resolverError(errors.NewValidationError("caller identity is required"))
	}

	handler, ok := d.handlers[event.Field]
	if !ok {
		return nil, resolverError(errors.NewValidationError(fmt.Sprintf("unknown field %q", event.Field)))
	}

	var result interface{}
	var err error
	if d.tracer != nil {
		err = d.tracer.TraceFunction(ctx, event.Field, func(ctx context.Context) error {
			result, err = handler(ctx, callerID, event.Arguments)
			return err
		})
	} else {
		result, err = handler(ctx, callerID, event.Arguments)
	}

	if d.metrics != nil {
		d.metrics.RecordOperation(ctx, event.Field, time.Since(start), err)
	}

	if err != nil {
		d.logOutcome(event.Field, callerID, err)
		return nil, resolverError(err)
	}

	d.logger.Debug("resolved",
		zap.String("field", event.Field),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (d *Dispatcher) logOutcome(field, callerID string, err error) {
	appErr := errors.GetAppError(err)
	if appErr != nil && (appErr.Type == errors.ErrorTypeInternal || appErr.Type == errors.ErrorTypeUnavailable) {
		d.logger.Error("resolver failed",
			zap.String("field", field),
			zap.String("callerId", callerID),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("resolver rejected",
		zap.String("field", field),
		zap.String("type", string(errType(err))),
	)
}

func errType(err error) errors.ErrorType {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Type
	}
	return errors.ErrorTypeInternal
}

// resolverError flattens an error into the "CODE: message" shape the managed
// API surfaces to clients. Causes stay behind, logged only.
func resolverError(err error) error {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		return fmt.Errorf("%s: internal error", errors.ErrorTypeInternal)
	}
	return fmt.Errorf("%s: %s", appErr.Type, appErr.Message)
}

// decodeArgs unmarshals and structurally validates resolver arguments.
func (d *Dispatcher) decodeArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.NewValidationError("malformed arguments").WithCause(err)
	}
	if err := d.validate.Struct(v); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

type createBookArgs struct {
	Title     string `json:"title" validate:"required,max=512"`
	Author    string `json:"author" validate:"required,max=256"`
	ISBN      string `json:"isbn" validate:"omitempty,max=32"`
	CoverURL  string `json:"coverUrl" validate:"omitempty,url"`
	Publisher string `json:"publisher" validate:"omitempty,max=256"`
	PageCount int    `json:"pageCount" validate:"omitempty,min=0"`
	Notes     string `json:"notes" validate:"omitempty,max=4096"`
}

func (d *Dispatcher) createBook(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args createBookArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.books.Create(ctx, callerID, services.CreateBookInput{
		Title:     args.Title,
		Author:    args.Author,
		ISBN:      args.ISBN,
		CoverURL:  args.CoverURL,
		Publisher: args.Publisher,
		PageCount: args.PageCount,
		Notes:     args.Notes,
	})
}

type bookIDArgs struct {
	BookID string `json:"bookId" validate:"required"`
}

func (d *Dispatcher) getBook(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args bookIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.books.Get(ctx, callerID, args.BookID)
}

func (d *Dispatcher) listBooks(ctx context.Context, callerID string, _ json.RawMessage) (interface{}, error) {
	return d.books.List(ctx, callerID)
}

type updateBookArgs struct {
	BookID    string  `json:"bookId" validate:"required"`
	Title     *string `json:"title" validate:"omitempty,max=512"`
	Author    *string `json:"author" validate:"omitempty,max=256"`
	ISBN      *string `json:"isbn" validate:"omitempty,max=32"`
	CoverURL  *string `json:"coverUrl" validate:"omitempty,url"`
	Publisher *string `json:"publisher" validate:"omitempty,max=256"`
	PageCount *int    `json:"pageCount" validate:"omitempty,min=0"`
	Notes     *string `json:"notes" validate:"omitempty,max=4096"`
}

func (d *Dispatcher) updateBook(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args updateBookArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.books.Update(ctx, callerID, args.BookID, services.UpdateBookInput{
		Title:     args.Title,
		Author:    args.Author,
		ISBN:      args.ISBN,
		CoverURL:  args.CoverURL,
		Publisher: args.Publisher,
		PageCount: args.PageCount,
		Notes:     args.Notes,
	})
}

type deletedResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

func (d *Dispatcher) deleteBook(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args bookIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.books.Delete(ctx, callerID, args.BookID); err != nil {
		return nil, err
	}
	return deletedResponse{Deleted: true, ID: args.BookID}, nil
}

type createTagArgs struct {
	Label string `json:"label" validate:"required,max=128"`
}

func (d *Dispatcher) createTag(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args createTagArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.tags.Create(ctx, callerID, args.Label)
}

type tagIDArgs struct {
	TagID string `json:"tagId" validate:"required"`
}

func (d *Dispatcher) getTag(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args tagIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.tags.Get(ctx, callerID, args.TagID)
}

func (d *Dispatcher) listTags(ctx context.Context, callerID string, _ json.RawMessage) (interface{}, error) {
	return d.tags.List(ctx, callerID)
}

func (d *Dispatcher) deleteTag(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args tagIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.tags.Delete(ctx, callerID, args.TagID); err != nil {
		return nil, err
	}
	return deletedResponse{Deleted: true, ID: args.TagID}, nil
}

type bookTagArgs struct {
	BookID string `json:"bookId" validate:"required"`
	TagID  string `json:"tagId" validate:"required"`
}

type linkResponse struct {
	Linked bool `json:"linked"`
}

func (d *Dispatcher) attachTag(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args bookTagArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.tags.Attach(ctx, callerID, args.BookID, args.TagID); err != nil {
		return nil, err
	}
	return linkResponse{Linked: true}, nil
}

func (d *Dispatcher) detachTag(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args bookTagArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.tags.Detach(ctx, callerID, args.BookID, args.TagID); err != nil {
		return nil, err
	}
	return linkResponse{Linked: false}, nil
}

func (d *Dispatcher) listTagsForBook(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args bookIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.tags.ListForBook(ctx, callerID, args.BookID)
}

func (d *Dispatcher) listBooksForTag(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args tagIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.tags.ListBooksForTag(ctx, callerID, args.TagID)
}

type createCollectionArgs struct {
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description" validate:"omitempty,max=2048"`
}

func (d *Dispatcher) createCollection(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args createCollectionArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.collections.Create(ctx, callerID, args.Name, args.Description)
}

type collectionIDArgs struct {
	CollectionID string `json:"collectionId" validate:"required"`
}

func (d *Dispatcher) getCollection(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args collectionIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.collections.Get(ctx, callerID, args.CollectionID)
}

func (d *Dispatcher) listCollections(ctx context.Context, callerID string, _ json.RawMessage) (interface{}, error) {
	return d.collections.List(ctx, callerID)
}

type updateCollectionArgs struct {
	CollectionID string  `json:"collectionId" validate:"required"`
	Name         *string `json:"name" validate:"omitempty,max=256"`
	Description  *string `json:"description" validate:"omitempty,max=2048"`
}

func (d *Dispatcher) updateCollection(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args updateCollectionArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.collections.Update(ctx, callerID, args.CollectionID, services.UpdateCollectionInput{
		Name:        args.Name,
		Description: args.Description,
	})
}

func (d *Dispatcher) deleteCollection(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args collectionIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.collections.Delete(ctx, callerID, args.CollectionID); err != nil {
		return nil, err
	}
	return deletedResponse{Deleted: true, ID: args.CollectionID}, nil
}

type collectionBookArgs struct {
	CollectionID string `json:"collectionId" validate:"required"`
	BookID       string `json:"bookId" validate:"required"`
}

func (d *Dispatcher) addBookToCollection(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args collectionBookArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.collections.AddBook(ctx, callerID, args.CollectionID, args.BookID); err != nil {
		return nil, err
	}
	return linkResponse{Linked: true}, nil
}

func (d *Dispatcher) removeBookFromCollection(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args collectionBookArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := d.collections.RemoveBook(ctx, callerID, args.CollectionID, args.BookID); err != nil {
		return nil, err
	}
	return linkResponse{Linked: false}, nil
}

func (d *Dispatcher) listCollectionBooks(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args collectionIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.collections.ListBooks(ctx, callerID, args.CollectionID)
}

type recordProgressArgs struct {
	BookID     string  `json:"bookId" validate:"required"`
	Page       int     `json:"page" validate:"omitempty,min=0"`
	Percentage float64 `json:"percentage" validate:"omitempty,min=0,max=100"`
	Status     string  `json:"status" validate:"omitempty,oneof=unstarted in-progress finished"`
}

func (d *Dispatcher) recordProgress(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args recordProgressArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	status := entities.ReadingStatus(args.Status)
	if args.Status == "" {
		status = entities.StatusUnstarted
	}
	return d.progress.Record(ctx, callerID, services.RecordProgressInput{
		BookID:     args.BookID,
		Page:       args.Page,
		Percentage: args.Percentage,
		Status:     status,
	})
}

func (d *Dispatcher) getProgress(ctx context.Context, callerID string, raw json.RawMessage) (interface{}, error) {
	var args bookIDArgs
	if err := d.decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.progress.Get(ctx, callerID, args.BookID)
}

func (d *Dispatcher) listProgress(ctx context.Context, callerID string, _ json.RawMessage) (interface{}, error) {
	return d.progress.List(ctx, callerID)
}

func (d *Dispatcher) readingSummary(ctx context.Context, callerID string, _ json.RawMessage) (interface{}, error) {
	return d.analytics.Summary(ctx, callerID)
}
