// Package rest wires the chi router over the domain services. Every API
// route sits behind the authentication middleware; the handlers then read the
// verified caller identity from the request context.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/interfaces/http/rest/handlers"
	"github.com/mohammedfirdouss/serverless-book-tracker/interfaces/http/rest/middleware"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
)

// Router builds the HTTP surface.
type Router struct {
	books       *services.BookService
	tags        *services.TagService
	collections *services.CollectionService
	progress    *services.ProgressService
	analytics   *services.AnalyticsService
	validator   *auth.JWTValidator
	enableCORS  bool
	logger      *zap.Logger
}

// NewRouter creates a Router.
func NewRouter(
	books *services.BookService,
	tags *services.TagService,
	collections *services.CollectionService,
	progress *services.ProgressService,
	analytics *services.AnalyticsService,
	validator *auth.JWTValidator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		books:       books,
		tags:        tags,
		collections: collections,
		progress:    progress,
		analytics:   analytics,
		validator:   validator,
		enableCORS:  enableCORS,
		logger:      logger,
	}
}

// Setup configures routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		bookHandler := handlers.NewBookHandler(rt.books, rt.logger)
		tagHandler := handlers.NewTagHandler(rt.tags, rt.logger)
		collectionHandler := handlers.NewCollectionHandler(rt.collections, rt.logger)
		progressHandler := handlers.NewProgressHandler(rt.progress, rt.analytics, rt.logger)

		r.Route("/books", func(r chi.Router) {
			r.Post("/", bookHandler.CreateBook)
			r.Get("/", bookHandler.ListBooks)
			r.Get("/{bookID}", bookHandler.GetBook)
			r.Put("/{bookID}", bookHandler.UpdateBook)
			r.Delete("/{bookID}", bookHandler.DeleteBook)

			r.Get("/{bookID}/tags", tagHandler.ListTagsForBook)
			r.Post("/{bookID}/tags/{tagID}", tagHandler.AttachTag)
			r.Delete("/{bookID}/tags/{tagID}", tagHandler.DetachTag)

			r.Put("/{bookID}/progress", progressHandler.RecordProgress)
			r.Get("/{bookID}/progress", progressHandler.GetProgress)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", tagHandler.CreateTag)
			r.Get("/", tagHandler.ListTags)
			r.Delete("/{tagID}", tagHandler.DeleteTag)
			r.Get("/{tagID}/books", tagHandler.ListBooksForTag)
		})

		r.Route("/collections", func(r chi.Router) {
			r.Post("/", collectionHandler.CreateCollection)
			r.Get("/", collectionHandler.ListCollections)
			r.Get("/{collectionID}", collectionHandler.GetCollection)
			r.Put("/{collectionID}", collectionHandler.UpdateCollection)
			r.Delete("/{collectionID}", collectionHandler.DeleteCollection)

			r.Get("/{collectionID}/books", collectionHandler.ListBooks)
			r.Post("/{collectionID}/books/{bookID}", collectionHandler.AddBook)
			r.Delete("/{collectionID}/books/{bookID}", collectionHandler.RemoveBook)
		})

		r.Get("/progress", progressHandler.ListProgress)
		r.Get("/summary", progressHandler.ReadingSummary)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
