package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	coursesapi "github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/courses"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/docs"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/middleware"
	queryapi "github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/query"
	sessionapi "github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/session"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/metrics"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/response"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	queryHandler *queryapi.Handler,
	coursesHandler *coursesapi.Handler,
	sessionHandler *sessionapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"message": "Course Materials RAG System"})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	queryapi.RegisterRoutes(r, queryHandler)
	coursesapi.RegisterRoutes(r, coursesHandler)
	sessionapi.RegisterRoutes(r, sessionHandler)

	return r
}
