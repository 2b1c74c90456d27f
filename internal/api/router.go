package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/pradeeprawatbgo/attrition-dashboard/internal/api/middleware"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler       http.HandlerFunc
	ListRecordsHandler  http.HandlerFunc
	SaveCommentsHandler http.HandlerFunc
	DeleteRowsHandler   http.HandlerFunc
	ExportHandler       http.HandlerFunc
	MetricsHandler      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", deps.HealthHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/records", deps.ListRecordsHandler)
		r.Post("/api/v1/records/comments", deps.SaveCommentsHandler)
		r.Post("/api/v1/records/delete", deps.DeleteRowsHandler)
		r.Get("/api/v1/records/export", deps.ExportHandler)

		r.Get("/api/v1/metrics", deps.MetricsHandler)
	})

	return r
}
