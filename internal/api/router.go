package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/health", apiHandler.HealthHandler)

	r.Route("/insights", func(r chi.Router) {
		r.Post("/file", apiHandler.UploadFileHandler)
		r.Get("/", apiHandler.ListInsightsHandler)
		r.Get("/search", apiHandler.SearchInsightsHandler)
		r.Get("/{cacheKey}", apiHandler.GetInsightsHandler)
	})

	r.Get("/uploads", apiHandler.ListUploadsHandler)

	return r
}
