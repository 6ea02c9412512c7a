package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router: health check plus the
// session-scoped wizard API.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/contacts-file", h.UploadContactsFile)
			r.Post("/upload", h.Upload)
			r.Post("/mappings", h.SetMappings)
			r.Post("/autofix", h.AutoFix)
			r.Post("/placeholder-emails", h.PlaceholderEmails)
			r.Post("/duplicates/resolve", h.ResolveDuplicates)
			r.Post("/duplicates/resolve-all", h.ResolveAllDuplicates)
			r.Get("/preview", h.Preview)
			r.Get("/export", h.Export)
		})
		r.Get("/runs", h.RecentRuns)
	})

	return r
}
