// Package router sets up all HTTP routes and middleware chains for the
// AppForge API. Routes live under /api/v1 and are grouped per resource.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"appforge/internal/handlers"
	"appforge/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(menus *handlers.Menus, features *handlers.Features, packages *handlers.Packages, schema *handlers.Schema, fields *handlers.Fields, layouts *handlers.Layouts, generate *handlers.Generate) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Navigation tree
		r.Route("/menus", func(r chi.Router) {
			r.Get("/", menus.List)
			r.Get("/tree", menus.Tree)
			r.Post("/", menus.Create)
			r.Post("/reorder", menus.Reorder)
			r.Get("/{id}", menus.Get)
			r.Patch("/{id}", menus.Update)
			r.Delete("/{id}", menus.Delete)
			r.Post("/{id}/restore", menus.Restore)
			r.Delete("/{id}/force", menus.ForceDelete)
		})

		// Entitlement catalog
		r.Route("/features", func(r chi.Router) {
			r.Get("/", features.List)
			r.Get("/tree", features.Tree)
			r.Post("/", features.Create)
			r.Post("/reorder", features.Reorder)
			r.Get("/trash-box", features.TrashBox)
			r.Post("/generate", features.Generate)
			r.Get("/{id}", features.Get)
			r.Patch("/{id}", features.Update)
			r.Delete("/{id}", features.Delete)
			r.Post("/{id}/restore", features.Restore)
			r.Delete("/{id}/force", features.ForceDelete)
		})

		// Subscription packages
		r.Route("/packages", func(r chi.Router) {
			r.Get("/", packages.List)
			r.Get("/tree", packages.Tree)
			r.Post("/", packages.Create)
			r.Post("/reorder", packages.Reorder)
			r.Get("/{id}", packages.Get)
			r.Patch("/{id}", packages.Update)
			r.Delete("/{id}", packages.Delete)
			r.Post("/{id}/restore", packages.Restore)
			r.Delete("/{id}/force", packages.ForceDelete)
		})

		// Schema registry
		r.Route("/schema-entries", func(r chi.Router) {
			r.Get("/", schema.List)
			r.Post("/", schema.Create)
			r.Get("/{id}", schema.Get)
			r.Patch("/{id}", schema.Update)
			r.Delete("/{id}", schema.Delete)
			r.Post("/{id}/restore", schema.Restore)
			r.Delete("/{id}/force", schema.ForceDelete)

			// Generation pipeline
			r.Post("/{id}/generate", generate.Run)

			// Field categories and field specs
			r.Route("/{entryID}/categories", func(r chi.Router) {
				r.Get("/", fields.ListCategories)
				r.Post("/", fields.CreateCategory)
				r.Put("/{categoryID}", fields.UpdateCategory)
				r.Delete("/{categoryID}", fields.DeleteCategory)

				r.Route("/{categoryID}/fields", func(r chi.Router) {
					r.Post("/", fields.CreateField)
					r.Put("/{fieldID}", fields.UpdateField)
					r.Delete("/{fieldID}", fields.DeleteField)
				})
			})

			// Presentation layouts and statistics
			r.Route("/{entryID}/table-layout", func(r chi.Router) {
				r.Get("/", layouts.GetTableLayout)
				r.Put("/", layouts.PutTableLayout)
			})
			r.Route("/{entryID}/card-layout", func(r chi.Router) {
				r.Get("/", layouts.GetCardLayout)
				r.Put("/", layouts.PutCardLayout)
			})
			r.Route("/{entryID}/statistics", func(r chi.Router) {
				r.Get("/", layouts.ListStatistics)
				r.Post("/", layouts.CreateStatistic)
				r.Put("/{statisticID}", layouts.UpdateStatistic)
				r.Delete("/{statisticID}", layouts.DeleteStatistic)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
