package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

func init() { Register(registerCollections) }

func registerCollections(r chi.Router, d deps.Deps) {
	r.Route("/api/collections", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RequireOwner(d.Verifier, d.Logger))

		r.Get("/", handlers.ListCollections(d))
		r.Post("/", handlers.CreateCollection(d))
		r.Get("/{id}", handlers.GetCollection(d))
		r.Put("/{id}", handlers.UpdateCollection(d, false))
		r.Patch("/{id}", handlers.UpdateCollection(d, true))
		r.Delete("/{id}", handlers.DeleteCollection(d))
		r.Get("/{id}/bookmarks", handlers.CollectionBookmarks(d))
	})
}
