package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	// Every write fetches a remote page, so writes share a per-IP budget.
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMinute,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})

	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RequireOwner(d.Verifier, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.With(limit).Post("/", handlers.CreateBookmark(d))
		r.Get("/{id}", handlers.GetBookmark(d))
		r.With(limit).Put("/{id}", handlers.UpdateBookmark(d, false))
		r.With(limit).Patch("/{id}", handlers.UpdateBookmark(d, true))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
	})
}
