package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/render"
)

func ListCollections(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Collections.ListByOwner(r.Context(), owner(r))
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, list)
	}
}

func GetCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Collections.Get(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, c)
	}
}

func CreateCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.CollectionInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, d.Logger, err)
			return
		}

		c, err := d.Collections.Create(r.Context(), owner(r), in)
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusCreated, c)
	}
}

// UpdateCollection handles PUT (full) and PATCH (partial).
func UpdateCollection(d deps.Deps, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.CollectionInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, d.Logger, err)
			return
		}

		c, err := d.Collections.Update(r.Context(), owner(r), chi.URLParam(r, "id"), in, !partial)
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, c)
	}
}

func DeleteCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Collections.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.NoContent(w)
	}
}

// CollectionBookmarks lists the owner's bookmarks inside one collection.
func CollectionBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Bookmarks.ListByCollection(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, list)
	}
}
