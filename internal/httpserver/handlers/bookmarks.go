package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/render"
	"github.com/MrSnakeDoc/marks/internal/ingest"
)

// bookmarkInput is the writable part of a bookmark. Every other field is derived.
type bookmarkInput struct {
	URL           *string   `json:"url"`
	CollectionIDs *[]string `json:"collection_ids"`
}

func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Bookmarks.ListByOwner(r.Context(), owner(r))
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, list)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Bookmarks.Get(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, b)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in bookmarkInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, d.Logger, err)
			return
		}

		b, err := d.Ingest.Create(r.Context(), ingest.Request{
			Owner:         owner(r),
			URL:           deref(in.URL),
			CollectionIDs: in.CollectionIDs,
		})
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusCreated, b)
	}
}

// UpdateBookmark handles PUT (url required) and PATCH (url optional, the
// stored one is re-fetched when omitted). Both re-run metadata extraction.
func UpdateBookmark(d deps.Deps, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in bookmarkInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, d.Logger, err)
			return
		}

		b, err := d.Ingest.Update(r.Context(), chi.URLParam(r, "id"), ingest.Request{
			Owner:         owner(r),
			URL:           deref(in.URL),
			KeepURL:       partial && in.URL == nil,
			CollectionIDs: in.CollectionIDs,
		})
		if err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.JSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bookmarks.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
			respondError(w, r, d.Logger, err)
			return
		}
		render.NoContent(w)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
