package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/render"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed JSON body")

// decode reads a JSON request body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errMalformedBody
	}
	return nil
}

// respondError maps a service error to its HTTP status.
// Unexpected errors are logged and reported as 500 without detail.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		render.FieldError(w, ve.Field, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		render.Error(w, http.StatusNotFound, render.CodeNotFound, "not found")
	case errors.Is(err, errMalformedBody):
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, err.Error())
	default:
		log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		render.Error(w, http.StatusInternalServerError, render.CodeInternal, "internal error")
	}
}

// owner returns the authenticated owner; RequireOwner guarantees it is set on /api routes.
func owner(r *http.Request) string {
	o, _ := auth.OwnerFrom(r.Context())
	return o
}
