package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/render"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz is ready once the database answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			render.JSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		render.JSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
