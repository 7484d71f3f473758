package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/render"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the database and the lock backend.
// A dead database is "critical"; a dead Redis is "degraded".
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"sqlite": checkDB(ctx, d),
			"redis":  checkRedis(ctx, d),
		}

		render.JSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if db, ok := components["sqlite"]; ok && !db.OK {
		return "critical"
	}
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "degraded"
	}
	return "ok"
}

func checkDB(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.DB.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: "api-unavailable", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.DB.Path()}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "locks-in-process"}
	}
	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Mode: "distributed", Impact: "bookmark-updates-blocked", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "distributed"}
}
