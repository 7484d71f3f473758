package mw

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/httpserver/render"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// RequireOwner rejects requests without a valid bearer token and stores the
// token subject as the request owner.
func RequireOwner(v *auth.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := v.VerifyHeader(r.Header.Get("Authorization"))
			if err != nil {
				msg := "invalid credentials"
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					msg = "authentication credentials were not provided"
				case errors.Is(err, auth.ErrExpiredToken):
					msg = "token has expired"
				}
				log.Debug("rejected request", logger.String("path", r.URL.Path), logger.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="marks"`)
				render.Error(w, http.StatusUnauthorized, render.CodeUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
		})
	}
}
