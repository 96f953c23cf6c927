// Package middleware holds the HTTP middlewares shared by the API
// routes.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/errs"
)

// BearerToken guards routes with a static API token. An empty
// configured token disables the check, which is the standalone mode
// default.
func BearerToken(token string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				errs.HTTPErrorResponse(w, log, errs.E(errs.Unauthenticated, errs.Str("invalid or missing api token")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
