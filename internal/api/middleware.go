// Package api implements the Inventar REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireBearer guards every route with a static bearer token. The router
// only installs it in token mode; disabled mode never reaches this code.
// Comparison is constant-time so the token cannot be probed byte by byte.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
