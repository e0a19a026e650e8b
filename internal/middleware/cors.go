package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsHeaders = "Content-Type, Authorization"
	corsMaxAge  = "600"
)

var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// CORS answers preflights and tags responses for the map page. With no
// origins listed every origin is allowed; otherwise only the listed ones
// get CORS headers. Tokens travel in the Authorization header, so
// credentials are never allowed.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := func(origin string) bool {
		return len(origins) == 0 || slices.Contains(origins, origin)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !allowed(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			if !slices.Contains(corsMethods, strings.ToUpper(r.Header.Get("Access-Control-Request-Method"))) {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
			w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
