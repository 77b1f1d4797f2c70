package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CorsOptions configure the cross-origin policy of the API for dashboard frontends served elsewhere.
type CorsOptions struct {
	// AllowedOrigins lists the accepted origins, "*" accepts all. Entries may contain one "*" wildcard,
	// e.g. "https://*.example.com".
	AllowedOrigins []string
	MaxAge         int // seconds, 0 omits the header
}

var (
	corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowedHeaders = "Authorization, Content-Type, Accept, " + RequestIdHeader
)

// Cors answers preflight requests and sets the CORS headers for allowed origins.
// Requests of other origins are passed on without CORS headers, the browser blocks them.
func Cors(opts CorsOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			allowed := opts.isAllowed(origin)
			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", RequestIdHeader)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
					if opts.MaxAge > 0 {
						w.Header().Set("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (o CorsOptions) isAllowed(origin string) bool {
	origin = strings.ToLower(strings.TrimRight(origin, "/"))
	for _, pattern := range o.AllowedOrigins {
		pattern = strings.ToLower(strings.TrimRight(strings.TrimSpace(pattern), "/"))
		if pattern == "*" || pattern == origin {
			return true
		}
		if prefix, suffix, found := strings.Cut(pattern, "*"); found &&
			len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
