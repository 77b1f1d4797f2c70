package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

const RequestIdHeader = "X-Request-Id"

// Tracing assigns a request id. An id sent by an upstream proxy is reused.
// The id is returned in the response header and stored in the request context.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId := strings.TrimSpace(r.Header.Get(RequestIdHeader))
		if reqId == "" || len(reqId) > 64 {
			reqId = uuid.NewString()
		}

		w.Header().Set(RequestIdHeader, reqId)
		next.ServeHTTP(w, r.WithContext(domain.SetRequestId(r.Context(), reqId)))
	})
}
