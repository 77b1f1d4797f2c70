// Package middleware contains the HTTP middlewares of the API server.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/h44z/wg-portal-routeros/internal/app/api/core/respond"
)

// Recovery recovers from panics of later handlers and answers with 500.
// It must be the first middleware of the chain.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			if errors.Is(err, http.ErrAbortHandler) || isBrokenPipeError(err) {
				return // client went away, nothing to answer
			}

			slog.Error("recovered from panic", "method", r.Method, "path", r.URL.Path, "error", err,
				"stack", string(debug.Stack()))

			respond.JSON(w, http.StatusInternalServerError, map[string]string{
				"Message": "Internal Server Error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}

func isBrokenPipeError(err error) bool {
	var syscallErr *os.SyscallError
	if errors.As(err, &syscallErr) {
		errMsg := strings.ToLower(syscallErr.Err.Error())
		return strings.Contains(errMsg, "broken pipe") || strings.Contains(errMsg, "connection reset by peer")
	}
	return false
}
