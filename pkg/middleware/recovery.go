package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	apperrors "staydesk/pkg/errors"
	httputil "staydesk/pkg/http"
	"staydesk/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("Panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					panicErr := apperrors.Internal("Internal server error", fmt.Errorf("panic: %v", rec))
					if err := httputil.WriteError(w, panicErr); err != nil {
						log.Error("failed to write error response", "handler", "Recovery", "operation", "WriteError", "error", err)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
