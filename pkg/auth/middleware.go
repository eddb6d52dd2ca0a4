package auth

import (
	"errors"
	"net/http"
	apperrors "staydesk/pkg/errors"
	httputil "staydesk/pkg/http"
	"staydesk/pkg/logger"
	"staydesk/pkg/middleware"
)

// Authenticate resolves the bearer token into a Caller. Requests without a token
// continue anonymously and the services decide what anonymous callers may do;
// a token that is present but invalid is rejected outright.
func Authenticate(verifier *Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if errors.Is(err, ErrMissingToken) {
				next.ServeHTTP(w, r)
				return
			}

			if err == nil {
				caller, parseErr := verifier.Parse(token)
				if parseErr == nil {
					next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
					return
				}
				err = parseErr
			}

			log.Warn("Rejected bearer token",
				"request_id", middleware.RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			if writeErr := httputil.WriteError(w, apperrors.Unauthorized("invalid or expired token")); writeErr != nil {
				log.Error("failed to write error response", "handler", "Authenticate", "operation", "WriteError", "error", writeErr)
			}
		})
	}
}

// CallerKeyExtractor keys rate limits and idempotency entries by caller id,
// falling back to the client address for anonymous requests.
func CallerKeyExtractor(r *http.Request) string {
	if caller := CallerFromContext(r.Context()); caller.IsAuthenticated() {
		return "caller:" + caller.ID
	}
	return "addr:" + middleware.RemoteAddrExtractor(r)
}
