package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"membership-service/internal/httputil"
)

// AdminKeyMatches compares supplied against the configured admin key in
// constant time. An empty key on either side never matches.
func AdminKeyMatches(configured, supplied string) bool {
	if configured == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) == 1
}

// RequireAdminKey guards routes that take the admin key as the "key" query
// parameter.
func RequireAdminKey(configured string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !AdminKeyMatches(configured, r.URL.Query().Get("key")) {
				logger.WarnContext(r.Context(), "admin key rejected", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
