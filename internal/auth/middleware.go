package auth

import (
	"context"
	"net/http"

	"membership-service/internal/httputil"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireSession rejects requests without a live session and stores the
// identity in the request context.
func (m *SessionManager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.Current(r)
		if !ok {
			m.logger.WarnContext(r.Context(), "no active session", "path", r.URL.Path)
			httputil.RespondWithError(w, http.StatusUnauthorized, "Not logged in")
			return
		}

		ctx := WithIdentity(r.Context(), *identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the identity stored by RequireSession.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
