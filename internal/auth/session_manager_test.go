package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"membership-service/internal/auth"
	"membership-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(store auth.SessionStore, clock *fakeClock) *auth.SessionManager {
	return auth.NewSessionManager(store, auth.SessionOptions{
		Secret: "test-session-secret",
		Now:    clock.Now,
	}, logger.Discard())
}

func issueCookie(t *testing.T, m *auth.SessionManager) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	_, err := m.Issue(context.Background(), w, auth.Identity{ID: 3, Email: "m@example.org", Role: "member"})
	require.NoError(t, err)

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func requestWithCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestSessionManager(t *testing.T) {
	t.Run("IssueSetsCookie", func(t *testing.T) {
		m := newTestManager(auth.NewMemorySessionStore(), newFakeClock())

		c := issueCookie(t, m)

		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 8*60*60, c.MaxAge)
		assert.NotEmpty(t, c.Value)
	})

	t.Run("CurrentWithinLifetime", func(t *testing.T) {
		clock := newFakeClock()
		m := newTestManager(auth.NewMemorySessionStore(), clock)
		c := issueCookie(t, m)

		clock.Advance(8*time.Hour - time.Second)

		identity, ok := m.Current(requestWithCookie(c))
		require.True(t, ok)
		assert.Equal(t, auth.Identity{ID: 3, Email: "m@example.org", Role: "member"}, *identity)
	})

	t.Run("ExpiresAfterEightHours", func(t *testing.T) {
		clock := newFakeClock()
		store := auth.NewMemorySessionStore()
		m := newTestManager(store, clock)
		c := issueCookie(t, m)

		clock.Advance(8*time.Hour + time.Second)

		_, ok := m.Current(requestWithCookie(c))
		assert.False(t, ok)
	})

	t.Run("ExpiredSessionIsDeleted", func(t *testing.T) {
		clock := newFakeClock()
		store := auth.NewMemorySessionStore()
		m := newTestManager(store, clock)
		c := issueCookie(t, m)

		clock.Advance(8 * time.Hour)
		_, ok := m.Current(requestWithCookie(c))
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("NoCookie", func(t *testing.T) {
		m := newTestManager(auth.NewMemorySessionStore(), newFakeClock())

		_, ok := m.Current(requestWithCookie(nil))
		assert.False(t, ok)
	})

	t.Run("ForgedCookie", func(t *testing.T) {
		clock := newFakeClock()
		m := newTestManager(auth.NewMemorySessionStore(), clock)
		c := issueCookie(t, m)

		other := auth.NewSessionManager(auth.NewMemorySessionStore(), auth.SessionOptions{
			Secret: "a-different-secret",
			Now:    clock.Now,
		}, logger.Discard())

		_, ok := other.Current(requestWithCookie(c))
		assert.False(t, ok)

		_, ok = m.Current(requestWithCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"}))
		assert.False(t, ok)
	})

	t.Run("DestroyEndsSession", func(t *testing.T) {
		store := auth.NewMemorySessionStore()
		m := newTestManager(store, newFakeClock())
		c := issueCookie(t, m)
		require.Equal(t, 1, store.Len())

		w := httptest.NewRecorder()
		require.NoError(t, m.Destroy(context.Background(), w, requestWithCookie(c)))

		assert.Equal(t, 0, store.Len())
		cleared := w.Result().Cookies()
		require.Len(t, cleared, 1)
		assert.Equal(t, -1, cleared[0].MaxAge)

		_, ok := m.Current(requestWithCookie(c))
		assert.False(t, ok, "old cookie no longer resolves")
	})

	t.Run("DestroyWithoutSession", func(t *testing.T) {
		m := newTestManager(auth.NewMemorySessionStore(), newFakeClock())

		w := httptest.NewRecorder()
		assert.NoError(t, m.Destroy(context.Background(), w, requestWithCookie(nil)))
	})

	t.Run("RequireSession", func(t *testing.T) {
		m := newTestManager(auth.NewMemorySessionStore(), newFakeClock())
		c := issueCookie(t, m)

		var seen auth.Identity
		protected := m.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		w := httptest.NewRecorder()
		protected.ServeHTTP(w, requestWithCookie(nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Not logged in"}`, w.Body.String())

		w = httptest.NewRecorder()
		protected.ServeHTTP(w, requestWithCookie(c))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, int64(3), seen.ID)
	})
}

func TestAdminKeyMatches(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		supplied   string
		want       bool
	}{
		{"Exact", "s3cret-key", "s3cret-key", true},
		{"Empty", "s3cret-key", "", false},
		{"Prefix", "s3cret-key", "s3cret", false},
		{"Longer", "s3cret-key", "s3cret-key!", false},
		{"CaseDiffers", "s3cret-key", "S3CRET-KEY", false},
		{"NothingConfigured", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.AdminKeyMatches(tt.configured, tt.supplied))
		})
	}
}
