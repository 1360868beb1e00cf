package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "ave_session"
	DefaultSessionTTL = 8 * time.Hour
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type SessionOptions struct {
	Secret string
	TTL    time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// SessionManager binds server-side sessions to a signed cookie. The cookie only
// carries the session id; the identity lives in the store.
type SessionManager struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
	logger *slog.Logger
}

func NewSessionManager(store SessionStore, opts SessionOptions, logger *slog.Logger) *SessionManager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionManager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		secure: opts.Secure,
		now:    opts.Now,
		logger: logger,
	}
}

// Issue creates a session for identity and sets the session cookie on w.
func (m *SessionManager) Issue(ctx context.Context, w http.ResponseWriter, identity Identity) (*Session, error) {
	now := m.now()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    identity.ID,
		Email:     identity.Email,
		Role:      identity.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(ctx, session.ID)
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
		MaxAge:   int(m.ttl / time.Second),
	})

	return session, nil
}

// Current returns the identity bound to the request's session cookie.
func (m *SessionManager) Current(r *http.Request) (*Identity, bool) {
	ctx := r.Context()

	sid, err := m.sessionID(r, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		if stale, staleErr := m.sessionID(r, jwt.WithoutClaimsValidation()); staleErr == nil {
			m.dropExpired(ctx, stale)
		}
		return nil, false
	}
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			m.logger.DebugContext(ctx, "rejected session cookie", "error", err)
		}
		return nil, false
	}

	session, err := m.store.Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.ErrorContext(ctx, "failed to load session", "error", err)
		}
		return nil, false
	}

	if session.ExpiredAt(m.now()) {
		m.dropExpired(ctx, sid)
		return nil, false
	}

	identity := session.Identity()
	return &identity, true
}

// Destroy deletes the request's session, if any, and clears the cookie.
func (m *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	// An expired token still names a session worth deleting.
	sid, err := m.sessionID(r, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sid)
}

func (m *SessionManager) sessionID(r *http.Request, opts ...jwt.ParserOption) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}

func (m *SessionManager) dropExpired(ctx context.Context, sid string) {
	if err := m.store.Delete(ctx, sid); err != nil {
		m.logger.WarnContext(ctx, "failed to delete expired session", "error", err)
	}
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Close releases the session store.
func (m *SessionManager) Close() error {
	return m.store.Close()
}
