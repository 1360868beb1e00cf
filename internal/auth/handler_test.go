package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"membership-service/internal/account"
	"membership-service/internal/auth"
	"membership-service/internal/logger"
	"membership-service/internal/metrics"
	"membership-service/internal/validation"
	"membership-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testAdminKey = "test-admin-key"

type authEnv struct {
	router chi.Router
	db     *bun.DB
	repo   account.Repository
	clock  *fakeClock
}

func setupAuth(t *testing.T) *authEnv {
	sqlite := testdb.Setup(t)
	sqlite.RunMigrations(t, (*account.User)(nil))

	clock := newFakeClock()
	repo := account.NewRepository(sqlite.DB, metrics.NewMock())
	service := auth.NewService(repo, metrics.NewMock(), logger.Discard())
	sessions := newTestManager(auth.NewMemorySessionStore(), clock)
	handler := auth.NewHandler(service, sessions, validation.New(), testAdminKey, logger.Discard())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return &authEnv{router: router, db: sqlite.DB, repo: repo, clock: clock}
}

func (env *authEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *authEnv) register(t *testing.T, email, password string) int64 {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"adminKey":        testAdminKey,
		"email":           email,
		"password":        password,
		"canLaptopHelp":   true,
		"telegramChannel": "https://t.me/ave",
	})
	w := env.do(t, http.MethodPost, "/auth/register", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.True(t, response.OK)
	return response.ID
}

func (env *authEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	w := env.do(t, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupAuth(t)

		id := env.register(t, "amare@example.com", "pw1")
		assert.Equal(t, int64(1), id)

		user, err := env.repo.GetByEmail(context.Background(), "amare@example.com")
		require.NoError(t, err)
		assert.Equal(t, "member", user.Role)
		assert.NotEqual(t, "pw1", user.PasswordHash)
		assert.True(t, auth.VerifyPassword("pw1", user.PasswordHash))
		assert.True(t, user.CanLaptopHelp)
		assert.Nil(t, user.WhatsappChannel)
		require.NotNil(t, user.TelegramChannel)
		assert.Equal(t, "https://t.me/ave", *user.TelegramChannel)
	})

	t.Run("WrongAdminKey", func(t *testing.T) {
		env := setupAuth(t)

		for _, key := range []string{"", "test-admin", "wrong", testAdminKey + "x"} {
			w := env.do(t, http.MethodPost, "/auth/register",
				`{"adminKey":"`+key+`","email":"a@x.com","password":"pw"}`)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "key %q", key)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		}
		assert.Equal(t, 0, testdb.CountRows(t, env.db, "users"))
	})

	t.Run("AdminKeyCheckedBeforeFields", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodPost, "/auth/register", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingPassword", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodPost, "/auth/register", `{"adminKey":"`+testAdminKey+`","email":"a@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Email and password are required."}`, w.Body.String())
		assert.Equal(t, 0, testdb.CountRows(t, env.db, "users"))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		env := setupAuth(t)
		env.register(t, "dup@example.com", "first")

		w := env.do(t, http.MethodPost, "/auth/register",
			`{"adminKey":"`+testAdminKey+`","email":"dup@example.com","password":"second"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"Email already registered."}`, w.Body.String())

		user, err := env.repo.GetByEmail(context.Background(), "dup@example.com")
		require.NoError(t, err)
		assert.True(t, auth.VerifyPassword("first", user.PasswordHash), "first account untouched")
		assert.Equal(t, 1, testdb.CountRows(t, env.db, "users"))
	})

	t.Run("NonBooleanFlagsRejected", func(t *testing.T) {
		env := setupAuth(t)

		for _, body := range []string{
			`{"adminKey":"` + testAdminKey + `","email":"a@x.com","password":"pw","memberId":"5"}`,
			`{"adminKey":"` + testAdminKey + `","email":"a@x.com","password":"pw","canVolunteer":1}`,
		} {
			w := env.do(t, http.MethodPost, "/auth/register", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.JSONEq(t, `{"error":"Invalid request body."}`, w.Body.String())
		}
		assert.Equal(t, 0, testdb.CountRows(t, env.db, "users"))
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupAuth(t)
		id := env.register(t, "amare@example.com", "pw1")

		w := env.do(t, http.MethodPost, "/auth/login", `{"email":"amare@example.com","password":"pw1"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, true, response["ok"])
		user := response["user"].(map[string]interface{})
		assert.Equal(t, float64(id), user["id"])
		assert.Equal(t, "amare@example.com", user["email"])
		assert.Equal(t, "member", user["role"])
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		env := setupAuth(t)
		env.register(t, "amare@example.com", "pw1")

		w := env.do(t, http.MethodPost, "/auth/login", `{"email":"amare@example.com","password":"pw2"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid email or password."}`, w.Body.String())
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("LongPassphrase", func(t *testing.T) {
		env := setupAuth(t)
		passphrase := strings.Repeat("correct horse ", 6)[:80]

		env.register(t, "long@example.com", passphrase)
		cookie := env.login(t, "long@example.com", passphrase)
		assert.NotEmpty(t, cookie.Value)

		w := env.do(t, http.MethodGet, "/auth/me", "", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"long@example.com"`)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"pw"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid email or password."}`, w.Body.String())
	})

	t.Run("MissingFields", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodPost, "/auth/login", `{"email":"amare@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Email and password are required."}`, w.Body.String())
	})
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("MeWithoutSession", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodGet, "/auth/me", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":false}`, w.Body.String())
	})

	t.Run("MeAndLinksWithSession", func(t *testing.T) {
		env := setupAuth(t)
		id := env.register(t, "amare@example.com", "pw1")
		cookie := env.login(t, "amare@example.com", "pw1")

		w := env.do(t, http.MethodGet, "/auth/me", "", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"user":{"id":`+jsonInt(id)+`,"email":"amare@example.com","role":"member"}}`, w.Body.String())

		w = env.do(t, http.MethodGet, "/member/links", "", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"links":{
			"financeHelp":false,"laptopHelp":true,"mentorshipHelp":false,"volunteer":false,
			"whatsappChannel":null,"telegramChannel":"https://t.me/ave"}}`, w.Body.String())
	})

	t.Run("LinksWithoutSession", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodGet, "/member/links", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Not logged in"}`, w.Body.String())
	})

	t.Run("SessionExpiresAfterEightHours", func(t *testing.T) {
		env := setupAuth(t)
		env.register(t, "amare@example.com", "pw1")
		cookie := env.login(t, "amare@example.com", "pw1")

		env.clock.Advance(8*time.Hour + time.Second)

		w := env.do(t, http.MethodGet, "/member/links", "", cookie)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = env.do(t, http.MethodGet, "/auth/me", "", cookie)
		assert.JSONEq(t, `{"ok":false}`, w.Body.String())
	})

	t.Run("Logout", func(t *testing.T) {
		env := setupAuth(t)
		env.register(t, "amare@example.com", "pw1")
		cookie := env.login(t, "amare@example.com", "pw1")

		w := env.do(t, http.MethodPost, "/auth/logout", "", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())

		w = env.do(t, http.MethodGet, "/auth/me", "", cookie)
		assert.JSONEq(t, `{"ok":false}`, w.Body.String())
	})

	t.Run("LogoutWithoutSession", func(t *testing.T) {
		env := setupAuth(t)

		w := env.do(t, http.MethodPost, "/auth/logout", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("LinksForDeletedAccount", func(t *testing.T) {
		env := setupAuth(t)
		env.register(t, "amare@example.com", "pw1")
		cookie := env.login(t, "amare@example.com", "pw1")

		_, err := env.db.ExecContext(context.Background(), "DELETE FROM users")
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/member/links", "", cookie)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to load user links"}`, w.Body.String())
	})
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
