package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/db"
	"github.com/scoopworks/inventory-api/internal/users"
)

const testCookie = "access_token"

type handlerFixture struct {
	handler *Handler
	tokens  *TokenManager
	conn    *sql.DB
}

func newHandlerFixture(t *testing.T) handlerFixture {
	t.Helper()
	conn, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), conn))

	vocab := permission.DefaultVocabulary()
	repo := users.NewRepository(conn)
	tokens := NewTokenManager("test-secret", time.Hour)
	handler := NewHandler(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewService(repo),
		users.NewService(repo, vocab),
		repo,
		tokens,
		permission.NewResolver(vocab),
		testCookie,
	)
	return handlerFixture{handler: handler, tokens: tokens, conn: conn}
}

func (f handlerFixture) seedUser(t *testing.T, email, password string, tokens permission.TokenSet) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.conn.Exec(`INSERT INTO users (email, password, roles) VALUES (?, ?, ?)`,
		email, string(hash), tokens.Encode("|"))
	require.NoError(t, err)
}

func (f handlerFixture) router() chi.Router {
	r := chi.NewRouter()
	f.handler.MountRoutes(r, r.With(f.testAuthenticate))
	return r
}

// testAuthenticate stands in for the real guard so these tests do not
// depend on the middleware package.
func (f handlerFixture) testAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := TokenFromRequest(r, testCookie)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		identity, err := f.tokens.Verify(token)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

func postJSON(target, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestLoginSuccess(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "admin@shop.test", "hunter2", permission.NewTokenSet())

	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, postJSON("/login", `{"email":"admin@shop.test","password":"hunter2"}`))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		AccessToken string `json:"accessToken"`
		Email       string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "admin@shop.test", body.Email)

	identity, err := f.tokens.Verify(body.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin@shop.test", identity.Email)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	require.Equal(t, testCookie, cookie.Name)
	require.Equal(t, body.AccessToken, cookie.Value)
	require.Equal(t, "/", cookie.Path)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "admin@shop.test", "hunter2", permission.NewTokenSet())

	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, postJSON("/login", `{"email":"admin@shop.test","password":"wrong"}`))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t,
		`{"errors":[{"name":"error.invalidCredentials","type":"general","message":"Invalid email/password"}]}`,
		w.Body.String())
}

func TestLoginUnknownEmailSamePayload(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, postJSON("/login", `{"email":"nobody@shop.test","password":"hunter2"}`))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t,
		`{"errors":[{"name":"error.invalidCredentials","type":"general","message":"Invalid email/password"}]}`,
		w.Body.String())
}

func TestLoginStorageFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	mock.ExpectQuery("SELECT id, email, password, roles").
		WillReturnError(errors.New("disk I/O error"))

	vocab := permission.DefaultVocabulary()
	repo := users.NewRepository(conn)
	handler := NewHandler(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewService(repo),
		users.NewService(repo, vocab),
		repo,
		NewTokenManager("test-secret", time.Hour),
		permission.NewResolver(vocab),
		testCookie,
	)
	router := chi.NewRouter()
	handler.MountRoutes(router, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postJSON("/login", `{"email":"admin@shop.test","password":"hunter2"}`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t,
		`{"errors":[{"name":"error.http.internalServer","type":"general","message":"Server error."}]}`,
		w.Body.String(),
		"a store failure must not be reported as bad credentials")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginValidationErrors(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, postJSON("/login", `{"email":"not-an-email","password":""}`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"errors":[
		{"name":"error.invalidEmail","type":"email","message":"Please enter an email"},
		{"name":"error.invalidPassword","type":"password","message":"Please enter a password"}
	]}`, w.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/logout", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, testCookie, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestMeReflectsEffectivePermissions(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "viewer@shop.test", "hunter2",
		permission.NewTokenSet(permission.SystemProductRead))

	token, err := f.tokens.Issue(Identity{ID: 1, Email: "viewer@shop.test"})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.AddCookie(&http.Cookie{Name: testCookie, Value: token})

	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{
		"email": "viewer@shop.test",
		"isAdmin": false,
		"permissions": {
			"canAddProduct": false,
			"canViewProduct": true,
			"canEditProduct": false,
			"canDeleteProduct": false
		}
	}`, w.Body.String())
}

func TestAdminModeToggleRoundtrip(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser(t, "admin@shop.test", "hunter2", permission.NewTokenSet())

	token, err := f.tokens.Issue(Identity{ID: 1, Email: "admin@shop.test"})
	require.NoError(t, err)
	router := f.router()

	toggle := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/admin-mode", nil)
		r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}
	me := func() map[string]any {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	require.Equal(t, http.StatusNoContent, toggle().Code)
	require.Equal(t, true, me()["isAdmin"])

	require.Equal(t, http.StatusNoContent, toggle().Code)
	require.Equal(t, false, me()["isAdmin"])
}
