package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/platform/pkg/identity"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireCSRF(t *testing.T) {
	f := newAuthFixture(t)
	mw := NewMiddleware(f.service, DefaultCookieName)

	r := chi.NewRouter()
	r.Use(mw.RequireCSRF)
	r.Post("/orders", okHandler)
	r.Get("/orders", okHandler)

	anon := f.anonymousSession(t)
	cookie := &http.Cookie{Name: DefaultCookieName, Value: anon.ID}

	// Mutating request without a token is refused.
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A forged token is refused.
	req = httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, "forged")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The session's own token passes.
	req = httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, anon.CSRFToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Safe methods skip the check.
	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthenticated(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAccount(t, "alice@example.com", "correcthorse", identity.RoleStudent, identity.StatusActive)
	mw := NewMiddleware(f.service, DefaultCookieName)

	r := chi.NewRouter()
	r.Use(mw.RequireAuthenticated)
	r.Get("/dashboard", okHandler)

	// No cookie.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Anonymous session.
	anon := f.anonymousSession(t)
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: anon.ID})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated session.
	sess, err := f.service.Login(req.Context(), anon.ID, "alice@example.com", "correcthorse")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: sess.ID})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAccount(t, "root@example.com", "correcthorse", identity.RoleAdmin, identity.StatusActive)
	mw := NewMiddleware(f.service, DefaultCookieName)

	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.RequireRole(identity.RoleAdmin))
		r.Get("/stats", okHandler)
	})
	r.Route("/writer", func(r chi.Router) {
		r.Use(mw.RequireRole(identity.RoleWriter))
		r.Get("/queue", okHandler)
	})

	anon := f.anonymousSession(t)
	sess, err := f.service.Login(httptest.NewRequest(http.MethodGet, "/", nil).Context(), anon.ID, "root@example.com", "correcthorse")
	require.NoError(t, err)
	cookie := &http.Cookie{Name: DefaultCookieName, Value: sess.ID}

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Admin does not imply writer.
	req = httptest.NewRequest(http.MethodGet, "/writer/queue", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEnsureSessionReplacesStaleCookie(t *testing.T) {
	f := newAuthFixture(t)
	mw := NewMiddleware(f.service, DefaultCookieName)

	r := chi.NewRouter()
	r.Use(mw.EnsureSession)
	r.Get("/csrf", func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(DefaultCookieName)
		require.NoError(t, err)
		token, err := f.service.IssueCSRFToken(req.Context(), cookie.Value)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		w.WriteHeader(http.StatusOK)
	})

	anon := f.anonymousSession(t)

	// The anonymous session idle-expires, but the browser still sends
	// its cookie. The middleware must swap in a fresh session instead
	// of leaving the browser wedged.
	f.now = f.now.Add(31 * time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/csrf", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: anon.ID})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCookieName {
			fresh = c
		}
	}
	require.NotNil(t, fresh, "expected a replacement session cookie")
	assert.NotEqual(t, anon.ID, fresh.Value)
}

func TestEnsureSessionKeepsLiveCookie(t *testing.T) {
	f := newAuthFixture(t)
	mw := NewMiddleware(f.service, DefaultCookieName)

	var seen string
	r := chi.NewRouter()
	r.Use(mw.EnsureSession)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(DefaultCookieName)
		require.NoError(t, err)
		seen = cookie.Value
		w.WriteHeader(http.StatusOK)
	})

	anon := f.anonymousSession(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: anon.ID})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// A live session passes through untouched: no replacement cookie.
	assert.Equal(t, anon.ID, seen)
	assert.Empty(t, rec.Result().Cookies())
}
