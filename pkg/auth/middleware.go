package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/campusworks/platform/pkg/identity"
)

// CSRFHeader is the request header checked by RequireCSRF.
const CSRFHeader = "X-Csrf-Token"

// Middleware bundles the session-aware HTTP middleware.
type Middleware struct {
	service    *AuthService
	cookieName string
}

// NewMiddleware creates auth middleware reading the given session cookie.
func NewMiddleware(service *AuthService, cookieName string) *Middleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Middleware{service: service, cookieName: cookieName}
}

// EnsureSession guarantees the request runs with a live session: requests
// arriving without a cookie, or with a cookie whose session has been
// destroyed or idle-expired, get a fresh anonymous session and a replacement
// cookie, so CSRF tokens can always be issued before login.
func (m *Middleware) EnsureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			sess, err := m.service.Session(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("Failed resolving session", "err", err)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
				return
			}
			if sess != nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		sess, err := m.service.BeginSession(r.Context())
		if err != nil {
			slog.Error("Failed starting session", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		m.replaceRequestCookie(r, sess.ID)
		next.ServeHTTP(w, r)
	})
}

// replaceRequestCookie swaps the session cookie on the inbound request so
// downstream handlers see the fresh ID instead of a stale one.
func (m *Middleware) replaceRequestCookie(r *http.Request, sessionID string) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name == m.cookieName {
			continue
		}
		r.AddCookie(c)
	}
	r.AddCookie(&http.Cookie{Name: m.cookieName, Value: sessionID})
}

// RequireCSRF rejects mutating requests whose CSRF token does not match the
// session's token. Safe methods pass through untouched.
func (m *Middleware) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		ok, err := m.service.ValidateCSRFToken(r.Context(), m.sessionID(r), r.Header.Get(CSRFHeader))
		if err != nil {
			slog.Error("Failed validating CSRF token", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
			return
		}
		if !ok {
			slog.Warn("Rejected request with invalid CSRF token", "path", r.URL.Path)
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, ErrorResponse{Error: "Invalid CSRF token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticated rejects requests without a live authenticated session.
func (m *Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := m.service.IsLoggedIn(r.Context(), m.sessionID(r))
		if err != nil {
			slog.Error("Failed checking session", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
			return
		}
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects sessions that do not hold exactly the given role.
// There is no hierarchy: protecting a route for writers locks admins out.
func (m *Middleware) RequireRole(role identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := m.service.HasRole(r.Context(), m.sessionID(r), role)
			if err != nil {
				slog.Error("Failed checking role", "err", err)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
				return
			}
			if !ok {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, ErrorResponse{Error: "Forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
