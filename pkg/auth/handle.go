package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/campusworks/platform/pkg/identity"
	"github.com/campusworks/platform/pkg/session"
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "cwh_session"

// Handle exposes the authentication flows over HTTP.
type Handle struct {
	service      *AuthService
	cookieName   string
	cookieSecure bool
}

// HandleOption configures a Handle.
type HandleOption func(*Handle)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) HandleOption {
	return func(h *Handle) {
		if name != "" {
			h.cookieName = name
		}
	}
}

// WithSecureCookie marks the session cookie Secure. Enable behind TLS.
func WithSecureCookie(secure bool) HandleOption {
	return func(h *Handle) {
		h.cookieSecure = secure
	}
}

// NewHandle creates the auth HTTP handler.
func NewHandle(service *AuthService, opts ...HandleOption) *Handle {
	h := &Handle{
		service:    service,
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the auth endpoints.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/verify-email", h.VerifyEmail)
	r.Post("/password-reset", h.RequestPasswordReset)
	r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
	r.Get("/me", h.Me)
	r.Get("/csrf", h.CSRFToken)
}

// Register handles POST /register.
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	_, err := h.service.Register(r.Context(), toRegisterParams(req))
	if err != nil {
		status := http.StatusBadRequest
		message := "Registration failed"
		switch {
		case errors.Is(err, identity.ErrInvalidEmail):
			message = "Invalid email address"
		case errors.Is(err, identity.ErrWeakPassword):
			message = "Password must be at least 8 characters"
		case errors.Is(err, identity.ErrDuplicateEmail):
			status = http.StatusConflict
			message = "An account with this email already exists"
		default:
			slog.Error("Registration failed", "err", err)
			status = http.StatusInternalServerError
			message = "An error occurred during registration"
		}
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, MessageResponse{Message: "Account created. Please check your email for a verification link"})
}

// Login handles POST /login. The session cookie is replaced with the newly
// rotated session ID on success.
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	sess, err := h.service.Login(r.Context(), h.sessionID(r), req.Email, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid email or password"
		switch {
		case errors.Is(err, ErrAccountLocked):
			status = http.StatusTooManyRequests
			message = "Too many failed attempts. Please try again later"
		case errors.Is(err, ErrInvalidCredentials):
		default:
			slog.Error("Login failed", "err", err)
			status = http.StatusInternalServerError
			message = "An error occurred during login"
		}
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	h.setSessionCookie(w, sess.ID)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, toUserResponse(sess, true))
}

// Logout handles POST /logout. A fresh anonymous session replaces the old one.
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Logout(r.Context(), h.sessionID(r))
	if err != nil {
		slog.Error("Logout failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred during logout"})
		return
	}

	h.setSessionCookie(w, sess.ID)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Logged out"})
}

// VerifyEmail handles GET /verify-email?token=...
func (h *Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Token is required"})
		return
	}

	ok, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		slog.Error("Email verification failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred while verifying email"})
		return
	}
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid or already used verification token"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Email verified successfully"})
}

// RequestPasswordReset handles POST /password-reset. The response does not
// reveal whether the email exists.
func (h *Handle) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email is required"})
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		slog.Error("Password reset request failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "If the email exists, a reset link has been sent"})
}

// ConfirmPasswordReset handles POST /password-reset/confirm.
func (h *Handle) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	err := h.service.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		message := "Password reset failed"
		switch {
		case errors.Is(err, identity.ErrWeakPassword):
			message = "Password must be at least 8 characters"
		case errors.Is(err, identity.ErrTokenInvalid):
			message = "Invalid or expired reset token"
		default:
			slog.Error("Password reset failed", "err", err)
			status = http.StatusInternalServerError
			message = "An error occurred"
		}
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Password updated. You can now log in"})
}

// Me handles GET /me.
func (h *Handle) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.CurrentUser(r.Context(), h.sessionID(r))
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "Not authenticated"})
			return
		}
		slog.Error("Failed loading current user", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toUserResponse(sess, false))
}

// CSRFToken handles GET /csrf: returns the token bound to the caller's
// session for use in subsequent mutating requests.
func (h *Handle) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.IssueCSRFToken(r.Context(), h.sessionID(r))
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "No session"})
			return
		}
		slog.Error("Failed issuing CSRF token", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"csrf_token": token})
}

func (h *Handle) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handle) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

func toUserResponse(sess *session.Session, includeCSRF bool) UserResponse {
	var resp UserResponse
	if err := copier.Copy(&resp, sess); err != nil {
		slog.Error("Failed mapping session to response", "err", err)
	}
	resp.IdentityID = sess.IdentityID.String()
	if includeCSRF {
		resp.CSRFToken = sess.CSRFToken
	} else {
		resp.CSRFToken = ""
	}
	return resp
}
