package order

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/auth"
	"github.com/campusworks/platform/pkg/identity"
)

// Handle exposes order placement and dashboards over HTTP. All routes
// assume an authenticated session; mount behind auth middleware.
type Handle struct {
	service    *Service
	access     *AccessService
	authSvc    *auth.AuthService
	cookieName string
}

// NewHandle creates the order HTTP handler.
func NewHandle(service *Service, access *AccessService, authSvc *auth.AuthService, cookieName string) *Handle {
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}
	return &Handle{
		service:    service,
		access:     access,
		authSvc:    authSvc,
		cookieName: cookieName,
	}
}

// RegisterRoutes mounts the order endpoints.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Place)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/assign", h.Assign)
	})
	r.Get("/stats", h.Stats)
}

// PlaceRequest is the POST /orders body.
type PlaceRequest struct {
	CategoryID    string `json:"category_id"`
	Title         string `json:"title"`
	Instructions  string `json:"instructions"`
	WordCount     int    `json:"word_count"`
	AcademicLevel string `json:"academic_level"`
	DeadlineDays  int    `json:"deadline_days"`
}

// AssignRequest is the POST /orders/{id}/assign body.
type AssignRequest struct {
	WriterID string `json:"writer_id"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	WordCount     int    `json:"word_count"`
	AcademicLevel string `json:"academic_level"`
	DeadlineDays  int    `json:"deadline_days"`
	TotalPrice    int64  `json:"total_price"`
	PaymentStatus string `json:"payment_status"`
}

// Place handles POST /orders. Only students place orders.
func (h *Handle) Place(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if caller.Role != string(identity.RoleStudent) {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, errBody("Only students can place orders"))
		return
	}

	var req PlaceRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errBody("Invalid request body"))
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errBody("Invalid category id"))
		return
	}

	placed, err := h.service.Place(r.Context(), PlaceParams{
		StudentID:     caller.IdentityID,
		CategoryID:    categoryID,
		Title:         req.Title,
		Instructions:  req.Instructions,
		WordCount:     req.WordCount,
		AcademicLevel: identity.AcademicLevel(req.AcademicLevel),
		DeadlineDays:  req.DeadlineDays,
	})
	if err != nil {
		status := http.StatusBadRequest
		message := "Failed to place order"
		switch {
		case errors.Is(err, ErrInvalidWordCount):
			message = "Word count must be positive"
		case errors.Is(err, ErrInvalidDeadline):
			message = "Deadline must be at least one day"
		case errors.Is(err, ErrCategoryNotFound):
			message = "Unknown category"
		default:
			slog.Error("Failed placing order", "err", err)
			status = http.StatusInternalServerError
			message = "An error occurred"
		}
		render.Status(r, status)
		render.JSON(w, r, errBody(message))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toOrderResponse(placed))
}

// List handles GET /orders: the caller's own dashboard listing.
func (h *Handle) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListFor(r.Context(), caller.IdentityID, identity.Role(caller.Role))
	if err != nil {
		slog.Error("Failed listing orders", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errBody("An error occurred"))
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, out)
}

// Get handles GET /orders/{id}. Access is decided fresh against storage.
func (h *Handle) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errBody("Invalid order id"))
		return
	}

	allowed, err := h.access.CanAccessOrder(r.Context(), caller.IdentityID, identity.Role(caller.Role), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errBody("Order not found"))
			return
		}
		slog.Error("Failed checking order access", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errBody("An error occurred"))
		return
	}
	if !allowed {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, errBody("Forbidden"))
		return
	}

	o, err := h.service.Get(r.Context(), orderID)
	if err != nil {
		slog.Error("Failed loading order", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errBody("An error occurred"))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toOrderResponse(*o))
}

// Assign handles POST /orders/{id}/assign. Admin only.
func (h *Handle) Assign(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if caller.Role != string(identity.RoleAdmin) {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, errBody("Forbidden"))
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errBody("Invalid order id"))
		return
	}

	var req AssignRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errBody("Invalid request body"))
		return
	}
	writerID, err := uuid.Parse(req.WriterID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errBody("Invalid writer id"))
		return
	}

	if err := h.service.AssignWriter(r.Context(), orderID, writerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errBody("Order not found"))
			return
		}
		slog.Error("Failed assigning writer", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errBody("An error occurred"))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"message": "Writer assigned"})
}

// Stats handles GET /stats: dashboard counters for the caller's role.
func (h *Handle) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	stats, err := h.service.StatsFor(r.Context(), caller.IdentityID, identity.Role(caller.Role))
	if err != nil {
		slog.Error("Failed loading stats", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errBody("An error occurred"))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, stats)
}

func (h *Handle) caller(w http.ResponseWriter, r *http.Request) (*callerInfo, bool) {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errBody("Not authenticated"))
		return nil, false
	}
	sess, err := h.authSvc.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, errBody("Not authenticated"))
			return nil, false
		}
		slog.Error("Failed loading session", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errBody("An error occurred"))
		return nil, false
	}
	return &callerInfo{IdentityID: sess.IdentityID, Role: sess.Role}, true
}

type callerInfo struct {
	IdentityID uuid.UUID
	Role       string
}

func errBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func toOrderResponse(o Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		Title:         o.Title,
		Status:        string(o.Status),
		WordCount:     o.WordCount,
		AcademicLevel: string(o.AcademicLevel),
		DeadlineDays:  o.DeadlineDays,
		TotalPrice:    o.TotalPrice,
		PaymentStatus: string(o.PaymentStatus),
	}
}
