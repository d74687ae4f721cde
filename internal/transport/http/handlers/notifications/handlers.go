package notificationshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/notifications"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

// Notifications are always scoped to the caller, so no permission middleware;
// authentication alone is the gate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.Post("/read-all", h.handleMarkAllRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	page := shared.ParsePagination(r, 50, 200)

	list, err := h.Service.ListForUser(r.Context(), user.UserID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	count, err := h.Service.CountUnread(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_count_failed", "failed to count notifications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"unread": count}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.MarkRead(r.Context(), user.UserID, chi.URLParam(r, "notificationID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notification read", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"read": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.MarkAllRead(r.Context(), user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notifications read", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"read": true}, middleware.GetRequestID(r.Context()))
}
