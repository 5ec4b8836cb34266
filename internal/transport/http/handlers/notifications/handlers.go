package notificationshandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"staffreview/internal/domain/notifications"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
	"staffreview/internal/transport/http/middleware"
	"staffreview/internal/transport/http/shared"
)

type Handler struct {
	Notifications *notifications.Service
}

func NewHandler(notificationsService *notifications.Service) *Handler {
	return &Handler{Notifications: notificationsService}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	items, err := h.Notifications.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		slog.Error("notification list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "could not load notifications", reqID)
		return
	}
	unread, err := h.Notifications.CountUnread(r.Context(), user.UserID)
	if err != nil {
		slog.Warn("notification unread count failed", "err", err)
	}
	api.Success(w, map[string]any{"items": items, "unread": unread}, reqID)
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	notificationID, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil || notificationID <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid notification id", reqID)
		return
	}

	if err := h.Notifications.MarkRead(r.Context(), user.UserID, notificationID); err != nil {
		slog.Error("notification mark read failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "could not update notification", reqID)
		return
	}
	api.Success(w, map[string]string{"message": "notification marked as read"}, reqID)
}
