package audithandler

import (
	"log/slog"
	"net/http"
	"strings"

	"staffreview/internal/domain/audit"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
	"staffreview/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
}

func NewHandler(auditService *audit.Service) *Handler {
	return &Handler{Audit: auditService}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	filter := audit.Filter{
		Action:     strings.TrimSpace(r.URL.Query().Get("action")),
		EntityType: strings.TrimSpace(r.URL.Query().Get("entityType")),
		ActorUser:  strings.TrimSpace(r.URL.Query().Get("actor")),
	}
	includeDetails := r.URL.Query().Get("details") == "true"
	page := shared.ParsePagination(r, 50, 200)

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		slog.Error("audit count failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "could not load audit events", reqID)
		return
	}
	events, err := h.Audit.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		slog.Error("audit list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "could not load audit events", reqID)
		return
	}

	api.Success(w, map[string]any{
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
		"items":  events,
	}, reqID)
}
