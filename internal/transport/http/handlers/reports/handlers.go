package reportshandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"staffreview/internal/domain/reports"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
)

type Handler struct {
	Reports *reports.Service
}

func NewHandler(reportsService *reports.Service) *Handler {
	return &Handler{Reports: reportsService}
}

func (h *Handler) HandleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	metrics, err := h.Reports.DashboardMetrics(r.Context())
	if err != nil {
		slog.Error("dashboard metrics failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "could not load dashboard metrics", reqID)
		return
	}
	api.Success(w, metrics, reqID)
}

func (h *Handler) HandleAvgRatingsByQuestion(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	averages, err := h.Reports.AverageRatingsByQuestion(r.Context())
	if err != nil {
		slog.Error("question averages failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "could not load question averages", reqID)
		return
	}
	api.Success(w, averages, reqID)
}

func (h *Handler) HandleReviewsByDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	completions, err := h.Reports.ReviewsByDepartment(r.Context())
	if err != nil {
		slog.Error("department completion failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "could not load department completion", reqID)
		return
	}
	api.Success(w, completions, reqID)
}

func (h *Handler) HandleDeptHeadMetrics(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid user id", reqID)
		return
	}
	metrics, err := h.Reports.DeptHeadMetrics(r.Context(), userID)
	if err != nil {
		slog.Error("dept head metrics failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "could not load metrics", reqID)
		return
	}
	api.Success(w, metrics, reqID)
}

func (h *Handler) HandleTeamStats(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid user id", reqID)
		return
	}
	stats, err := h.Reports.TeamStats(r.Context(), userID)
	if err != nil {
		slog.Error("team stats failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "could not load team stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}
