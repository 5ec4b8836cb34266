package cycleshandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"staffreview/internal/domain/audit"
	"staffreview/internal/domain/auth"
	"staffreview/internal/domain/notifications"
	"staffreview/internal/domain/review"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
	"staffreview/internal/transport/http/middleware"
	"staffreview/internal/transport/http/shared"
)

type Handler struct {
	Reviews     *review.Service
	Audit       *audit.Service
	Notifier    *notifications.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(reviews *review.Service, auditService *audit.Service, notifier *notifications.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Reviews: reviews, Audit: auditService, Notifier: notifier, Idempotency: idempotency}
}

type createCycleRequest struct {
	CycleName          string  `json:"cycleName"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	TemplateID         int64   `json:"templateId"`
	DeptHeadTemplateID int64   `json:"deptHeadTemplateId"`
	DepartmentIDs      []int64 `json:"departmentIds"`
}

type submitRequest struct {
	Answers         []review.AnswerInput `json:"answers"`
	OverallComments string               `json:"overallComments"`
}

type acknowledgeRequest struct {
	AcknowledgementComments string `json:"acknowledgementComments"`
}

type testSummaryRequest struct {
	Text string `json:"text"`
}

func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) record(r *http.Request, action, entityType string, entityID int64, after any) {
	var actorID *int64
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = &user.UserID
	}
	err := h.Audit.Record(r.Context(), actorID, action, entityType, strconv.FormatInt(entityID, 10),
		requestctx.GetRequestID(r.Context()), shared.ClientIP(r), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notify(r *http.Request, userID int64, ntype, title, body string) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.Notify(r.Context(), userID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "type", ntype, "userId", userID, "err", err)
	}
}

// HandleCreateCycle fans a new cycle out into review assignments. Supports
// Idempotency-Key so a retried request does not create a second cycle.
func (h *Handler) HandleCreateCycle(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	var payload createCycleRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("cycleName", payload.CycleName, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.Positive("templateId", payload.TemplateID, "is required")
	v.Positive("deptHeadTemplateId", payload.DeptHeadTemplateID, "is required")
	if len(payload.DepartmentIDs) == 0 {
		v.Add("departmentIds", "at least one department is required")
	}
	if v.Reject(w, reqID) {
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	var actor auth.UserContext
	if user, ok := middleware.GetUser(r.Context()); ok {
		actor = user
	}
	if idemKey != "" && actor.UserID != 0 {
		stored, found, err := h.Idempotency.Check(r.Context(), actor.UserID, "cycles.create", idemKey, middleware.RequestHash(raw))
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", reqID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Created(w, json.RawMessage(stored), reqID)
			return
		}
	}

	result, err := h.Reviews.CreateCycle(r.Context(), review.CycleInput{
		Name:               payload.CycleName,
		StartDate:          start,
		EndDate:            end,
		StaffTemplateID:    payload.TemplateID,
		DeptHeadTemplateID: payload.DeptHeadTemplateID,
		DepartmentIDs:      payload.DepartmentIDs,
	})
	switch {
	case errors.Is(err, review.ErrNoDepartments):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "departmentIds", Reason: "at least one department is required"}})
		return
	case errors.Is(err, review.ErrNoHRAdmin):
		api.Fail(w, http.StatusConflict, "no_hr_admin", "no active HR admin available to review department heads", reqID)
		return
	case err != nil:
		slog.Error("cycle creation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "cycle_create_failed", "could not create review cycle", reqID)
		return
	}

	h.record(r, "cycle.create", "review_cycle", result.CycleID, payload)
	for reviewerID, count := range reviewCountsByReviewer(result.Reviews) {
		h.notify(r, reviewerID, notifications.TypeReviewAssigned,
			"New reviews assigned",
			fmt.Sprintf("You have %d review(s) to complete in cycle %q.", count, payload.CycleName))
	}

	response := map[string]any{
		"cycleId":        result.CycleID,
		"reviewsCreated": len(result.Reviews),
	}
	if idemKey != "" && actor.UserID != 0 {
		if encoded, err := json.Marshal(response); err == nil {
			if err := h.Idempotency.Save(r.Context(), actor.UserID, "cycles.create", idemKey, middleware.RequestHash(raw), encoded); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}
	api.Created(w, response, reqID)
}

func reviewCountsByReviewer(specs []review.ReviewSpec) map[int64]int {
	counts := map[int64]int{}
	for _, spec := range specs {
		counts[spec.ReviewerID]++
	}
	return counts
}

func (h *Handler) HandleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Reviews.ListCycles(r.Context())
	if err != nil {
		slog.Error("cycle list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "could not list cycles", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleReviewerQueue(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	userID, ok := parseID(r, "userID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid user id", reqID)
		return
	}
	items, err := h.Reviews.ReviewerQueue(r.Context(), userID)
	if err != nil {
		slog.Error("reviewer queue failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "queue_failed", "could not load reviews", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) HandleRevieweeQueue(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	userID, ok := parseID(r, "userID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid user id", reqID)
		return
	}
	items, err := h.Reviews.RevieweeQueue(r.Context(), userID)
	if err != nil {
		slog.Error("reviewee queue failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "queue_failed", "could not load reviews", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) HandleReviewDetail(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	reviewID, ok := parseID(r, "reviewID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid review id", reqID)
		return
	}

	detail, err := h.Reviews.ReviewDetail(r.Context(), reviewID)
	if errors.Is(err, review.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
		return
	}
	if err != nil {
		slog.Error("review detail failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "review_detail_failed", "could not load review", reqID)
		return
	}
	api.Success(w, detail, reqID)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	reviewID, ok := parseID(r, "reviewID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid review id", reqID)
		return
	}
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// Only the assigned reviewer may submit.
	if user, ok := middleware.GetUser(r.Context()); ok {
		detail, err := h.Reviews.ReviewDetail(r.Context(), reviewID)
		if errors.Is(err, review.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
			return
		}
		if err == nil && detail.Review.ReviewerID != user.UserID && user.Role != auth.RoleHRAdmin {
			api.Fail(w, http.StatusForbidden, "forbidden", "only the assigned reviewer can submit this review", reqID)
			return
		}
	}

	result, err := h.Reviews.Submit(r.Context(), reviewID, payload.Answers, payload.OverallComments)
	var answerErr *review.AnswerError
	var transitionErr *review.TransitionError
	switch {
	case errors.Is(err, review.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
		return
	case errors.As(err, &answerErr):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{
			Field:  fmt.Sprintf("answers[questionId=%d]", answerErr.QuestionID),
			Reason: answerErr.Reason,
		}})
		return
	case errors.As(err, &transitionErr):
		api.Fail(w, http.StatusConflict, "invalid_transition", transitionErr.Error(), reqID)
		return
	case err != nil:
		slog.Error("review submit failed", "reviewId", reviewID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "review_submit_failed", "could not submit review", reqID)
		return
	}

	h.record(r, "review.submit", "review", reviewID, map[string]any{"answers": len(payload.Answers)})
	h.notify(r, result.RevieweeID, notifications.TypeReviewSubmitted,
		"Your performance review is ready",
		"Your reviewer has submitted your performance review. Please read and acknowledge it.")

	api.Success(w, map[string]any{
		"message":   "Review submitted successfully",
		"aiSummary": result.Summary,
	}, reqID)
}

func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	reviewID, ok := parseID(r, "reviewID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid review id", reqID)
		return
	}
	var payload acknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// Only the reviewee may acknowledge.
	if user, ok := middleware.GetUser(r.Context()); ok {
		detail, err := h.Reviews.ReviewDetail(r.Context(), reviewID)
		if errors.Is(err, review.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
			return
		}
		if err == nil && detail.Review.RevieweeID != user.UserID {
			api.Fail(w, http.StatusForbidden, "forbidden", "only the reviewee can acknowledge this review", reqID)
			return
		}
	}

	result, err := h.Reviews.Acknowledge(r.Context(), reviewID, payload.AcknowledgementComments)
	var transitionErr *review.TransitionError
	switch {
	case errors.Is(err, review.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
		return
	case errors.As(err, &transitionErr):
		api.Fail(w, http.StatusConflict, "invalid_transition", transitionErr.Error(), reqID)
		return
	case err != nil:
		slog.Error("review acknowledge failed", "reviewId", reviewID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "review_acknowledge_failed", "could not acknowledge review", reqID)
		return
	}

	h.record(r, "review.acknowledge", "review", reviewID, nil)
	h.notify(r, result.ReviewerID, notifications.TypeReviewAcknowledged,
		"Review acknowledged",
		"The reviewee has acknowledged their performance review.")

	api.Success(w, map[string]string{"message": "Review acknowledged"}, reqID)
}

// HandleTestSummary lets HR try the summarizer against arbitrary text.
func (h *Handler) HandleTestSummary(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload testSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	api.Success(w, h.Reviews.Summarize(r.Context(), payload.Text), reqID)
}

func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	reviewID, ok := parseID(r, "reviewID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid review id", reqID)
		return
	}

	pdf, err := h.Reviews.ExportPDF(r.Context(), reviewID)
	if errors.Is(err, review.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
		return
	}
	if err != nil {
		slog.Error("review pdf export failed", "reviewId", reviewID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_export_failed", "could not export review", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=review-%d.pdf", reviewID))
	_, _ = io.Copy(w, bytes.NewReader(pdf))
}
