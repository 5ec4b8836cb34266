package templateshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"staffreview/internal/domain/audit"
	"staffreview/internal/domain/templates"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
	"staffreview/internal/transport/http/middleware"
	"staffreview/internal/transport/http/shared"
)

type Handler struct {
	Templates *templates.Service
	Audit     *audit.Service
}

func NewHandler(templatesService *templates.Service, auditService *audit.Service) *Handler {
	return &Handler{Templates: templatesService, Audit: auditService}
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	reqID := requestctx.GetRequestID(r.Context())
	var validationErr *templates.ValidationError
	switch {
	case errors.As(err, &validationErr):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: validationErr.Field, Reason: validationErr.Reason}})
	case errors.Is(err, templates.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "template not found", reqID)
	default:
		slog.Error("template operation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "operation failed", reqID)
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Templates.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "template_list_failed")
		return
	}
	api.Success(w, list, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "templateID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid template id", reqID)
		return
	}

	detail, err := h.Templates.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "template_get_failed")
		return
	}
	api.Success(w, detail, reqID)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload templates.TemplateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Templates.Create(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, "template_create_failed")
		return
	}
	h.record(r, "template.create", "template", id, payload)
	api.Created(w, map[string]int64{"id": id}, reqID)
}

func (h *Handler) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	templateID, ok := parseID(r, "templateID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid template id", reqID)
		return
	}
	var payload templates.QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Templates.AddQuestion(r.Context(), templateID, payload)
	if err != nil {
		h.fail(w, r, err, "question_create_failed")
		return
	}
	h.record(r, "template.question.add", "template_question", id, payload)
	api.Created(w, map[string]int64{"id": id}, reqID)
}

func (h *Handler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "questionID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid question id", reqID)
		return
	}

	if err := h.Templates.DeleteQuestion(r.Context(), id); err != nil {
		h.fail(w, r, err, "question_delete_failed")
		return
	}
	h.record(r, "template.question.delete", "template_question", id, nil)
	api.Success(w, map[string]string{"message": "question deleted"}, reqID)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "templateID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid template id", reqID)
		return
	}

	if err := h.Templates.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, "template_delete_failed")
		return
	}
	h.record(r, "template.delete", "template", id, nil)
	api.Success(w, map[string]string{"message": "template deleted"}, reqID)
}
