package orghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"staffreview/internal/domain/audit"
	"staffreview/internal/domain/notifications"
	"staffreview/internal/domain/org"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
	"staffreview/internal/transport/http/middleware"
	"staffreview/internal/transport/http/shared"
)

type Handler struct {
	Org      *org.Service
	Audit    *audit.Service
	Notifier *notifications.Service
}

func NewHandler(orgService *org.Service, auditService *audit.Service, notifier *notifications.Service) *Handler {
	return &Handler{Org: orgService, Audit: auditService, Notifier: notifier}
}

func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) record(r *http.Request, action, entityType string, entityID int64, before, after any) {
	var actorID *int64
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = &user.UserID
	}
	err := h.Audit.Record(r.Context(), actorID, action, entityType, strconv.FormatInt(entityID, 10),
		requestctx.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	reqID := requestctx.GetRequestID(r.Context())
	var validationErr *org.ValidationError
	switch {
	case errors.As(err, &validationErr):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: validationErr.Field, Reason: validationErr.Reason}})
	case errors.Is(err, org.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", reqID)
	case errors.Is(err, org.ErrDuplicateEmail):
		api.Fail(w, http.StatusBadRequest, "duplicate_email", err.Error(), reqID)
	case errors.Is(err, org.ErrDuplicateDepartment):
		api.Fail(w, http.StatusBadRequest, "duplicate_department", err.Error(), reqID)
	default:
		slog.Error("org operation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "operation failed", reqID)
	}
}

func (h *Handler) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Org.ListDepartments(r.Context())
	if err != nil {
		h.fail(w, r, err, "department_list_failed")
		return
	}
	api.Success(w, departments, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload org.DepartmentInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Org.CreateDepartment(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, "department_create_failed")
		return
	}
	h.record(r, "department.create", "department", id, nil, payload)
	api.Created(w, map[string]int64{"id": id}, reqID)
}

func (h *Handler) HandleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "departmentID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid department id", reqID)
		return
	}
	var payload org.DepartmentInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Org.UpdateDepartment(r.Context(), id, payload); err != nil {
		h.fail(w, r, err, "department_update_failed")
		return
	}
	h.record(r, "department.update", "department", id, nil, payload)
	api.Success(w, map[string]int64{"id": id}, reqID)
}

func (h *Handler) HandleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "departmentID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid department id", reqID)
		return
	}

	if err := h.Org.DeleteDepartment(r.Context(), id); err != nil {
		h.fail(w, r, err, "department_delete_failed")
		return
	}
	h.record(r, "department.delete", "department", id, nil, nil)
	api.Success(w, map[string]string{"message": "department deleted"}, reqID)
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Org.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err, "user_list_failed")
		return
	}
	api.Success(w, users, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleListDeptHeads(w http.ResponseWriter, r *http.Request) {
	heads, err := h.Org.ListDeptHeads(r.Context())
	if err != nil {
		h.fail(w, r, err, "user_list_failed")
		return
	}
	api.Success(w, heads, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload org.UserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Org.CreateUser(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, "user_create_failed")
		return
	}
	h.record(r, "user.create", "user", id, nil, payload)

	if h.Notifier != nil {
		if err := h.Notifier.Notify(r.Context(), id, notifications.TypeAccountInvited,
			"Welcome to the review portal",
			"An account has been created for you. Sign up with your work email to set a password."); err != nil {
			slog.Warn("invite notification failed", "userId", id, "err", err)
		}
	}
	api.Created(w, map[string]int64{"id": id}, reqID)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "userID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid user id", reqID)
		return
	}
	var payload org.UserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	before, err := h.Org.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "user_update_failed")
		return
	}
	if err := h.Org.UpdateUser(r.Context(), id, payload); err != nil {
		h.fail(w, r, err, "user_update_failed")
		return
	}
	h.record(r, "user.update", "user", id, before, payload)
	api.Success(w, map[string]int64{"id": id}, reqID)
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, ok := parseID(r, "userID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid user id", reqID)
		return
	}

	if err := h.Org.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, r, err, "user_delete_failed")
		return
	}
	h.record(r, "user.delete", "user", id, nil, nil)
	api.Success(w, map[string]string{"message": "user deleted"}, reqID)
}
