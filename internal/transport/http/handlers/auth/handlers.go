package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"staffreview/internal/domain/auth"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
)

type Handler struct {
	Auth *auth.Service
}

func NewHandler(authService *auth.Service) *Handler {
	return &Handler{Auth: authService}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup activates an HR-invited account by setting its password.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Auth.Signup(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), payload.Password)
	switch {
	case errors.Is(err, auth.ErrUnknownEmail):
		api.Fail(w, http.StatusNotFound, "not_found", "no invited account with that email", reqID)
	case errors.Is(err, auth.ErrAlreadyActivated):
		api.Fail(w, http.StatusBadRequest, "already_activated", "account already activated", reqID)
	case errors.Is(err, auth.ErrPasswordTooShort):
		api.Fail(w, http.StatusBadRequest, "validation_error", "password must be at least 6 characters", reqID)
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "could not complete signup", reqID)
	default:
		api.Success(w, map[string]string{"message": "account activated"}, reqID)
	}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	result, err := h.Auth.Login(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), payload.Password)
	switch {
	case errors.Is(err, auth.ErrNotActivated):
		api.Fail(w, http.StatusUnauthorized, "not_activated", "account not yet activated", reqID)
	case errors.Is(err, auth.ErrInactiveAccount):
		api.Fail(w, http.StatusUnauthorized, "inactive_account", "account is inactive", reqID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "login_failed", "could not complete login", reqID)
	default:
		api.Success(w, result, reqID)
	}
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	claims, err := h.Auth.Verify(parts[1])
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", reqID)
		return
	}
	api.Success(w, map[string]any{
		"userId": claims.UserID,
		"role":   claims.Role,
		"email":  claims.Email,
	}, reqID)
}
