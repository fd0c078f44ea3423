package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/http/middleware"
	"github.com/diaperpal/diaperpal-api/internal/http/response"
)

// POST /auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			response.WriteError(w, http.StatusConflict, "user with this email already exists", response.CodeEmailExists)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, user.ToUserInfo())
}

// POST /auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GET /auth/verify?token=...
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "token is required")
		return
	}

	user, err := h.authService.VerifyEmail(r.Context(), token)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid or expired verification token", response.CodeInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}

// POST /auth/resend-verification
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		response.BadRequest(w, "email is required")
		return
	}

	if err := h.authService.ResendVerification(r.Context(), strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		response.InternalError(w, "failed to resend verification")
		return
	}

	// 202 either way so the endpoint can't be used to probe for accounts.
	w.WriteHeader(http.StatusAccepted)
}

// GET /auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.Sub)
	if err != nil || user == nil {
		response.NotFound(w, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}
