package handler

import (
	"net/http"

	"github.com/go-notify-api/internal/application/auth"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/validate"
	"github.com/go-notify-api/internal/transport/http/middleware"
)

const validationFailed = "Validation failed"

// AuthHandler handles register, login and current-user endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	req.Normalize()
	if err := validate.Struct(req, validationFailed); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "User registered successfully", res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	req.Normalize()
	if err := validate.Struct(req, validationFailed); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Login successful", res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ok(w, http.StatusOK, "", u.Summary())
}
