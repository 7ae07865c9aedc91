package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AuthHandler struct {
	timeout time.Duration
}

func NewAuthHandler(timeout time.Duration) *AuthHandler {
	return &AuthHandler{timeout: timeout}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequestDTO struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequestDTO struct {
	Email string `json:"email"`
}

type IdentityResponseDTO struct {
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"user_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	Name          string    `json:"name,omitempty"`
	Role          string    `json:"role,omitempty"`
	IsAdmin       bool      `json:"is_admin"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
}

type AckResponseDTO struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func identityDTO(c domain.IdentityClaims) IdentityResponseDTO {
	return IdentityResponseDTO{
		Authenticated: true,
		UserID:        c.SubjectID,
		Email:         c.Email,
		Name:          c.DisplayName,
		Role:          string(c.Role),
		IsAdmin:       c.Role.IsAdmin(),
		ExpiresAt:     c.ExpiresAt,
	}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	claims, err := a.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, identityDTO(claims))
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	if err := a.Session.Logout(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	claims, authenticated := a.Session.Claims()
	if !authenticated {
		respondJSON(w, http.StatusOK, IdentityResponseDTO{})
		return
	}
	respondJSON(w, http.StatusOK, identityDTO(claims))
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	var req domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ack, err := a.Accounts.Register(ctx, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, AckResponseDTO(ack))
}

// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	var req VerifyEmailRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and otp are required")
		return
	}

	ack, err := a.Accounts.VerifyEmail(ctx, req.Email, req.OTP)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AckResponseDTO(ack))
}

// POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	var req ResendOTPRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	ack, err := a.Accounts.ResendOTP(ctx, req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AckResponseDTO(ack))
}
