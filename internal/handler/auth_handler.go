package handler

import (
	"net/http"

	"recell-store/internal/middleware"
	"recell-store/internal/model"
	"recell-store/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleSignInRequest struct {
	Code string `json:"code"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Signup handles POST /api/auth/signup requests.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	user, token, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// GoogleSignIn handles POST /api/auth/google requests.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Authorization code is required.")
		return
	}

	user, token, err := h.service.GoogleSignIn(r.Context(), req.Code)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(token) > len(prefix) {
		token = token[len(prefix):]
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me requests.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		writeDomainError(w, model.ErrUnauthorised, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RequestPasswordReset handles POST /api/auth/reset requests. The response
// is the same whether or not the account exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for this email, a reset link has been sent.",
	})
}

// ResetPassword handles POST /api/auth/reset/confirm requests.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated. You can log in now."})
}
