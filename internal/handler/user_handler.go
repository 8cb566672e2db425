package handler

import (
	"net/http"

	"recell-store/internal/middleware"
	"recell-store/internal/model"
	"recell-store/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler handles profile and admin user-overview HTTP requests.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// GetProfile handles GET /api/profile requests.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/profile requests.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var input model.ProfileInput
	if err := decodeJSON(r, &input); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, &input)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// List handles GET /api/admin/users requests.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	users, err := h.service.List(r.Context(), queryInt(q.Get("limit")), queryInt(q.Get("offset")))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
