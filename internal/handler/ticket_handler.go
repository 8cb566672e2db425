package handler

import (
	"net/http"

	"recell-store/internal/middleware"
	"recell-store/internal/model"
	"recell-store/internal/service"

	"github.com/rs/zerolog"
)

// TicketHandler handles support desk HTTP requests.
type TicketHandler struct {
	service service.TicketService
	logger  zerolog.Logger
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(service service.TicketService, logger zerolog.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		logger:  logger.With().Str("handler", "ticket").Logger(),
	}
}

// Create handles POST /api/tickets requests.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var input model.TicketInput
	if err := decodeJSON(r, &input); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	ticket, err := h.service.Create(r.Context(), user, &input)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

// ListMine handles GET /api/tickets requests.
func (h *TicketHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	tickets, err := h.service.ListMine(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

// ListAll handles GET /api/admin/tickets requests.
func (h *TicketHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	status := model.TicketStatus(r.URL.Query().Get("status"))

	tickets, err := h.service.ListAll(r.Context(), status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

// Update handles PATCH /api/admin/tickets/{id} requests.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var update model.TicketUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	ticket, err := h.service.Update(r.Context(), id, &update)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}
