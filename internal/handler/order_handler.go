package handler

import (
	"net/http"

	"recell-store/internal/middleware"
	"recell-store/internal/model"
	"recell-store/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order HTTP requests, including the admin log.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

type statusUpdateRequest struct {
	Status model.OrderStatus `json:"status"`
}

// Checkout handles POST /api/orders requests. The order is built entirely
// from the server-side cart and profile; the request carries no payload.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	order, err := h.service.Checkout(r.Context(), user)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ListMine handles GET /api/orders requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	orders, err := h.service.ListMine(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), user, id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), user, id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListAll handles GET /api/admin/orders requests.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.OrderFilter{
		City:   q.Get("city"),
		Status: model.OrderStatus(q.Get("status")),
		Limit:  queryInt(q.Get("limit")),
		Offset: queryInt(q.Get("offset")),
	}

	orders, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/admin/orders/{id} requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
