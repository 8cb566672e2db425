package handler

import (
	"net/http"

	"recell-store/internal/middleware"
	"recell-store/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests. All routes require a session.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

type cartAddRequest struct {
	ProductID uuid.UUID `json:"productId"`
}

// List handles GET /api/cart requests.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	items, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/cart requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req cartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	item, err := h.service.Add(r.Context(), user.ID, req.ProductID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Remove handles DELETE /api/cart/{productId} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	productID, err := pathID(r, "productId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.Remove(r.Context(), user.ID, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
