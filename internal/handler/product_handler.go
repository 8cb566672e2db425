package handler

import (
	"net/http"
	"strconv"

	"recell-store/internal/model"
	"recell-store/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ProductFilter{
		Type:      q.Get("type"),
		Brand:     q.Get("brand"),
		Condition: q.Get("condition"),
		MinPrice:  queryInt64(q.Get("minPrice")),
		MaxPrice:  queryInt64(q.Get("maxPrice")),
		InStock:   q.Get("inStock") == "true",
		Limit:     queryInt(q.Get("limit")),
		Offset:    queryInt(q.Get("offset")),
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/admin/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &input)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/admin/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var input model.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &input)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/admin/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func queryInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func queryInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
