package service

import (
	"context"
	"fmt"
	"strings"

	"recell-store/internal/model"
	"recell-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products matching the filter.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// Create adds a product to the catalogue.
func (s *productService) Create(ctx context.Context, input *model.ProductInput) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          uuid.New(),
		Type:        input.Type,
		Brand:       strings.TrimSpace(input.Brand),
		Model:       strings.TrimSpace(input.Model),
		Price:       input.Price,
		Warranty:    input.Warranty,
		Condition:   input.Condition,
		Verified:    input.Verified,
		Stock:       input.Stock,
		Media:       input.Media,
		Specs:       input.Specs,
		Faults:      input.Faults,
		Description: input.Description,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("title", product.Title()).
		Msg("product created")

	return product, nil
}

// Update replaces a product's fields.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          id,
		Type:        input.Type,
		Brand:       strings.TrimSpace(input.Brand),
		Model:       strings.TrimSpace(input.Model),
		Price:       input.Price,
		Warranty:    input.Warranty,
		Condition:   input.Condition,
		Verified:    input.Verified,
		Stock:       input.Stock,
		Media:       input.Media,
		Specs:       input.Specs,
		Faults:      input.Faults,
		Description: input.Description,
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	return product, nil
}

// Delete removes a product. Past order snapshots keep their copy of the
// title, price and image, so history is unaffected.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

func validateProductInput(input *model.ProductInput) error {
	if !model.ValidProductType(input.Type) {
		return model.NewDomainError(model.ErrCodeValidation, "Product type must be Phone or Laptop.")
	}
	if strings.TrimSpace(input.Brand) == "" || strings.TrimSpace(input.Model) == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Brand and model are required.")
	}
	if input.Price <= 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Price must be positive.")
	}
	if !model.ValidCondition(input.Condition) {
		return model.NewDomainError(model.ErrCodeValidation, "Unknown product condition.")
	}
	if input.Stock < 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Stock cannot be negative.")
	}
	return nil
}
