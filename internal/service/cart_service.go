package service

import (
	"context"
	"fmt"

	"recell-store/internal/model"
	"recell-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// List retrieves the user's cart.
func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Add puts a product in the cart with quantity 1. The cart carries a
// display snapshot of the product so the storefront can render it without
// another catalogue read.
func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID) (*model.CartItem, error) {
	existing, err := s.cartRepo.Get(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}
	if existing != nil {
		return nil, model.ErrAlreadyInCart
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	item := &model.CartItem{
		ProductID:    product.ID,
		ProductTitle: product.Title(),
		Price:        product.Price,
		Image:        product.FirstImage(),
		Quantity:     1,
	}
	if err := s.cartRepo.Add(ctx, userID, item); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Msg("product added to cart")

	return item, nil
}

// Remove takes a product out of the cart.
func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		return err
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Msg("product removed from cart")

	return nil
}
