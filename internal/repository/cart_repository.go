package repository

import (
	"context"
	"errors"
	"fmt"

	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	db     DBPool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(db DBPool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		db:     db,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// List retrieves all cart items for a user.
func (r *cartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, product_title, price, image, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY product_title
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.ProductTitle, &item.Price, &item.Image, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Get retrieves a single cart item.
func (r *cartRepository) Get(ctx context.Context, userID, productID uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.QueryRow(ctx, `
		SELECT product_id, product_title, price, image, quantity
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(&item.ProductID, &item.ProductTitle, &item.Price, &item.Image, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// Add inserts a cart item for the user.
func (r *cartRepository) Add(ctx context.Context, userID uuid.UUID, item *model.CartItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, product_title, price, image, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, item.ProductID, item.ProductTitle, item.Price, item.Image, item.Quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Str("product_id", item.ProductID.String()).
		Msg("cart item added")

	return nil
}

// Remove deletes a single cart item.
func (r *cartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}
