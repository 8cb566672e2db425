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

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	db     DBPool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db DBPool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, type, brand, model, price, warranty, condition, verified, stock, media, specs, faults, description, created_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Type,
		&p.Brand,
		&p.Model,
		&p.Price,
		&p.Warranty,
		&p.Condition,
		&p.Verified,
		&p.Stock,
		&p.Media,
		&p.Specs,
		&p.Faults,
		&p.Description,
		&p.CreatedAt,
	)
}

// List retrieves products matching the filter, newest first.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	maxPrice := filter.MaxPrice
	if maxPrice <= 0 {
		maxPrice = int64(1) << 62
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR brand ILIKE $2)
		  AND ($3 = '' OR condition = $3)
		  AND price >= $4 AND price <= $5
		  AND (NOT $6 OR stock > 0)
		ORDER BY created_at DESC
		LIMIT $7 OFFSET $8
	`, productColumns)

	rows, err := r.db.Query(ctx, query,
		filter.Type, filter.Brand, filter.Condition,
		filter.MinPrice, maxPrice, filter.InStock,
		limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var p model.Product
	err := scanProduct(r.db.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, type, brand, model, price, warranty, condition, verified, stock, media, specs, faults, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING created_at
	`, product.ID, product.Type, product.Brand, product.Model, product.Price,
		product.Warranty, product.Condition, product.Verified, product.Stock,
		product.Media, product.Specs, product.Faults, product.Description).Scan(&product.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Msg("product created")

	return nil
}

// Update replaces a product's mutable fields.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET type = $2, brand = $3, model = $4, price = $5, warranty = $6,
		    condition = $7, verified = $8, stock = $9, media = $10, specs = $11,
		    faults = $12, description = $13
		WHERE id = $1
	`, product.ID, product.Type, product.Brand, product.Model, product.Price,
		product.Warranty, product.Condition, product.Verified, product.Stock,
		product.Media, product.Specs, product.Faults, product.Description)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalogue. Cart entries referencing it
// are removed by the foreign key cascade; order snapshots keep their copy.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}
