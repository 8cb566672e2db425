package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
//
// The placement, cancellation and deletion transactions lock the product
// rows they touch with SELECT ... FOR UPDATE, always in ascending product id
// order so concurrent transactions cannot deadlock. Two orders racing for
// the last unit serialise on the row lock: the first to commit wins, the
// second reads the decremented stock and fails with out-of-stock.
type orderRepository struct {
	db     DBPool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db DBPool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// sortedByProduct returns the items ordered by ascending product id.
// Lock acquisition order must be identical across transactions.
func sortedByProduct(items []model.OrderItem) []model.OrderItem {
	sorted := make([]model.OrderItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})
	return sorted
}

// Place runs the order placement transaction.
func (r *orderRepository) Place(ctx context.Context, order *model.Order) ([]uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := sortedByProduct(order.Items)

	// Lock and validate every referenced product before mutating anything.
	for _, item := range items {
		var stock int
		err := tx.QueryRow(ctx, `
			SELECT stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// A product removed from the catalogue cannot be bought.
				return nil, model.NewOutOfStockError(item.ProductTitle)
			}
			r.logger.Error().Err(err).
				Str("product_id", item.ProductID.String()).
				Msg("failed to lock product row")
			return nil, fmt.Errorf("failed to lock product: %w", err)
		}

		if stock < item.Quantity {
			r.logger.Info().
				Str("product_id", item.ProductID.String()).
				Int("requested", item.Quantity).
				Int("available", stock).
				Msg("insufficient stock, aborting order")
			return nil, model.NewOutOfStockError(item.ProductTitle)
		}
	}

	// Create the order with a server-assigned timestamp.
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, user_phone, delivery_address, total_price, status, payment_method, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING order_date
	`, order.ID, order.UserID, order.UserPhone, order.DeliveryAddress,
		order.TotalPrice, order.Status, order.PaymentMethod).Scan(&order.OrderDate)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Snapshot the items.
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, product_title, price, image, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, item.ProductID, item.ProductTitle, item.Price, item.Image, item.Quantity)
	}
	results := tx.SendBatch(ctx, batch)
	for range items {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			r.logger.Error().Err(err).
				Str("order_id", order.ID.String()).
				Msg("failed to create order item")
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	// Decrement stock, collecting products that just sold out.
	var depleted []uuid.UUID
	for _, item := range items {
		var remaining int
		err := tx.QueryRow(ctx, `
			UPDATE products
			SET stock = stock - $2
			WHERE id = $1
			RETURNING stock
		`, item.ProductID, item.Quantity).Scan(&remaining)
		if err != nil {
			r.logger.Error().Err(err).
				Str("product_id", item.ProductID.String()).
				Msg("failed to decrement stock")
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if remaining == 0 {
			depleted = append(depleted, item.ProductID)
		}
	}

	// Clear the cart: its rows are exactly the not-yet-ordered selections.
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
		r.logger.Error().Err(err).
			Str("user_id", order.UserID.String()).
			Msg("failed to clear cart")
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to commit order placement")
		return nil, fmt.Errorf("failed to commit order placement: %w", err)
	}

	r.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Int64("total_price", order.TotalPrice).
		Msg("order placed")

	return depleted, nil
}

// Cancel runs the cancellation transaction: restore stock, mark Cancelled.
func (r *orderRepository) Cancel(ctx context.Context, id uuid.UUID, opts CancelOptions) (*model.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	order, err := r.lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if opts.OwnerID != nil && order.UserID != *opts.OwnerID {
		return nil, model.ErrOrderNotFound
	}
	if order.Status == model.StatusCancelled {
		return nil, model.ErrInvalidStatus
	}
	if opts.RequireOrdered && order.Status != model.StatusOrdered {
		return nil, model.ErrInvalidStatus
	}

	if err := r.restockItems(ctx, tx, order.Items); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, model.StatusCancelled); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order cancelled")
		return nil, fmt.Errorf("failed to mark order cancelled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit cancellation")
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	order.Status = model.StatusCancelled

	r.logger.Info().
		Str("order_id", id.String()).
		Int("item_count", len(order.Items)).
		Msg("order cancelled, stock restored")

	return order, nil
}

// Delete removes an order, restoring stock first unless it was already
// Cancelled (its stock has been credited back once already).
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	order, err := r.lockOrder(ctx, tx, id)
	if err != nil {
		return err
	}

	if order.Status != model.StatusCancelled {
		if err := r.restockItems(ctx, tx, order.Items); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit order deletion")
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}

	r.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(order.Status)).
		Msg("order deleted")

	return nil
}

// UpdateStatus sets a non-Cancelled status on an order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2
		WHERE id = $1 AND status <> $3
	`, id, status, model.StatusCancelled)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the order does not exist or it is Cancelled, which is terminal.
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, model.ErrOrderNotFound
		}
		return nil, model.ErrInvalidStatus
	}

	return r.GetByID(ctx, id)
}

// lockOrder reads an order and its item snapshot with the order row locked
// for the remainder of the transaction.
func (r *orderRepository) lockOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, user_phone, delivery_address, total_price, status, payment_method, order_date
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&order.ID,
		&order.UserID,
		&order.UserPhone,
		&order.DeliveryAddress,
		&order.TotalPrice,
		&order.Status,
		&order.PaymentMethod,
		&order.OrderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := r.queryItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// restockItems credits each item's quantity back to its product. Products
// that have since been removed from the catalogue are skipped.
func (r *orderRepository) restockItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	for _, item := range sortedByProduct(items) {
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock + $2
			WHERE id = $1
		`, item.ProductID, item.Quantity); err != nil {
			r.logger.Error().Err(err).
				Str("product_id", item.ProductID.String()).
				Msg("failed to restore stock")
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryItems reads the item snapshot for an order.
func (r *orderRepository) queryItems(ctx context.Context, q rowQuerier, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, product_title, price, image, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductTitle, &item.Price, &item.Image, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// GetByID retrieves an order by its ID along with its item snapshot.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, user_phone, delivery_address, total_price, status, payment_method, order_date
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID,
		&order.UserID,
		&order.UserPhone,
		&order.DeliveryAddress,
		&order.TotalPrice,
		&order.Status,
		&order.PaymentMethod,
		&order.OrderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.queryItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, user_phone, delivery_address, total_price, status, payment_method, order_date
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	return r.collectOrders(ctx, rows)
}

// ListAll retrieves orders matching the admin filter, newest first.
func (r *orderRepository) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, user_phone, delivery_address, total_price, status, payment_method, order_date
		FROM orders
		WHERE ($1 = '' OR delivery_address->>'city' ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR status = $2)
		ORDER BY order_date DESC
		LIMIT $3 OFFSET $4
	`, filter.City, string(filter.Status), limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order log")
		return nil, fmt.Errorf("failed to query order log: %w", err)
	}

	return r.collectOrders(ctx, rows)
}

// collectOrders scans order rows and attaches each order's item snapshot.
func (r *orderRepository) collectOrders(ctx context.Context, rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.UserPhone,
			&order.DeliveryAddress,
			&order.TotalPrice,
			&order.Status,
			&order.PaymentMethod,
			&order.OrderDate,
		)
		if err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.queryItems(ctx, r.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}
