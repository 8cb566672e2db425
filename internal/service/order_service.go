package service

import (
	"context"
	"fmt"

	"recell-store/internal/events"
	"recell-store/internal/model"
	"recell-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. The atomicity of placement and
// cancellation lives in the repository transactions; this layer owns the
// preconditions and the post-commit event fan-out.
type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		publisher: publisher,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Checkout places an order for the user's whole cart.
func (s *orderService) Checkout(ctx context.Context, user *model.User) (*model.Order, error) {
	if !user.ProfileCompleted {
		s.logger.Debug().Str("user_id", user.ID.String()).Msg("checkout with incomplete profile")
		return nil, model.ErrProfileIncomplete
	}

	cart, err := s.cartRepo.List(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart) == 0 {
		return nil, model.ErrCartEmpty
	}

	items := make([]model.OrderItem, len(cart))
	var total int64
	for i, c := range cart {
		items[i] = model.OrderItem{
			ProductID:    c.ProductID,
			ProductTitle: c.ProductTitle,
			Price:        c.Price,
			Image:        c.Image,
			Quantity:     c.Quantity,
		}
		total += c.Price * int64(c.Quantity)
	}

	order := &model.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		UserPhone: user.Phone,
		DeliveryAddress: model.DeliveryAddress{
			FullName: user.Name,
			Street:   user.AddressLine1,
			City:     user.City,
			Pincode:  user.Pincode,
		},
		Items:         items,
		TotalPrice:    total,
		Status:        model.StatusOrdered,
		PaymentMethod: model.PaymentCOD,
	}

	depleted, err := s.orderRepo.Place(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", user.ID.String()).
		Int("item_count", len(items)).
		Int64("total_price", total).
		Msg("order placed")

	if pubErr := s.publisher.OrderPlaced(ctx, order); pubErr != nil {
		s.logger.Warn().Err(pubErr).Str("order_id", order.ID.String()).Msg("failed to publish order placed event")
	}
	for _, productID := range depleted {
		if pubErr := s.publisher.StockDepleted(ctx, order.ID, productID); pubErr != nil {
			s.logger.Warn().Err(pubErr).Str("product_id", productID.String()).Msg("failed to publish stock depleted event")
		}
	}

	return order, nil
}

// Cancel is the user-initiated cancellation. Admins may cancel any user's
// order through this path as well; regular users only their own, and only
// while it is still Ordered.
func (s *orderService) Cancel(ctx context.Context, user *model.User, orderID uuid.UUID) (*model.Order, error) {
	opts := repository.CancelOptions{RequireOrdered: true}
	if user.Role != model.RoleAdmin {
		opts.OwnerID = &user.ID
	}

	order, err := s.orderRepo.Cancel(ctx, orderID, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("user_id", user.ID.String()).
		Msg("order cancelled by user")

	if pubErr := s.publisher.OrderCancelled(ctx, order); pubErr != nil {
		s.logger.Warn().Err(pubErr).Str("order_id", orderID.String()).Msg("failed to publish order cancelled event")
	}

	return order, nil
}

// GetByID retrieves an order the user is allowed to see.
func (s *orderService) GetByID(ctx context.Context, user *model.User, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if user.Role != model.RoleAdmin && order.UserID != user.ID {
		// Hide other users' orders entirely.
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListMine retrieves the user's order history.
func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll retrieves the admin order log.
func (s *orderService) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	orders, err := s.orderRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus progresses an order. A change to Cancelled runs the full
// restock transaction; every other change is a plain status write.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	var (
		order *model.Order
		err   error
	)
	if status == model.StatusCancelled {
		order, err = s.orderRepo.Cancel(ctx, id, repository.CancelOptions{})
	} else {
		order, err = s.orderRepo.UpdateStatus(ctx, id, status)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	var pubErr error
	if status == model.StatusCancelled {
		pubErr = s.publisher.OrderCancelled(ctx, order)
	} else {
		pubErr = s.publisher.OrderStatusChanged(ctx, order)
	}
	if pubErr != nil {
		s.logger.Warn().Err(pubErr).Str("order_id", id.String()).Msg("failed to publish order status event")
	}

	return order, nil
}

// Delete removes an order, restoring stock unless already Cancelled.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")

	return nil
}
