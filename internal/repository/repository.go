package repository

import (
	"context"

	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that the repositories use.
// This allows the database to be mocked in tests.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// List retrieves products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update replaces a product's mutable fields. Stock written here is an
	// admin correction; order flow stock changes go through OrderRepository.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartRepository defines the interface for per-user cart data access.
type CartRepository interface {
	// List retrieves all cart items for a user.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Get retrieves a single cart item. Returns nil when absent.
	Get(ctx context.Context, userID, productID uuid.UUID) (*model.CartItem, error)

	// Add inserts a cart item for the user.
	Add(ctx context.Context, userID uuid.UUID, item *model.CartItem) error

	// Remove deletes a single cart item.
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

// CancelOptions constrains the cancellation transaction.
type CancelOptions struct {
	// OwnerID, when set, requires the order to belong to this user. A
	// mismatch is reported as not-found so order IDs cannot be probed.
	OwnerID *uuid.UUID

	// RequireOrdered rejects cancellation unless the status is Ordered.
	// Set on the user-initiated path; admins may cancel later stages.
	RequireOrdered bool
}

// OrderRepository defines the interface for order data access. Place,
// Cancel and Delete are single database transactions; no partial state
// they produce is ever visible to a concurrent reader.
type OrderRepository interface {
	// Place atomically validates stock for every item, creates the order
	// with a server-assigned timestamp, decrements stock and clears the
	// user's cart. Returns the IDs of products whose stock reached zero.
	// Fails with an out-of-stock domain error naming the offending item;
	// on any failure the cart and stock are untouched.
	Place(ctx context.Context, order *model.Order) ([]uuid.UUID, error)

	// Cancel atomically restores stock for every item of the order and
	// marks it Cancelled. A Cancelled order is never cancelled again.
	Cancel(ctx context.Context, id uuid.UUID, opts CancelOptions) (*model.Order, error)

	// Delete removes an order, restoring stock first unless the order was
	// already Cancelled.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatus sets a non-Cancelled status. Cancellations go through
	// Cancel so stock is restored.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// GetByID retrieves an order with its item snapshot. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListAll retrieves orders matching the admin filter, newest first.
	ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}

// TicketRepository defines the interface for support ticket data access.
type TicketRepository interface {
	Create(ctx context.Context, ticket *model.SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SupportTicket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error)
	ListAll(ctx context.Context, status model.TicketStatus) ([]model.SupportTicket, error)
	Update(ctx context.Context, ticket *model.SupportTicket) error
}

// UserRepository defines the interface for account and profile data access.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// SessionRepository defines the interface for session and password reset
// token storage.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error

	// GetUser resolves a session token to its user. Returns nil for an
	// unknown or expired token.
	GetUser(ctx context.Context, token string) (*model.User, error)

	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)

	CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error
	GetResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, token string) error
}
