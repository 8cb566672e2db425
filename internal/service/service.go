package service

import (
	"context"

	"recell-store/internal/model"

	"github.com/google/uuid"
)

// AuthService defines authentication and account lifecycle operations.
type AuthService interface {
	// Signup registers an email/password account and opens a session.
	Signup(ctx context.Context, email, password, name string) (*model.User, string, error)

	// Login authenticates an email/password account and opens a session.
	Login(ctx context.Context, email, password string) (*model.User, string, error)

	// GoogleSignIn exchanges an OAuth authorization code for a federated
	// identity, creating the account on first sign-in.
	GoogleSignIn(ctx context.Context, code string) (*model.User, string, error)

	// Logout terminates the session identified by token.
	Logout(ctx context.Context, token string) error

	// ValidateSession resolves a session token to its user.
	ValidateSession(ctx context.Context, token string) (*model.User, error)

	// RequestPasswordReset issues a reset token when the email exists.
	// It reports success either way so accounts cannot be enumerated.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and sets a new password.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// UserService defines profile and admin user-overview operations.
type UserService interface {
	// UpdateProfile writes the delivery profile and recomputes the
	// profile-completed flag.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *model.ProfileInput) (*model.User, error)

	// GetByID retrieves a user.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// List retrieves users for the admin overview.
	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// ProductService defines catalogue operations.
type ProductService interface {
	// List retrieves products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create adds a product to the catalogue.
	Create(ctx context.Context, input *model.ProductInput) (*model.Product, error)

	// Update replaces a product's fields.
	Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartService defines cart operations.
type CartService interface {
	// List retrieves the user's cart.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Add puts a product in the cart (quantity 1). Adding a product that
	// is already there is reported, not duplicated.
	Add(ctx context.Context, userID, productID uuid.UUID) (*model.CartItem, error)

	// Remove takes a product out of the cart.
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

// OrderService defines order operations around the placement and
// cancellation transactions.
type OrderService interface {
	// Checkout places an order for the user's whole cart.
	Checkout(ctx context.Context, user *model.User) (*model.Order, error)

	// Cancel is the user-initiated cancellation; only Ordered orders
	// belonging to the user qualify.
	Cancel(ctx context.Context, user *model.User, orderID uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order visible to the user (owners see their
	// own; admins see all).
	GetByID(ctx context.Context, user *model.User, id uuid.UUID) (*model.Order, error)

	// ListMine retrieves the user's order history.
	ListMine(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListAll retrieves the admin order log.
	ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus progresses an order (admin). Setting Cancelled runs
	// the full restock transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// Delete removes an order (admin), restoring stock unless it was
	// already Cancelled.
	Delete(ctx context.Context, id uuid.UUID) error
}

// TicketService defines support desk operations.
type TicketService interface {
	// Create opens a ticket on behalf of the user.
	Create(ctx context.Context, user *model.User, input *model.TicketInput) (*model.SupportTicket, error)

	// ListMine retrieves the user's tickets.
	ListMine(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error)

	// ListAll retrieves tickets for the admin desk, optionally by status.
	ListAll(ctx context.Context, status model.TicketStatus) ([]model.SupportTicket, error)

	// Update progresses a ticket and records the admin response.
	Update(ctx context.Context, id uuid.UUID, update *model.TicketUpdate) (*model.SupportTicket, error)
}
