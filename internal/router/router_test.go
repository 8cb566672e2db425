package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recell-store/internal/handler"
	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, password, name string) (*model.User, string, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) GoogleSignIn(ctx context.Context, code string) (*model.User, string, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *model.ProfileInput) (*model.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID, productID uuid.UUID) (*model.CartItem, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, user *model.User) (*model.Order, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, user *model.User, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, user, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, user *model.User, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, user, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTicketService is a mock implementation of service.TicketService.
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Create(ctx context.Context, user *model.User, input *model.TicketInput) (*model.SupportTicket, error) {
	args := m.Called(ctx, user, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SupportTicket), args.Error(1)
}

func (m *MockTicketService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupportTicket), args.Error(1)
}

func (m *MockTicketService) ListAll(ctx context.Context, status model.TicketStatus) ([]model.SupportTicket, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupportTicket), args.Error(1)
}

func (m *MockTicketService) Update(ctx context.Context, id uuid.UUID, update *model.TicketUpdate) (*model.SupportTicket, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SupportTicket), args.Error(1)
}

// testServer bundles the router with its service mocks.
type testServer struct {
	handler http.Handler
	auth    *MockAuthService
	user    *MockUserService
	product *MockProductService
	cart    *MockCartService
	order   *MockOrderService
	ticket  *MockTicketService

	customer *model.User
	admin    *model.User
}

const (
	customerToken = "customer-session-token"
	adminToken    = "admin-session-token"
)

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	ts := &testServer{
		auth:    new(MockAuthService),
		user:    new(MockUserService),
		product: new(MockProductService),
		cart:    new(MockCartService),
		order:   new(MockOrderService),
		ticket:  new(MockTicketService),
		customer: &model.User{
			ID:    uuid.New(),
			Email: "asha@example.com",
			Role:  model.RoleUser,
		},
		admin: &model.User{
			ID:    uuid.New(),
			Email: "admin@example.com",
			Role:  model.RoleAdmin,
		},
	}

	ts.auth.On("ValidateSession", mock.Anything, customerToken).Return(ts.customer, nil).Maybe()
	ts.auth.On("ValidateSession", mock.Anything, adminToken).Return(ts.admin, nil).Maybe()
	ts.auth.On("ValidateSession", mock.Anything, mock.Anything).Return(nil, model.ErrUnauthorised).Maybe()

	handlers := Handlers{
		Auth:    handler.NewAuthHandler(ts.auth, logger),
		User:    handler.NewUserHandler(ts.user, logger),
		Product: handler.NewProductHandler(ts.product, logger),
		Cart:    handler.NewCartHandler(ts.cart, logger),
		Order:   handler.NewOrderHandler(ts.order, logger),
		Ticket:  handler.NewTicketHandler(ts.ticket, logger),
		Media:   handler.NewMediaHandler(nil, logger),
	}
	ts.handler = New(handlers, ts.auth, "", logger)

	return ts
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PublicCatalogue(t *testing.T) {
	ts := newTestServer(t)

	t.Run("list without a session", func(t *testing.T) {
		ts.product.On("List", mock.Anything, mock.AnythingOfType("model.ProductFilter")).
			Return([]model.Product{{ID: uuid.New(), Brand: "Apple", Model: "iPhone 13"}}, nil).Once()

		rec := ts.request(t, http.MethodGet, "/api/products?type=Phone", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var products []model.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
		assert.Len(t, products, 1)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/products/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		id := uuid.New()
		ts.product.On("GetByID", mock.Anything, id).Return(nil, model.ErrProductNotFound).Once()

		rec := ts.request(t, http.MethodGet, "/api/products/"+id.String(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_AuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("signup returns a session", func(t *testing.T) {
		ts.auth.On("Signup", mock.Anything, "asha@example.com", "secret123", "Asha").
			Return(ts.customer, customerToken, nil).Once()

		rec := ts.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"email":    "asha@example.com",
			"password": "secret123",
			"name":     "Asha",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Token string     `json:"token"`
			User  model.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, customerToken, resp.Token)
		assert.Equal(t, "asha@example.com", resp.User.Email)
	})

	t.Run("bad credentials", func(t *testing.T) {
		ts.auth.On("Login", mock.Anything, "asha@example.com", "wrong").
			Return(nil, "", model.ErrInvalidCredentials).Once()

		rec := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "asha@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("throttled login", func(t *testing.T) {
		ts.auth.On("Login", mock.Anything, "asha@example.com", "secret123").
			Return(nil, "", model.ErrTooManyAttempts).Once()

		rec := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "asha@example.com",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestRouter_SessionRequired(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no token", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/cart", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/cart", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		ts.cart.On("List", mock.Anything, ts.customer.ID).Return([]model.CartItem{}, nil).Once()

		rec := ts.request(t, http.MethodGet, "/api/cart", customerToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouter_Checkout(t *testing.T) {
	ts := newTestServer(t)

	t.Run("out of stock maps to conflict", func(t *testing.T) {
		ts.order.On("Checkout", mock.Anything, ts.customer).
			Return(nil, model.NewOutOfStockError("Apple iPhone 13")).Once()

		rec := ts.request(t, http.MethodPost, "/api/orders", customerToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.ErrCodeOutOfStock, resp.Error)
		assert.Equal(t, `Sorry, "Apple iPhone 13" is out of stock.`, resp.Message)
	})

	t.Run("empty cart maps to bad request", func(t *testing.T) {
		ts.order.On("Checkout", mock.Anything, ts.customer).
			Return(nil, model.ErrCartEmpty).Once()

		rec := ts.request(t, http.MethodPost, "/api/orders", customerToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("placed order is returned", func(t *testing.T) {
		placed := &model.Order{ID: uuid.New(), UserID: ts.customer.ID, Status: model.StatusOrdered, TotalPrice: 1000}
		ts.order.On("Checkout", mock.Anything, ts.customer).Return(placed, nil).Once()

		rec := ts.request(t, http.MethodPost, "/api/orders", customerToken, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var order model.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
		assert.Equal(t, placed.ID, order.ID)
		assert.Equal(t, model.StatusOrdered, order.Status)
	})
}

func TestRouter_AdminAccess(t *testing.T) {
	ts := newTestServer(t)

	t.Run("regular user forbidden", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/admin/orders", customerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous unauthorised", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/admin/orders", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		ts.order.On("ListAll", mock.Anything, mock.AnythingOfType("model.OrderFilter")).
			Return([]model.Order{}, nil).Once()

		rec := ts.request(t, http.MethodGet, "/api/admin/orders", adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("status update", func(t *testing.T) {
		orderID := uuid.New()
		ts.order.On("UpdateStatus", mock.Anything, orderID, model.StatusShipped).
			Return(&model.Order{ID: orderID, Status: model.StatusShipped}, nil).Once()

		rec := ts.request(t, http.MethodPatch, "/api/admin/orders/"+orderID.String(), adminToken,
			map[string]string{"status": "Shipped"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cancelled order refuses further changes", func(t *testing.T) {
		orderID := uuid.New()
		ts.order.On("UpdateStatus", mock.Anything, orderID, model.StatusDelivered).
			Return(nil, model.ErrInvalidStatus).Once()

		rec := ts.request(t, http.MethodPatch, "/api/admin/orders/"+orderID.String(), adminToken,
			map[string]string{"status": "Delivered"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRouter_Tickets(t *testing.T) {
	ts := newTestServer(t)

	t.Run("create", func(t *testing.T) {
		ts.ticket.On("Create", mock.Anything, ts.customer, mock.AnythingOfType("*model.TicketInput")).
			Return(&model.SupportTicket{ID: uuid.New(), Status: model.TicketOpen}, nil).Once()

		rec := ts.request(t, http.MethodPost, "/api/tickets", customerToken, map[string]string{
			"type":        model.TicketTypeOrderIssue,
			"subject":     "Damaged on arrival",
			"description": "Cracked screen",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("admin update invalid transition", func(t *testing.T) {
		id := uuid.New()
		ts.ticket.On("Update", mock.Anything, id, mock.AnythingOfType("*model.TicketUpdate")).
			Return(nil, model.ErrInvalidStatus).Once()

		rec := ts.request(t, http.MethodPatch, "/api/admin/tickets/"+id.String(), adminToken,
			map[string]string{"status": "Open"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
