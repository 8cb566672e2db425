package integration

import (
	"context"
	"testing"
	"time"

	"recell-store/internal/database"
	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the schema
// migrations and opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.RunMigrations(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB truncates every table between test cases.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE support_tickets, order_items, orders, cart_items, password_reset_tokens, sessions, products, users CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to clean up database: %v", err)
	}
}

// SeedUser inserts a user with a completed delivery profile.
func SeedUser(t *testing.T, pool *pgxpool.Pool) *model.User {
	t.Helper()

	user := &model.User{
		ID:               uuid.New(),
		Email:            "asha@example.com",
		PasswordHash:     "not-a-real-hash",
		Name:             "Asha Rao",
		Phone:            "9876543210",
		City:             "Bengaluru",
		AddressLine1:     "12 MG Road",
		Pincode:          "560001",
		ProfileCompleted: true,
		Role:             model.RoleUser,
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, name, phone, city, address_line1, pincode, profile_completed, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, user.City,
		user.AddressLine1, user.Pincode, user.ProfileCompleted, user.Role)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedProduct inserts a product with the given price and stock.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, brand, modelName string, price int64, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		ID:        uuid.New(),
		Type:      model.ProductTypePhone,
		Brand:     brand,
		Model:     modelName,
		Price:     price,
		Condition: model.ConditionGood,
		Stock:     stock,
		Media:     model.ProductMedia{Images: []string{"front.jpg"}},
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, type, brand, model, price, warranty, condition, verified, stock, media, specs, faults, description)
		VALUES ($1, $2, $3, $4, $5, '', $6, false, $7, $8, $9, '', '')
	`, product.ID, product.Type, product.Brand, product.Model, product.Price,
		product.Condition, product.Stock, product.Media, product.Specs)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

// SeedCartItem puts a product snapshot in the user's cart.
func SeedCartItem(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, product *model.Product, quantity int) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO cart_items (user_id, product_id, product_title, price, image, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, product.ID, product.Title(), product.Price, product.FirstImage(), quantity)
	if err != nil {
		t.Fatalf("failed to seed cart item: %v", err)
	}
}

// ProductStock reads a product's current stock.
func ProductStock(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CartCount reads the number of cart rows for a user.
func CartCount(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count cart items: %v", err)
	}
	return count
}
