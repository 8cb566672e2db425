package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusOrdered    OrderStatus = "Ordered"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOrdered, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed.
// Cancelled is terminal so stock is never restored twice.
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled
}

// PaymentCOD is the only supported payment method.
const PaymentCOD = "COD"

// DeliveryAddress is the address snapshot copied from the user profile at
// placement time.
type DeliveryAddress struct {
	FullName string `json:"fullName"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

// OrderItem is one line of the immutable item snapshot taken at placement.
type OrderItem struct {
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	ProductTitle string    `json:"productTitle" db:"product_title"`
	Price        int64     `json:"price" db:"price"`
	Image        string    `json:"image" db:"image"`
	Quantity     int       `json:"quantity" db:"quantity"`
}

// Order represents a customer order. Items and the delivery address are
// snapshots; they do not change when the catalogue or profile changes.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	UserPhone       string          `json:"userPhone" db:"user_phone"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress" db:"delivery_address"`
	Items           []OrderItem     `json:"items"`
	TotalPrice      int64           `json:"totalPrice" db:"total_price"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	OrderDate       time.Time       `json:"orderDate" db:"order_date"`
}

// OrderFilter narrows the admin order log.
type OrderFilter struct {
	City   string
	Status OrderStatus
	Limit  int
	Offset int
}
