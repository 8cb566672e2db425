package events

import "time"

// Routing keys on the store events exchange.
const (
	KeyOrderPlaced        = "order.placed"
	KeyOrderCancelled     = "order.cancelled"
	KeyOrderStatusChanged = "order.status_changed"
	KeyStockDepleted      = "stock.depleted"
	KeyTicketCreated      = "ticket.created"
)

// Line is one product/quantity pair in an order event.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderEvent is emitted after an order placement, cancellation or status
// change commits. It carries enough for a consumer to react without a
// read back into the store.
type OrderEvent struct {
	EventType  string    `json:"eventType"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"totalPrice"`
	Items      []Line    `json:"items"`
	Timestamp  time.Time `json:"timestamp"`
}

// StockDepletedEvent is emitted when an order placement drives a product's
// stock to zero.
type StockDepletedEvent struct {
	EventType string    `json:"eventType"`
	ProductID string    `json:"productId"`
	OrderID   string    `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketCreatedEvent is emitted when a support ticket is opened.
type TicketCreatedEvent struct {
	EventType string    `json:"eventType"`
	TicketID  string    `json:"ticketId"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
}
