package model

import "github.com/google/uuid"

// CartItem is a not-yet-ordered selection belonging to a single user.
// The product title, price and image are denormalised at add time so the
// cart renders without touching the catalogue.
type CartItem struct {
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	ProductTitle string    `json:"productTitle" db:"product_title"`
	Price        int64     `json:"price" db:"price"`
	Image        string    `json:"image" db:"image"`
	Quantity     int       `json:"quantity" db:"quantity"`
}
