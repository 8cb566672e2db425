package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product types sold by the store.
const (
	ProductTypePhone  = "Phone"
	ProductTypeLaptop = "Laptop"
)

// Product conditions.
const (
	ConditionNew     = "New"
	ConditionLikeNew = "Like New"
	ConditionGood    = "Good"
	ConditionFaulty  = "Faulty"
)

// ProductMedia holds references to externally hosted product assets.
// Only URLs are stored; the binaries live in the object store.
type ProductMedia struct {
	Images []string `json:"images"`
	Video  string   `json:"video"`
}

// ProductSpecs holds the hardware specification sheet.
type ProductSpecs struct {
	Processor string `json:"processor"`
	RAM       string `json:"ram"`
	Storage   string `json:"storage"`
	Battery   string `json:"battery"`
	Display   string `json:"display"`
	OS        string `json:"os"`
}

// Product represents a refurbished device in the catalogue.
// Price is in integer currency units; Stock is mutated only by admin
// operations and by the order placement/cancellation transactions.
type Product struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Type        string       `json:"type" db:"type"`
	Brand       string       `json:"brand" db:"brand"`
	Model       string       `json:"model" db:"model"`
	Price       int64        `json:"price" db:"price"`
	Warranty    string       `json:"warranty" db:"warranty"`
	Condition   string       `json:"condition" db:"condition"`
	Verified    bool         `json:"verified" db:"verified"`
	Stock       int          `json:"stock" db:"stock"`
	Media       ProductMedia `json:"media" db:"media"`
	Specs       ProductSpecs `json:"specs" db:"specs"`
	Faults      string       `json:"faults" db:"faults"`
	Description string       `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}

// Title returns the display title for the product. The brand is prepended
// unless the model name already starts with it.
func (p *Product) Title() string {
	if strings.HasPrefix(strings.ToLower(p.Model), strings.ToLower(p.Brand)) {
		return p.Model
	}
	return p.Brand + " " + p.Model
}

// FirstImage returns the primary product image URL, or empty if none.
func (p *Product) FirstImage() string {
	if len(p.Media.Images) > 0 {
		return p.Media.Images[0]
	}
	return ""
}

// ValidProductType reports whether t is a known product type.
func ValidProductType(t string) bool {
	return t == ProductTypePhone || t == ProductTypeLaptop
}

// ValidCondition reports whether c is a known product condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFaulty:
		return true
	}
	return false
}

// ProductFilter narrows catalogue listings.
type ProductFilter struct {
	Type      string
	Brand     string
	Condition string
	MinPrice  int64
	MaxPrice  int64
	InStock   bool
	Limit     int
	Offset    int
}

// ProductInput is the payload for creating or updating a product.
type ProductInput struct {
	Type        string       `json:"type"`
	Brand       string       `json:"brand"`
	Model       string       `json:"model"`
	Price       int64        `json:"price"`
	Warranty    string       `json:"warranty"`
	Condition   string       `json:"condition"`
	Verified    bool         `json:"verified"`
	Stock       int          `json:"stock"`
	Media       ProductMedia `json:"media"`
	Specs       ProductSpecs `json:"specs"`
	Faults      string       `json:"faults"`
	Description string       `json:"description,omitempty"`
}
