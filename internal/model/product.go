package model

import "time"

// Product represents an item in the storefront catalogue.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Category    *string   `json:"category,omitempty"`
	InStock     *bool     `json:"inStock,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Available reports whether the product can be purchased.
// A product without an explicit stock flag is in stock.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}

// ProductInput is the admin payload for creating or editing a product.
type ProductInput struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Category    *string  `json:"category,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
}
