package model

// CartItem is a product and the quantity the shopper wants.
// The product is a snapshot taken when the item was added.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity for the line.
func (i CartItem) Subtotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// CartItemRequest is the payload for adding a product to the cart.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// QuantityRequest is the payload for setting an item quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// WishlistItemRequest is the payload for adding a product to the wishlist.
type WishlistItemRequest struct {
	ProductID string `json:"productId"`
}

// CartResponse is the JSON view of a cart.
type CartResponse struct {
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
	TotalItems int        `json:"totalItems"`
}

// WishlistResponse is the JSON view of a wishlist.
type WishlistResponse struct {
	Items []Product `json:"items"`
}
