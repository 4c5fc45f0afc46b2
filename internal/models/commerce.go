package models

// CartItem is an ephemeral purchase-intent line. Carts live only in memory and
// reset with the service.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// WishlistItem is a liked catalog item, persisted per user.
type WishlistItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
}
