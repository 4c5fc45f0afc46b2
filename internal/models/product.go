package models

import "time"

type ProductStatus string

const (
	ProductStatusInStock    ProductStatus = "in-stock"
	ProductStatusLowStock   ProductStatus = "low-stock"
	ProductStatusOutOfStock ProductStatus = "out-of-stock"
)

// Product is a catalog item. Status is admin-chosen and deliberately not
// derived from the stock count: admins override it for things like
// discontinued pieces with residual stock.
type Product struct {
	ID          string        `mapstructure:"id"`
	Name        string        `mapstructure:"name"`
	Description string        `mapstructure:"description"`
	Price       float64       `mapstructure:"price"`
	Category    string        `mapstructure:"category"`
	Stock       int           `mapstructure:"stock"`
	Status      ProductStatus `mapstructure:"status"`
	Image       string        `mapstructure:"image"`
	Tags        []string      `mapstructure:"tags"`
	SKU         string        `mapstructure:"sku"`
	CreatedAt   time.Time     `mapstructure:"created_at"`
	UpdatedAt   time.Time     `mapstructure:"updated_at"`
}
