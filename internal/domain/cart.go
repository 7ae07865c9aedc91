package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLineItem struct {
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
}

// Subtotal is quantity * unit price, unrounded.
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartSnapshot is the serialized form of a cart, used for persistence and change notification.
type CartSnapshot struct {
	Items   []CartLineItem `json:"items"`
	SavedAt time.Time      `json:"saved_at"`
}
