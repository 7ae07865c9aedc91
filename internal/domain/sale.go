package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNoSaleLines = errors.New("sale request needs at least one line")

type SaleLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type SaleRequest struct {
	UserID string
	Lines  []SaleLine
}

// NewSaleRequest maps cart lines 1:1 to sale lines, preserving order.
func NewSaleRequest(userID string, items []CartLineItem) (*SaleRequest, error) {
	if len(items) == 0 {
		return nil, ErrNoSaleLines
	}
	lines := make([]SaleLine, len(items))
	for i, item := range items {
		lines[i] = SaleLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return &SaleRequest{UserID: userID, Lines: lines}, nil
}

// SaleResult is the sale-creation reply after boundary parsing.
type SaleResult struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	SaleID  string `json:"sale_id,omitempty"`
}

type Sale struct {
	SaleID      string    `json:"saleId"`
	SaleDate    Timestamp `json:"saleDate"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	TotalAmount float64   `json:"totalAmount"`
	TotalProfit float64   `json:"totalProfit"`
	TotalCost   float64   `json:"totalCost"`
}

type SaleDetail struct {
	ID          string  `json:"sDId"`
	Quantity    int     `json:"quantity"`
	ProductName string  `json:"productName"`
	CatName     string  `json:"catName"`
	Description string  `json:"description"`
	TotalPrice  float64 `json:"totalPrice"`
	TotalCost   float64 `json:"totalCost"`
}
