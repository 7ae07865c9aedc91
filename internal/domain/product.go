package domain

type Product struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Stock       int       `json:"stock"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Image       string    `json:"image"`
	CategoryID  string    `json:"categoryId"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
	ActiveFlag  bool      `json:"activeFlag"`
}

// NewProduct is the payload for creating a product.
type NewProduct struct {
	ProductName string  `json:"ProductName"`
	Stock       int     `json:"Stock"`
	Price       float64 `json:"Price"`
	Cost        float64 `json:"Cost"`
	CategoryID  string  `json:"CategoryId"`
	Description string  `json:"Description"`
}
