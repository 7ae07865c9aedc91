package query

// Root segments of the cached views.
const (
	Products    = "products"
	Sales       = "sales"
	SaleDetails = "saleDetails"
	Users       = "users"
	UserRole    = "userRole"
	Category    = "category"
)
