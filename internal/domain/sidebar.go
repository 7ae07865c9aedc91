package domain

type SidebarView string

const (
	SidebarProducts SidebarView = "products"
	SidebarSales    SidebarView = "sales"
	SidebarUsers    SidebarView = "users"
)

func (v SidebarView) Valid() bool {
	switch v {
	case SidebarProducts, SidebarSales, SidebarUsers:
		return true
	}
	return false
}
