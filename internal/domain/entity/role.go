package entity

// Account roles
const (
	RoleUser   = "user"
	RoleAdmin  = "Admin"
	RoleSeller = "Seller"
)

// Session subject kinds carried in session tokens.
const (
	KindUser = "user"
	KindShop = "shop"
)
