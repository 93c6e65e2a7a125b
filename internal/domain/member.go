package domain

import "time"

const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Member links a user to a store with a role.
type Member struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	PINHash   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasPIN reports whether a PIN code was configured for the member.
func (m Member) HasPIN() bool {
	return m.PINHash != ""
}

// ValidRole reports whether role can be assigned to a store member.
// The owner role is implied by store ownership and never stored.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// CanManage reports whether role may change store settings and staff.
func CanManage(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

// CanEditInventory reports whether role may change products and categories.
func CanEditInventory(role string) bool {
	return CanManage(role) || role == RoleManager
}
