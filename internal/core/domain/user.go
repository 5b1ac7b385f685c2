package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// Permission names used by the access controller and the role bundles.
const (
	PermCreateProduct = "create_product"
	PermEditProduct   = "edit_product"
	PermDeleteProduct = "delete_product"
	PermViewProducts  = "view_products"
	PermCreateOrder   = "create_order"
	PermViewOrders    = "view_orders"
	PermManageOrders  = "manage_orders"
	PermViewReports   = "view_reports"
	PermViewAnalytics = "view_analytics"
)

// DefaultPermissions returns the permission bundle assigned when a user
// is created with or moved to the given role. Admins carry no explicit
// bundle since the admin role short-circuits every permission check.
func DefaultPermissions(role Role) []string {
	switch role {
	case RoleManager:
		return []string{PermCreateProduct, PermEditProduct, PermViewReports, PermManageOrders}
	case RoleStaff:
		return []string{PermViewProducts, PermCreateOrder, PermViewOrders}
	}
	return nil
}

type User struct {
	ID             string
	Username       string
	PasswordDigest string
	Role           Role
	Permissions    []string
	IsActive       bool
	CreatedAt      time.Time
}
