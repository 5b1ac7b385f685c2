package service

import (
	"slices"

	"github.com/rl1809/inventory/internal/core/domain"
)

// managerPermissions is the fixed allow-list granted to managers on top
// of their explicit permission set.
var managerPermissions = []string{domain.PermViewReports, domain.PermViewAnalytics}

// HasPermission gates an operation for a user. Admins pass every check,
// managers pass the report/analytics allow-list, everything else falls
// back to the user's explicit permission set.
func HasPermission(user *domain.User, permission string) bool {
	if user == nil {
		return false
	}
	if user.Role == domain.RoleAdmin {
		return true
	}
	if user.Role == domain.RoleManager && slices.Contains(managerPermissions, permission) {
		return true
	}
	return slices.Contains(user.Permissions, permission)
}
