// Package policy holds the access rules applied to every county-scoped
// resource. Predicates are pure; callers confirm resource existence first so
// a denied probe yields 403, not 404.
package policy

import "county-task-api/entity"

// CanAccessCounty reports whether user may view or mutate resources owned by
// the given county. Admins may access any county; a county user only their own.
func CanAccessCounty(user entity.User, countyID int64) bool {
	if user.Role == entity.RoleAdmin {
		return true
	}
	return user.CountyID != nil && *user.CountyID == countyID
}

// IsAdmin gates county creation/deletion, task creation and deletion, manual
// reminders, form uploads and user management.
func IsAdmin(user entity.User) bool {
	return user.Role == entity.RoleAdmin
}
