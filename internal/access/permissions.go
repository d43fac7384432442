package access

import "task-manager/internal/models"

// Permission adalah kapabilitas yang diberikan ke sebuah role.
type Permission string

const (
	PermTaskReadAny  Permission = "task:read:any"
	PermTaskWriteAny Permission = "task:write:any"
)

// rolePermissions memetakan role ke kapabilitas tambahan di luar kepemilikan.
// Role "user" hanya bisa mengakses task miliknya sendiri.
var rolePermissions = map[models.Role][]Permission{
	models.RoleAdmin: {PermTaskReadAny, PermTaskWriteAny},
	models.RoleUser:  {},
}

// HasPermission reports whether role has been granted perm.
func HasPermission(role models.Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
