// Package access decides whether an identity may touch a task.
//
// Every function here is pure: no state, no I/O, no errors. Callers check
// that the task exists before asking, so a missing task is reported as not
// found rather than forbidden.
package access

import "task-manager/internal/models"

// Scope adalah predicate list task yang diterapkan di query database.
type Scope struct {
	All     bool
	OwnerID int
}

func CanRead(identity *models.User, task *models.Task) bool {
	return allowed(identity, task, PermTaskReadAny)
}

// CanWrite covers update and delete.
func CanWrite(identity *models.User, task *models.Task) bool {
	return allowed(identity, task, PermTaskWriteAny)
}

func ListScope(identity *models.User) Scope {
	if identity == nil {
		// id 0 tidak pernah dipakai oleh database, jadi hasilnya kosong
		return Scope{}
	}
	if HasPermission(identity.Role, PermTaskReadAny) {
		return Scope{All: true}
	}
	return Scope{OwnerID: identity.ID}
}

func allowed(identity *models.User, task *models.Task, perm Permission) bool {
	if identity == nil || task == nil {
		return false
	}
	return task.OwnerID == identity.ID || HasPermission(identity.Role, perm)
}
