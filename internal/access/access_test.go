package access

import (
	"testing"

	"task-manager/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanReadCanWriteTruthTable(t *testing.T) {
	alice := &models.User{ID: 1, Role: models.RoleUser}
	bob := &models.User{ID: 2, Role: models.RoleUser}
	root := &models.User{ID: 3, Role: models.RoleAdmin}
	unknownRole := &models.User{ID: 4, Role: models.Role("auditor")}

	aliceTask := &models.Task{ID: 10, OwnerID: alice.ID}
	rootTask := &models.Task{ID: 11, OwnerID: root.ID}

	tests := []struct {
		name     string
		identity *models.User
		task     *models.Task
		want     bool
	}{
		{"owner", alice, aliceTask, true},
		{"other user", bob, aliceTask, false},
		{"admin on foreign task", root, aliceTask, true},
		{"admin on own task", root, rootTask, true},
		{"user on admin task", alice, rootTask, false},
		{"unknown role gets no capability", unknownRole, aliceTask, false},
		{"nil identity", nil, aliceTask, false},
		{"nil task", alice, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanRead(tt.identity, tt.task), "CanRead")
			assert.Equal(t, tt.want, CanWrite(tt.identity, tt.task), "CanWrite")
		})
	}
}

func TestOwnershipHoldsForEveryRole(t *testing.T) {
	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		for id := 1; id <= 5; id++ {
			identity := &models.User{ID: id, Role: role}
			own := &models.Task{OwnerID: id}
			foreign := &models.Task{OwnerID: id + 100}

			assert.True(t, CanRead(identity, own))
			assert.True(t, CanWrite(identity, own))
			assert.Equal(t, role == models.RoleAdmin, CanRead(identity, foreign))
			assert.Equal(t, role == models.RoleAdmin, CanWrite(identity, foreign))
		}
	}
}

func TestListScope(t *testing.T) {
	assert.Equal(t, Scope{All: true}, ListScope(&models.User{ID: 9, Role: models.RoleAdmin}))
	assert.Equal(t, Scope{OwnerID: 4}, ListScope(&models.User{ID: 4, Role: models.RoleUser}))
	assert.Equal(t, Scope{}, ListScope(nil))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(models.RoleAdmin, PermTaskReadAny))
	assert.True(t, HasPermission(models.RoleAdmin, PermTaskWriteAny))
	assert.False(t, HasPermission(models.RoleUser, PermTaskReadAny))
	assert.False(t, HasPermission(models.Role(""), PermTaskWriteAny))
}
