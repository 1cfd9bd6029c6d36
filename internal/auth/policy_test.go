package auth

import (
	"testing"

	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanModifyItem(t *testing.T) {
	owner := models.Caller{ID: "owner", Role: models.RoleUser}
	stranger := models.Caller{ID: "stranger", Role: models.RoleUser}
	admin := models.Caller{ID: "admin", Role: models.RoleAdmin}
	item := models.Item{ID: "item", OwnerID: "owner"}

	assert.True(t, CanModifyItem.Allows(owner, item))
	assert.True(t, CanModifyItem.Allows(admin, item))
	assert.False(t, CanModifyItem.Allows(stranger, item))
}

func TestHasRole(t *testing.T) {
	adminOnly := HasRole[struct{}](models.RoleAdmin)

	assert.True(t, adminOnly(models.Caller{Role: models.RoleAdmin}, struct{}{}))
	assert.False(t, adminOnly(models.Caller{Role: models.RoleUser}, struct{}{}))
	assert.False(t, adminOnly(models.Caller{}, struct{}{}))
}

func TestItemOwnerScope(t *testing.T) {
	assert.Equal(t, "u1", ItemOwnerScope(models.Caller{ID: "u1", Role: models.RoleUser}))
	assert.Equal(t, "", ItemOwnerScope(models.Caller{ID: "a1", Role: models.RoleAdmin}))
}
