package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/id"
)

func TestUser_Validate(t *testing.T) {
	ctx := context.Background()

	admin := NewUser("admin@shop.test", "hash", appctx.RoleAdmin)
	assert.NoError(t, admin.Validate(ctx))

	noEmail := NewUser("", "hash", appctx.RoleAdmin)
	assert.Error(t, noEmail.Validate(ctx))

	badRole := NewUser("x@y.z", "hash", "manager")
	assert.Error(t, badRole.Validate(ctx))

	orphanWorker := NewUser("w@y.z", "hash", appctx.RoleWorker)
	assert.Error(t, orphanWorker.Validate(ctx), "worker without admin")

	adminID := id.New()
	worker := NewUser("w@y.z", "hash", appctx.RoleWorker)
	worker.AdminID = &adminID
	assert.NoError(t, worker.Validate(ctx))
}

func TestUser_ShopID(t *testing.T) {
	admin := NewUser("admin@shop.test", "hash", appctx.RoleAdmin)
	assert.Equal(t, admin.ID, admin.ShopID(), "admin is their own shop")

	adminID := id.New()
	worker := NewUser("w@y.z", "hash", appctx.RoleWorker)
	worker.AdminID = &adminID
	assert.Equal(t, adminID, worker.ShopID(), "worker operates on the owning admin's shop")
}

func TestUser_Lockout(t *testing.T) {
	u := NewUser("x@y.z", "hash", appctx.RoleAdmin)
	assert.NoError(t, u.CanLogin())

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(5, 15*time.Minute)
	}
	assert.NoError(t, u.CanLogin(), "still below the attempt limit")

	u.RecordFailedLogin(5, 15*time.Minute)
	assert.True(t, u.IsLocked())
	assert.Error(t, u.CanLogin())

	u.RecordSuccessfulLogin()
	assert.False(t, u.IsLocked())
	assert.Equal(t, 0, u.FailedLoginAttempts)
	assert.NotNil(t, u.LastLoginAt)
}

func TestUser_CanLogin_Disabled(t *testing.T) {
	u := NewUser("x@y.z", "hash", appctx.RoleAdmin)
	u.IsActive = false
	assert.Error(t, u.CanLogin())
}
