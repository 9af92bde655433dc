package util

import (
	"context"
	"fmt"
	"time"

	"github.com/strafeup/permissions/api/db"
	"github.com/strafeup/permissions/api/model"
)

// LockService hands out short-lived Redis locks.
type LockService struct {
	ttl time.Duration
}

func NewLockService(ttl time.Duration) *LockService {
	return &LockService{ttl: ttl}
}

func (l *LockService) Lock(ctx context.Context, name string) (func(context.Context) error, error) {
	return db.LockResource(ctx, name, l.ttl)
}

// PermissionLockName names the lock guarding one permission record key.
func PermissionLockName(groupID int64, entity model.EntityKey) string {
	return fmt.Sprintf("permission:%d:%s:%d", groupID, entity.Type, entity.ID)
}
