// api/dao/store.go
package dao

import (
	"context"

	"github.com/strafeup/permissions/api/model"
)

// PermissionStore persists permission records. At most one record exists per
// (user group, entity type, entity id).
type PermissionStore interface {
	// ListByGroups returns every record owned by any of the given groups.
	ListByGroups(ctx context.Context, groupIDs []int64) ([]model.PermissionRecord, error)
	// GetPermission returns nil without error when no record exists.
	GetPermission(ctx context.Context, groupID int64, entityType model.EntityType, entityID int64) (*model.PermissionRecord, error)
	// UpsertPermission creates the record or replaces its action set in one atomic step.
	UpsertPermission(ctx context.Context, record model.PermissionRecord) (*model.PermissionRecord, error)
	DeleteByGroup(ctx context.Context, groupID int64) (int64, error)
}

// GroupCascadeDeleter is implemented by stores that keep records next to the
// group itself and can remove both in a single transaction.
type GroupCascadeDeleter interface {
	DeleteGroupCascade(ctx context.Context, groupID int64) (int64, error)
}

// UserDirectory resolves users together with their group memberships.
type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*model.User, error)
}

type GroupDirectory interface {
	GetGroup(ctx context.Context, groupID int64) (*model.UserGroup, error)
	GetGroupByName(ctx context.Context, name string) (*model.UserGroup, error)
	DeleteGroup(ctx context.Context, groupID int64) error
}

var (
	_ PermissionStore = &PermissionDAO{}
	_ PermissionStore = &SQLPermissionDAO{}

	_ GroupCascadeDeleter = &PermissionDAO{}
	_ UserDirectory   = &UserDAO{}
	_ GroupDirectory  = &GroupDAO{}
)
