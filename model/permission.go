// api/model/permission.go
package model

import "time"

// PermissionRecord grants a set of actions to one user group over one entity.
// At most one record exists per (UserGroupID, EntityType, EntityID).
type PermissionRecord struct {
	ID            string     `json:"id"`
	UserGroupID   int64      `json:"user_group_id"`
	EntityType    EntityType `json:"entity_type"`
	EntityID      int64      `json:"entity_id"`
	PermissionSet ActionSet  `json:"permission_set"`
	CreatedAt     time.Time  `json:"created"`
	UpdatedAt     time.Time  `json:"updated"`
}

func (r PermissionRecord) Entity() EntityKey {
	return EntityKey{Type: r.EntityType, ID: r.EntityID}
}

type SetPermissionsRequest struct {
	UserGroupID int64    `json:"user_group_id" validate:"required,gt=0"`
	EntityType  string   `json:"entity_type" validate:"required"`
	EntityID    int64    `json:"entity_id" validate:"required,gt=0"`
	Actions     []string `json:"actions" validate:"required,dive,required"`
}

type CheckPermissionRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Action string `json:"action" validate:"required,max=255"`
}

// CheckPermissionResponse lists entity ids per type carrying the checked action.
type CheckPermissionResponse map[EntityType][]int64

// GroupPermissions is the per-entity-type view of one group's records.
type GroupPermissions struct {
	UserGroupID int64                              `json:"user_group_id"`
	Permissions map[EntityType]map[int64]ActionSet `json:"permissions"`
}

// NewGroupPermissions aggregates records; every entity type key is present.
func NewGroupPermissions(groupID int64, records []PermissionRecord) *GroupPermissions {
	gp := &GroupPermissions{
		UserGroupID: groupID,
		Permissions: make(map[EntityType]map[int64]ActionSet, len(EntityTypes)),
	}
	for _, t := range EntityTypes {
		gp.Permissions[t] = make(map[int64]ActionSet)
	}
	for _, r := range records {
		byID, ok := gp.Permissions[r.EntityType]
		if !ok {
			continue
		}
		set, ok := byID[r.EntityID]
		if !ok {
			set = NewActionSet()
			byID[r.EntityID] = set
		}
		set.Union(r.PermissionSet)
	}
	return gp
}

type PermissionTreeView struct {
	Permissions *PermissionTree `json:"permissions"`
	IsAdmin     bool            `json:"is_admin"`
}
