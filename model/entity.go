// api/model/entity.go
package model

import (
	"fmt"
	"strings"

	perm_errors "github.com/strafeup/permissions/api/errors"
)

// EntityType is a level of the physical hierarchy.
type EntityType string

const (
	EntityBuilding EntityType = "building"
	EntityFloor    EntityType = "floor"
	EntityRoom     EntityType = "room"
	EntityDevice   EntityType = "device"
)

// EntityTypes lists the hierarchy levels from the root down.
var EntityTypes = []EntityType{EntityBuilding, EntityFloor, EntityRoom, EntityDevice}

// ParseEntityType normalizes s and rejects anything outside the hierarchy.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%q: %w", s, perm_errors.ErrInvalidEntityType)
	}
	return t, nil
}

func (t EntityType) Valid() bool {
	return t.Depth() >= 0
}

// Depth is 0 for buildings and 3 for devices, -1 for unknown types.
func (t EntityType) Depth() int {
	for i, et := range EntityTypes {
		if et == t {
			return i
		}
	}
	return -1
}

// ChildKey names the collection of children in the serialized tree.
func (t EntityType) ChildKey() string {
	switch t {
	case EntityBuilding:
		return "floors"
	case EntityFloor:
		return "rooms"
	case EntityRoom:
		return "devices"
	default:
		return ""
	}
}

// EntityKey identifies one node of the hierarchy.
type EntityKey struct {
	Type EntityType
	ID   int64
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%d", k.Type, k.ID)
}
