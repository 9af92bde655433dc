package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perm_errors "github.com/strafeup/permissions/api/errors"
)

func TestStructure_UnmarshalNormalizesIDs(t *testing.T) {
	payload := `{"1": {"10": {"100": [1000, "1001"]}}, "2": {}}`

	var s Structure
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, Structure{
		1: {10: {100: {1000, 1001}}},
		2: {},
	}, s)
	assert.True(t, s.Contains(EntityBuilding, 2))
	assert.True(t, s.Contains(EntityFloor, 10))
	assert.True(t, s.Contains(EntityRoom, 100))
	assert.True(t, s.Contains(EntityDevice, 1001))
	assert.False(t, s.Contains(EntityRoom, 1000))
	assert.False(t, s.Contains(EntityDevice, 7))
}

func TestStructure_UnmarshalRejectsBadKeys(t *testing.T) {
	var s Structure
	assert.Error(t, json.Unmarshal([]byte(`{"abc": {}}`), &s))
}

func TestParseEntityType(t *testing.T) {
	et, err := ParseEntityType(" Room ")
	require.NoError(t, err)
	assert.Equal(t, EntityRoom, et)

	_, err = ParseEntityType("location_group")
	assert.ErrorIs(t, err, perm_errors.ErrInvalidEntityType)
}

func TestActionSet(t *testing.T) {
	s := ActionSetFromStrings([]string{"Read", "create "})
	assert.Equal(t, []string{"create", "read"}, s.Strings())
	assert.True(t, NewActionSet("read").IsSubsetOf(s))
	assert.False(t, NewActionSet("delete", "read").IsSubsetOf(s))
	assert.Equal(t, []Action{"delete"}, NewActionSet("delete", "read").Difference(s))

	data, err := json.Marshal(NewActionSet())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestPermissionTree_ShapeAndFind(t *testing.T) {
	tree := NewPermissionTree(Structure{1: {10: {100: {1000}}}})

	for _, key := range []EntityKey{{EntityBuilding, 1}, {EntityFloor, 10}, {EntityRoom, 100}, {EntityDevice, 1000}} {
		node, ok := tree.Find(key.Type, key.ID)
		require.True(t, ok, key.String())
		assert.Equal(t, key.Type, node.Kind)
		assert.NotNil(t, node.Permissions)
		assert.Empty(t, node.Permissions)
	}

	_, ok := tree.Find(EntityRoom, 10)
	assert.False(t, ok)
}

func TestPermissionTree_JSON(t *testing.T) {
	tree := NewPermissionTree(Structure{1: {10: {100: {1000}}}})
	tree.Buildings[1].Permissions.Add("read")

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": {"permissions": ["read"], "floors": {"10": {"permissions": [], "rooms": {
		"100": {"permissions": [], "devices": {"1000": {"permissions": []}}}}}}}}`, string(data))
}

func TestNewGroupPermissions(t *testing.T) {
	gp := NewGroupPermissions(3, []PermissionRecord{
		{UserGroupID: 3, EntityType: EntityRoom, EntityID: 100, PermissionSet: NewActionSet("read")},
	})

	assert.Len(t, gp.Permissions, len(EntityTypes))
	assert.Equal(t, NewActionSet("read"), gp.Permissions[EntityRoom][100])
	assert.Empty(t, gp.Permissions[EntityBuilding])
}
