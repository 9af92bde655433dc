package dao

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
)

func TestMapNodeToPermissionRecord(t *testing.T) {
	node := neo4j.Node{Props: map[string]interface{}{
		"id":            "rec-1",
		"userGroupID":   int64(4),
		"entityType":    "floor",
		"entityID":      int64(10),
		"permissionSet": []interface{}{"read", "update"},
		"createdAt":     "2024-05-01T12:00:00Z",
		"updatedAt":     "2024-05-02T12:00:00Z",
	}}

	record, err := mapNodeToPermissionRecord(node)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", record.ID)
	assert.Equal(t, int64(4), record.UserGroupID)
	assert.Equal(t, model.EntityFloor, record.EntityType)
	assert.Equal(t, int64(10), record.EntityID)
	assert.Equal(t, model.NewActionSet("read", "update"), record.PermissionSet)
	assert.Equal(t, 2, record.UpdatedAt.Day())
}

func TestMapNodeToPermissionRecord_Invalid(t *testing.T) {
	_, err := mapNodeToPermissionRecord(neo4j.Node{Props: map[string]interface{}{
		"userGroupID": int64(4),
		"entityType":  "campus",
		"entityID":    int64(1),
	}})
	assert.ErrorIs(t, err, perm_errors.ErrInvalidEntityType)

	_, err = mapNodeToPermissionRecord(neo4j.Node{Props: map[string]interface{}{
		"entityType": "room",
	}})
	assert.ErrorIs(t, err, perm_errors.ErrInvalidPermissionData)
}

func TestMapGroupRecord(t *testing.T) {
	record := &neo4j.Record{
		Keys: []string{"g", "memberIDs", "adminIDs"},
		Values: []interface{}{
			neo4j.Node{Props: map[string]interface{}{"id": int64(2), "name": "Facilities"}},
			[]interface{}{int64(11), int64(12)},
			[]interface{}{int64(11)},
		},
	}

	group, err := mapGroupRecord(record)
	require.NoError(t, err)
	assert.Equal(t, int64(2), group.ID)
	assert.Equal(t, "Facilities", group.Name)
	assert.Equal(t, []int64{11, 12}, group.MemberIDs)
	assert.True(t, group.HasAdmin(11))
	assert.False(t, group.HasAdmin(12))
}

func TestMapNodeToUser(t *testing.T) {
	user, err := mapNodeToUser(neo4j.Node{Props: map[string]interface{}{
		"id":        int64(5),
		"email":     "ops@example.com",
		"firstName": "Ops",
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, "ops@example.com", user.Email)
	assert.Empty(t, user.GroupIDs)

	_, err = mapNodeToUser(neo4j.Node{Props: map[string]interface{}{"id": "5"}})
	assert.Error(t, err)
}

func TestToInt64s(t *testing.T) {
	assert.Equal(t, []int64{1, 3}, toInt64s([]interface{}{int64(1), nil, int64(3)}))
	assert.Equal(t, []int64{}, toInt64s(nil))
}
