package dao

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/strafeup/permissions/api/model"
)

func newSQLStore(t *testing.T) *SQLPermissionDAO {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every connection to :memory: opens a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store, err := NewSQLPermissionDAO(gdb)
	require.NoError(t, err)
	return store
}

func TestSQLPermissionDAO_UpsertReplaces(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	first, err := store.UpsertPermission(ctx, model.PermissionRecord{
		UserGroupID: 7, EntityType: model.EntityRoom, EntityID: 100,
		PermissionSet: model.NewActionSet("create"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.NewActionSet("create"), first.PermissionSet)

	second, err := store.UpsertPermission(ctx, model.PermissionRecord{
		UserGroupID: 7, EntityType: model.EntityRoom, EntityID: 100,
		PermissionSet: model.NewActionSet("read"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.NewActionSet("read"), second.PermissionSet)

	got, err := store.GetPermission(ctx, 7, model.EntityRoom, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"read"}, got.PermissionSet.Strings())
}

func TestSQLPermissionDAO_EmptySetIsStored(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	rec, err := store.UpsertPermission(ctx, model.PermissionRecord{
		UserGroupID: 1, EntityType: model.EntityBuilding, EntityID: 1,
		PermissionSet: model.NewActionSet(),
	})
	require.NoError(t, err)
	assert.Empty(t, rec.PermissionSet)
}

func TestSQLPermissionDAO_ConcurrentUpsertsKeepOneRow(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, action := range []model.Action{"create", "read", "update", "delete"} {
		wg.Add(1)
		go func(a model.Action) {
			defer wg.Done()
			_, err := store.UpsertPermission(ctx, model.PermissionRecord{
				UserGroupID: 3, EntityType: model.EntityDevice, EntityID: 1000,
				PermissionSet: model.NewActionSet(a),
			})
			assert.NoError(t, err)
		}(action)
	}
	wg.Wait()

	records, err := store.ListByGroups(ctx, []int64{3})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0].PermissionSet, 1)
}

func TestSQLPermissionDAO_ListAndDeleteByGroup(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	seed := []model.PermissionRecord{
		{UserGroupID: 1, EntityType: model.EntityBuilding, EntityID: 1, PermissionSet: model.NewActionSet("read")},
		{UserGroupID: 1, EntityType: model.EntityFloor, EntityID: 10, PermissionSet: model.NewActionSet("update")},
		{UserGroupID: 2, EntityType: model.EntityRoom, EntityID: 100, PermissionSet: model.NewActionSet("delete")},
	}
	for _, r := range seed {
		_, err := store.UpsertPermission(ctx, r)
		require.NoError(t, err)
	}

	records, err := store.ListByGroups(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = store.ListByGroups(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	deleted, err := store.DeleteByGroup(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	records, err = store.ListByGroups(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].UserGroupID)

	missing, err := store.GetPermission(ctx, 1, model.EntityBuilding, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
