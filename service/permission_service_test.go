package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/strafeup/permissions/api/audit"
	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
	pdp_dao "github.com/strafeup/permissions/api/pdp/dao"
	"github.com/strafeup/permissions/api/pdp/engine"
	test_mock "github.com/strafeup/permissions/api/test/mock"
	"github.com/strafeup/permissions/api/util"
)

func setRequest(groupID int64, t model.EntityType, id int64, actions ...string) model.SetPermissionsRequest {
	if actions == nil {
		actions = []string{}
	}
	return model.SetPermissionsRequest{
		UserGroupID: groupID,
		EntityType:  string(t),
		EntityID:    id,
		Actions:     actions,
	}
}

func TestSetPermissions_AdminCreatesAndReplaces(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)
	ctx := context.Background()

	result, err := svc.SetPermissions(ctx, adminUserID, setRequest(tenantGroupID, model.EntityRoom, 100, "read"))
	require.NoError(t, err)
	assert.Equal(t, tenantGroupID, result.UserGroupID)
	assert.Equal(t, model.NewActionSet("read"), result.Permissions[model.EntityRoom][100])
	for _, et := range model.EntityTypes {
		assert.Contains(t, result.Permissions, et)
	}

	first, ok := f.store.get(tenantGroupID, model.EntityRoom, 100)
	require.True(t, ok)

	result, err = svc.SetPermissions(ctx, adminUserID, setRequest(tenantGroupID, model.EntityRoom, 100, "UPDATE"))
	require.NoError(t, err)
	assert.Equal(t, model.NewActionSet("update"), result.Permissions[model.EntityRoom][100])

	second, ok := f.store.get(tenantGroupID, model.EntityRoom, 100)
	require.True(t, ok)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"update"}, second.PermissionSet.Strings())
	assert.Equal(t, []string{util.PermissionLockName(tenantGroupID, model.EntityKey{Type: model.EntityRoom, ID: 100})}, f.locker.acquired[:1])
	assert.Empty(t, f.locker.held)
}

func TestSetPermissions_EmptyActionsRevoke(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)

	result, err := svc.SetPermissions(context.Background(), adminUserID, setRequest(facilityGroupID, model.EntityBuilding, 1))
	require.NoError(t, err)
	assert.Empty(t, result.Permissions[model.EntityBuilding][1])

	record, ok := f.store.get(facilityGroupID, model.EntityBuilding, 1)
	require.True(t, ok)
	assert.Empty(t, record.PermissionSet)
}

func TestSetPermissions_GroupAdminWithinInheritedGrant(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)

	result, err := svc.SetPermissions(context.Background(), managerUserID, setRequest(tenantGroupID, model.EntityDevice, 1000, "read", "update"))
	require.NoError(t, err)
	assert.Equal(t, model.NewActionSet("read", "update"), result.Permissions[model.EntityDevice][1000])
}

func TestSetPermissions_ForbiddenBeyondGrant(t *testing.T) {
	f := newFixture()
	auditService := new(test_mock.MockAuditService)
	auditService.On("LogAccess", mock.Anything, mock.MatchedBy(func(entry audit.AuditLog) bool {
		return !entry.AccessGranted &&
			entry.UserID == managerUserID &&
			entry.UserGroupID == tenantGroupID &&
			entry.Action == audit.ActionSetPermissions &&
			entry.Reason == "missing_actions"
	})).Return(nil).Once()
	svc := f.permissionService(auditService)

	_, err := svc.SetPermissions(context.Background(), managerUserID, setRequest(tenantGroupID, model.EntityDevice, 1000, "read", "delete"))
	assert.ErrorIs(t, err, perm_errors.ErrForbidden)
	assert.Equal(t, 0, f.store.upserts)
	auditService.AssertExpectations(t)
}

func TestSetPermissions_AuditFailureDoesNotChangeDecision(t *testing.T) {
	f := newFixture()
	auditService := new(test_mock.MockAuditService)
	auditService.On("LogAccess", mock.Anything, mock.Anything).Return(fmt.Errorf("elasticsearch down"))
	svc := f.permissionService(auditService)

	_, err := svc.SetPermissions(context.Background(), managerUserID, setRequest(tenantGroupID, model.EntityBuilding, 2, "read"))
	assert.ErrorIs(t, err, perm_errors.ErrForbidden)
}

func TestSetPermissions_MemberWithoutAdministrationIsForbidden(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)

	// the viewer inherits read on building 1 but administers no group
	_, err := svc.SetPermissions(context.Background(), viewerUserID, setRequest(tenantGroupID, model.EntityRoom, 100, "read"))
	assert.ErrorIs(t, err, perm_errors.ErrForbidden)
	assert.Equal(t, 0, f.store.upserts)
}

func TestSetPermissions_AdminGroupIsImmutable(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)

	_, err := svc.SetPermissions(context.Background(), adminUserID, setRequest(adminGroupID, model.EntityBuilding, 1, "read"))
	assert.ErrorIs(t, err, perm_errors.ErrImmutableAdminGroup)
	assert.Equal(t, 0, f.store.upserts)
}

func TestSetPermissions_ValidationFailures(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     model.SetPermissionsRequest
		wantErr error
	}{
		{"unknown action", setRequest(tenantGroupID, model.EntityRoom, 100, "fly"), perm_errors.ErrInvalidAction},
		{"unknown entity type", setRequest(tenantGroupID, model.EntityType("campus"), 100, "read"), perm_errors.ErrInvalidEntityType},
		{"missing group", setRequest(0, model.EntityRoom, 100, "read"), perm_errors.ErrInvalidPermissionData},
		{"nil actions", model.SetPermissionsRequest{UserGroupID: tenantGroupID, EntityType: "room", EntityID: 100}, perm_errors.ErrInvalidPermissionData},
		{"entity outside structure", setRequest(tenantGroupID, model.EntityRoom, 999, "read"), perm_errors.ErrEntityNotFound},
		{"unknown group", setRequest(42, model.EntityRoom, 100, "read"), perm_errors.ErrGroupNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetPermissions(ctx, adminUserID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, f.store.upserts)
}

func TestSetPermissions_StaleRecordDoesNotLocateEntity(t *testing.T) {
	f := newFixture()
	_, err := f.store.UpsertPermission(context.Background(), model.PermissionRecord{
		UserGroupID:   facilityGroupID,
		EntityType:    model.EntityRoom,
		EntityID:      999,
		PermissionSet: model.NewActionSet("read"),
	})
	require.NoError(t, err)
	f.store.upserts = 0
	svc := f.permissionService(nil)

	_, err = svc.SetPermissions(context.Background(), managerUserID, setRequest(tenantGroupID, model.EntityRoom, 999, "read"))
	assert.ErrorIs(t, err, perm_errors.ErrEntityNotFound)
	assert.Equal(t, 0, f.store.upserts)
}

func TestSetPermissions_StructureUnavailable(t *testing.T) {
	f := newFixture()
	f.provider.err = fmt.Errorf("connection refused: %w", perm_errors.ErrStructureUnavailable)
	svc := f.permissionService(nil)

	_, err := svc.SetPermissions(context.Background(), adminUserID, setRequest(tenantGroupID, model.EntityRoom, 100, "read"))
	assert.ErrorIs(t, err, perm_errors.ErrStructureUnavailable)
	assert.Equal(t, 0, f.store.upserts)
}

func TestSetPermissions_LockHeldByConcurrentWriter(t *testing.T) {
	f := newFixture()
	f.locker.held = map[string]bool{
		util.PermissionLockName(tenantGroupID, model.EntityKey{Type: model.EntityRoom, ID: 100}): true,
	}
	svc := f.permissionService(nil)

	_, err := svc.SetPermissions(context.Background(), adminUserID, setRequest(tenantGroupID, model.EntityRoom, 100, "read"))
	assert.ErrorIs(t, err, perm_errors.ErrLockNotAcquired)
	assert.Equal(t, 0, f.store.upserts)
}

func TestGetPermissionTree(t *testing.T) {
	f := newFixture()
	svc := f.permissionService(nil)
	ctx := context.Background()

	view, err := svc.GetPermissionTree(ctx, viewerUserID)
	require.NoError(t, err)
	assert.False(t, view.IsAdmin)
	device, ok := view.Permissions.Find(model.EntityDevice, 1000)
	require.True(t, ok)
	assert.Equal(t, model.NewActionSet("read", "update"), device.Permissions)
	other, ok := view.Permissions.Find(model.EntityBuilding, 2)
	require.True(t, ok)
	assert.Empty(t, other.Permissions)

	view, err = svc.GetPermissionTree(ctx, adminUserID)
	require.NoError(t, err)
	assert.True(t, view.IsAdmin)

	_, err = svc.GetPermissionTree(ctx, 404)
	assert.ErrorIs(t, err, perm_errors.ErrUserNotFound)
}

func TestCheckPermission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, groupID := range []int64{facilityGroupID, tenantGroupID} {
		_, err := f.store.UpsertPermission(ctx, model.PermissionRecord{
			UserGroupID:   groupID,
			EntityType:    model.EntityRoom,
			EntityID:      100,
			PermissionSet: model.NewActionSet("read"),
		})
		require.NoError(t, err)
	}
	svc := f.permissionService(nil)

	response, err := svc.CheckPermission(ctx, model.CheckPermissionRequest{UserID: viewerUserID, Action: "READ"})
	require.NoError(t, err)
	assert.Equal(t, model.CheckPermissionResponse{
		model.EntityBuilding: {1},
		model.EntityFloor:    {},
		model.EntityRoom:     {100},
		model.EntityDevice:   {},
	}, response)

	response, err = svc.CheckPermission(ctx, model.CheckPermissionRequest{UserID: viewerUserID, Action: "teleport"})
	require.NoError(t, err)
	for _, ids := range response {
		assert.Empty(t, ids)
	}

	_, err = svc.CheckPermission(ctx, model.CheckPermissionRequest{Action: "read"})
	assert.ErrorIs(t, err, perm_errors.ErrInvalidPermissionData)

	_, err = svc.CheckPermission(ctx, model.CheckPermissionRequest{UserID: 404, Action: "read"})
	assert.ErrorIs(t, err, perm_errors.ErrUserNotFound)
}

// shrinkingProvider serves the facility once and an empty site afterwards.
type shrinkingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *shrinkingProvider) GetStructure(ctx context.Context) (model.Structure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == 1 {
		return facility(), nil
	}
	return model.Structure{}, nil
}

func TestSetPermissions_ChecksAndDecidesOverOneStructure(t *testing.T) {
	f := newFixture()
	provider := &shrinkingProvider{}
	evaluator := engine.NewEvaluator(
		pdp_dao.NewSnapshotDAO(provider, f.store),
		f.directory,
		engine.EvaluatorConfig{AdminGroupName: adminGroupName, Actions: model.ActionSetFromStrings(actionVocabulary)},
		nil,
	)
	svc := NewPermissionService(PermissionServiceDeps{
		PermissionStore: f.store,
		Users:           f.directory,
		Groups:          f.directory,
		Structure:       provider,
		Evaluator:       evaluator,
		ValidationUtil:  util.NewValidationUtil(actionVocabulary),
		Locker:          f.locker,
		NotificationSvc: util.NewNotificationService(),
		EventBus:        f.bus,
	})

	_, err := svc.SetPermissions(context.Background(), managerUserID, setRequest(tenantGroupID, model.EntityRoom, 100, "read"))
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	record, ok := f.store.get(tenantGroupID, model.EntityRoom, 100)
	require.True(t, ok)
	assert.Equal(t, model.NewActionSet("read"), record.PermissionSet)
}
