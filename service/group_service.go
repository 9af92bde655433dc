// api/service/group_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/strafeup/permissions/api/audit"
	"github.com/strafeup/permissions/api/dao"
	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/pdp/engine"
	"github.com/strafeup/permissions/api/util"
)

// IGroupService defines the interface for group operations
type IGroupService interface {
	GetGroupPermissions(ctx context.Context, groupID int64) (*model.GroupPermissions, error)
	DeleteGroup(ctx context.Context, groupID int64, deleterID int64) error
}

// GroupService handles business logic for group operations
type GroupService struct {
	groups          dao.GroupDirectory
	users           dao.UserDirectory
	permissionStore dao.PermissionStore
	evaluator       *engine.Evaluator
	auditService    audit.Service
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IGroupService = &GroupService{}

// NewGroupService creates a new instance of GroupService
func NewGroupService(groups dao.GroupDirectory, users dao.UserDirectory, permissionStore dao.PermissionStore, evaluator *engine.Evaluator, auditService audit.Service, notificationSvc *util.NotificationService, eventBus *util.EventBus) *GroupService {
	service := &GroupService{
		groups:          groups,
		users:           users,
		permissionStore: permissionStore,
		evaluator:       evaluator,
		auditService:    auditService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventGroupDeleted, service.handleGroupDeleted)

	return service
}

func (s *GroupService) handleGroupDeleted(ctx context.Context, event util.Event) error {
	deletion, ok := event.Payload.(model.GroupDeletion)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
	}
	logger.Info("Group deleted event received", zap.Int64("groupID", deletion.GroupID))

	if deletion.CascadePending {
		deleted, err := s.permissionStore.DeleteByGroup(ctx, deletion.GroupID)
		if err != nil {
			return fmt.Errorf("permission records of deleted group %d: %w", deletion.GroupID, err)
		}
		deletion.DeletedRecords = deleted
		deletion.CascadePending = false
		logger.Info("Permission records of deleted group removed",
			zap.Int64("groupID", deletion.GroupID),
			zap.Int64("deletedRecords", deleted))
	}

	if err := s.notificationSvc.NotifyGroupChange(ctx, "deleted", deletion); err != nil {
		logger.Warn("Failed to send group deletion notification", zap.Error(err), zap.Int64("groupID", deletion.GroupID))
	}
	return nil
}

// GetGroupPermissions aggregates the group's records per entity type.
func (s *GroupService) GetGroupPermissions(ctx context.Context, groupID int64) (*model.GroupPermissions, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	records, err := s.permissionStore.ListByGroups(ctx, []int64{group.ID})
	if err != nil {
		logger.Error("Error listing group permissions", zap.Error(err), zap.Int64("groupID", groupID))
		return nil, err
	}
	return model.NewGroupPermissions(group.ID, records), nil
}

// DeleteGroup removes a group and every permission record it owns.
// Only the group's administrators and global admins may delete it; the admin
// group itself cannot be deleted.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID int64, deleterID int64) error {
	start := time.Now()

	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Name == s.evaluator.AdminGroupName() {
		return perm_errors.ErrImmutableAdminGroup
	}

	if !group.HasAdmin(deleterID) {
		deleter, err := s.users.GetUser(ctx, deleterID)
		if err != nil {
			return err
		}
		admin, err := s.evaluator.IsGlobalAdmin(ctx, deleter)
		if err != nil {
			return err
		}
		if !admin {
			s.logDenied(ctx, deleterID, group.ID)
			return fmt.Errorf("user %d cannot delete group %d: %w", deleterID, groupID, perm_errors.ErrForbidden)
		}
	}

	deletion, err := s.removeGroup(ctx, group)
	if err != nil {
		logger.Error("Error deleting group", zap.Error(err), zap.Int64("groupID", groupID), zap.Int64("deleterID", deleterID))
		return err
	}
	deletion.ActingUserID = deleterID
	deleted := deletion.DeletedRecords

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGroupDeleted, deletion)

	logger.Info("Group deleted successfully",
		zap.Int64("groupID", groupID),
		zap.Int64("deletedRecords", deleted),
		zap.Int64("deleterID", deleterID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// removeGroup deletes the group before its records. A failed record cleanup
// is marked CascadePending and finished by the group.deleted handler.
func (s *GroupService) removeGroup(ctx context.Context, group *model.UserGroup) (model.GroupDeletion, error) {
	deletion := model.GroupDeletion{GroupID: group.ID, GroupName: group.Name}

	if cascader, ok := s.permissionStore.(dao.GroupCascadeDeleter); ok {
		deleted, err := cascader.DeleteGroupCascade(ctx, group.ID)
		if err != nil {
			return deletion, err
		}
		deletion.DeletedRecords = deleted
		return deletion, nil
	}

	if err := s.groups.DeleteGroup(ctx, group.ID); err != nil {
		return deletion, err
	}

	deleted, err := s.permissionStore.DeleteByGroup(ctx, group.ID)
	if err != nil {
		logger.Error("Group deleted but its permission records were not, retrying asynchronously",
			zap.Error(err),
			zap.Int64("groupID", group.ID))
		deletion.CascadePending = true
		return deletion, nil
	}
	deletion.DeletedRecords = deleted
	return deletion, nil
}

func (s *GroupService) logDenied(ctx context.Context, deleterID, groupID int64) {
	if s.auditService == nil {
		return
	}
	entry := audit.DeniedLog(deleterID, audit.ActionDeleteGroup, groupID, fmt.Sprintf("group:%d", groupID), perm_errors.Code(perm_errors.ErrForbidden))
	if err := s.auditService.LogAccess(ctx, entry); err != nil {
		logger.Warn("Failed to write audit entry for denied request", zap.Error(err))
	}
}
