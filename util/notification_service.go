// api/util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
)

type NotificationService struct {
	// Notifications are log lines until a delivery channel exists.
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyPermissionChange(ctx context.Context, changeType string, change model.PermissionChange) error {
	switch changeType {
	case "created", "updated":
		logger.Info("NOTIFICATION: Group permissions "+changeType,
			zap.Int64("userGroupID", change.New.UserGroupID),
			zap.String("entityType", string(change.New.EntityType)),
			zap.Int64("entityID", change.New.EntityID),
			zap.Strings("actions", change.New.PermissionSet.Strings()),
			zap.Int64("actingUserID", change.ActingUserID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyGroupChange(ctx context.Context, changeType string, deletion model.GroupDeletion) error {
	if changeType != "deleted" {
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	logger.Info("NOTIFICATION: Group deleted",
		zap.Int64("groupID", deletion.GroupID),
		zap.String("groupName", deletion.GroupName),
		zap.Int64("deletedRecords", deletion.DeletedRecords),
		zap.Int64("actingUserID", deletion.ActingUserID))
	return nil
}

// NotifyAdmins
func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}
