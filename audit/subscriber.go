package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/util"
)

// Subscribe writes an audit entry for every applied permission change and
// group deletion published on bus.
func Subscribe(bus *util.EventBus, svc Service) {
	bus.Subscribe(util.EventPermissionUpdated, func(ctx context.Context, event util.Event) error {
		change, ok := event.Payload.(model.PermissionChange)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
		}
		return svc.LogAccess(ctx, PermissionChangeLog(change))
	})

	bus.Subscribe(util.EventGroupDeleted, func(ctx context.Context, event util.Event) error {
		deletion, ok := event.Payload.(model.GroupDeletion)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
		}
		return svc.LogAccess(ctx, GroupDeletionLog(deletion))
	})

	logger.Info("Audit subscribers registered",
		zap.Strings("events", []string{util.EventPermissionUpdated, util.EventGroupDeleted}))
}

func PermissionChangeLog(change model.PermissionChange) AuditLog {
	details := map[string]interface{}{"new": change.New.PermissionSet}
	if change.Created() {
		details["action"] = "created"
	} else {
		details["action"] = "updated"
		details["old"] = change.Old.PermissionSet
	}
	changeDetails, _ := json.Marshal(details)

	return AuditLog{
		Timestamp:     time.Now().UTC(),
		UserID:        change.ActingUserID,
		Action:        ActionSetPermissions,
		UserGroupID:   change.New.UserGroupID,
		ResourceID:    change.New.Entity().String(),
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
}

func GroupDeletionLog(deletion model.GroupDeletion) AuditLog {
	changeDetails, _ := json.Marshal(map[string]interface{}{
		"action":          "deleted",
		"group_name":      deletion.GroupName,
		"deleted_records": deletion.DeletedRecords,
	})

	return AuditLog{
		Timestamp:     time.Now().UTC(),
		UserID:        deletion.ActingUserID,
		Action:        ActionDeleteGroup,
		UserGroupID:   deletion.GroupID,
		ResourceID:    "group:" + strconv.FormatInt(deletion.GroupID, 10),
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
}

// DeniedLog records a refused mutation attempt.
func DeniedLog(actingUserID int64, action string, groupID int64, resource, reason string) AuditLog {
	return AuditLog{
		Timestamp:     time.Now().UTC(),
		UserID:        actingUserID,
		Action:        action,
		UserGroupID:   groupID,
		ResourceID:    resource,
		AccessGranted: false,
		Reason:        reason,
	}
}
