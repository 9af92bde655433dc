// api/service/permission_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/strafeup/permissions/api/audit"
	"github.com/strafeup/permissions/api/dao"
	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/observability"
	"github.com/strafeup/permissions/api/pdp/engine"
	pdp_model "github.com/strafeup/permissions/api/pdp/model"
	"github.com/strafeup/permissions/api/structure"
	"github.com/strafeup/permissions/api/util"
)

// IPermissionService defines the interface for permission operations
type IPermissionService interface {
	GetPermissionTree(ctx context.Context, userID int64) (*model.PermissionTreeView, error)
	SetPermissions(ctx context.Context, actingUserID int64, req model.SetPermissionsRequest) (*model.GroupPermissions, error)
	CheckPermission(ctx context.Context, req model.CheckPermissionRequest) (model.CheckPermissionResponse, error)
}

// Locker serializes writers of one permission record key.
type Locker interface {
	Lock(ctx context.Context, name string) (func(context.Context) error, error)
}

// PermissionService handles business logic for permission operations
type PermissionService struct {
	permissionStore dao.PermissionStore
	users           dao.UserDirectory
	groups          dao.GroupDirectory
	structure       structure.Provider
	evaluator       *engine.Evaluator
	validationUtil  *util.ValidationUtil
	locker          Locker
	auditService    audit.Service
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
	metrics         *observability.Metrics
}

var _ IPermissionService = &PermissionService{}

// PermissionServiceDeps groups the collaborators of PermissionService.
type PermissionServiceDeps struct {
	PermissionStore dao.PermissionStore
	Users           dao.UserDirectory
	Groups          dao.GroupDirectory
	Structure       structure.Provider
	Evaluator       *engine.Evaluator
	ValidationUtil  *util.ValidationUtil
	Locker          Locker
	AuditService    audit.Service
	NotificationSvc *util.NotificationService
	EventBus        *util.EventBus
	Metrics         *observability.Metrics
}

// NewPermissionService creates a new instance of PermissionService
func NewPermissionService(deps PermissionServiceDeps) *PermissionService {
	service := &PermissionService{
		permissionStore: deps.PermissionStore,
		users:           deps.Users,
		groups:          deps.Groups,
		structure:       deps.Structure,
		evaluator:       deps.Evaluator,
		validationUtil:  deps.ValidationUtil,
		locker:          deps.Locker,
		auditService:    deps.AuditService,
		notificationSvc: deps.NotificationSvc,
		eventBus:        deps.EventBus,
		metrics:         deps.Metrics,
	}

	// Set up event subscriptions
	deps.EventBus.Subscribe(util.EventPermissionUpdated, service.handlePermissionUpdated)

	return service
}

func (s *PermissionService) handlePermissionUpdated(ctx context.Context, event util.Event) error {
	change, ok := event.Payload.(model.PermissionChange)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
	}

	changeType := "updated"
	if change.Created() {
		changeType = "created"
	}
	if err := s.notificationSvc.NotifyPermissionChange(ctx, changeType, change); err != nil {
		logger.Warn("Failed to send permission change notification",
			zap.Error(err),
			zap.Int64("userGroupID", change.New.UserGroupID))
	}
	return nil
}

// GetPermissionTree returns the user's permission tree over the groups they
// belong to, along with their global admin status.
func (s *PermissionService) GetPermissionTree(ctx context.Context, userID int64) (*model.PermissionTreeView, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.evaluator.IsGlobalAdmin(ctx, user)
	if err != nil {
		return nil, err
	}

	tree, err := s.evaluator.PermissionTree(ctx, user, false)
	if err != nil {
		return nil, err
	}

	return &model.PermissionTreeView{Permissions: tree, IsAdmin: isAdmin}, nil
}

// SetPermissions replaces the action set of one group on one entity. Every
// check runs before the single write; a failed check leaves storage untouched.
func (s *PermissionService) SetPermissions(ctx context.Context, actingUserID int64, req model.SetPermissionsRequest) (*model.GroupPermissions, error) {
	start := time.Now()

	entityType, actions, err := s.validationUtil.ValidateSetPermissions(req)
	if err != nil {
		s.metrics.RecordPermissionWrite("invalid")
		return nil, err
	}
	entity := model.EntityKey{Type: entityType, ID: req.EntityID}

	current, err := s.structure.GetStructure(ctx)
	if err != nil {
		s.metrics.RecordPermissionWrite("error")
		return nil, err
	}
	if !current.Contains(entityType, req.EntityID) {
		s.metrics.RecordPermissionWrite("invalid")
		return nil, fmt.Errorf("%s: %w", entity, perm_errors.ErrEntityNotFound)
	}

	group, err := s.groups.GetGroup(ctx, req.UserGroupID)
	if err != nil {
		s.metrics.RecordPermissionWrite("invalid")
		return nil, err
	}
	if group.Name == s.evaluator.AdminGroupName() {
		s.metrics.RecordPermissionWrite("denied")
		s.logDenied(ctx, actingUserID, group.ID, entity, perm_errors.Code(perm_errors.ErrImmutableAdminGroup))
		return nil, perm_errors.ErrImmutableAdminGroup
	}

	actingUser, err := s.users.GetUser(ctx, actingUserID)
	if err != nil {
		s.metrics.RecordPermissionWrite("error")
		return nil, err
	}

	decision, err := s.evaluator.Decide(ctx, pdp_model.GrantRequest{
		User:       actingUser,
		EntityType: entityType,
		EntityID:   req.EntityID,
		Actions:    actions,
		Structure:  current,
	})
	if err != nil {
		s.metrics.RecordPermissionWrite("error")
		return nil, err
	}
	if !decision.Allowed {
		s.metrics.RecordPermissionWrite("denied")
		s.logDenied(ctx, actingUserID, group.ID, entity, decision.Reason)
		return nil, fmt.Errorf("%s on %s: %w", decision.Reason, entity, perm_errors.ErrForbidden)
	}

	change, err := s.upsert(ctx, actingUserID, model.PermissionRecord{
		UserGroupID:   group.ID,
		EntityType:    entityType,
		EntityID:      req.EntityID,
		PermissionSet: actions,
	})
	if err != nil {
		s.metrics.RecordPermissionWrite("error")
		return nil, err
	}
	s.metrics.RecordPermissionWrite("ok")

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventPermissionUpdated, *change)

	records, err := s.permissionStore.ListByGroups(ctx, []int64{group.ID})
	if err != nil {
		return nil, err
	}

	logger.Info("Permissions set successfully",
		zap.Int64("userGroupID", group.ID),
		zap.String("entity", entity.String()),
		zap.Strings("actions", actions.Strings()),
		zap.Int64("actingUserID", actingUserID),
		zap.Duration("duration", time.Since(start)))
	return model.NewGroupPermissions(group.ID, records), nil
}

// upsert writes the record under the per-key lock and reports what it replaced.
func (s *PermissionService) upsert(ctx context.Context, actingUserID int64, record model.PermissionRecord) (*model.PermissionChange, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, util.PermissionLockName(record.UserGroupID, record.Entity()))
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release permission lock", zap.Error(err))
			}
		}()
	}

	old, err := s.permissionStore.GetPermission(ctx, record.UserGroupID, record.EntityType, record.EntityID)
	if err != nil {
		return nil, err
	}

	stored, err := s.permissionStore.UpsertPermission(ctx, record)
	if err != nil {
		return nil, err
	}

	return &model.PermissionChange{ActingUserID: actingUserID, Old: old, New: *stored}, nil
}

func (s *PermissionService) logDenied(ctx context.Context, actingUserID, groupID int64, entity model.EntityKey, reason string) {
	if s.auditService == nil {
		return
	}
	entry := audit.DeniedLog(actingUserID, audit.ActionSetPermissions, groupID, entity.String(), reason)
	if err := s.auditService.LogAccess(ctx, entry); err != nil {
		logger.Warn("Failed to write audit entry for denied request", zap.Error(err))
	}
}

// CheckPermission lists, per entity type, the entities on which one of the
// user's groups holds a direct grant of the action. Inheritance is not applied.
func (s *PermissionService) CheckPermission(ctx context.Context, req model.CheckPermissionRequest) (model.CheckPermissionResponse, error) {
	if err := s.validationUtil.ValidateCheckPermission(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, req.UserID)
	if err != nil {
		if !errors.Is(err, perm_errors.ErrUserNotFound) {
			logger.Error("Error resolving user for permission check", zap.Error(err), zap.Int64("userID", req.UserID))
		}
		return nil, err
	}

	records, err := s.permissionStore.ListByGroups(ctx, user.GroupIDs)
	if err != nil {
		return nil, err
	}

	action := model.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	seen := make(map[model.EntityKey]bool)
	response := make(model.CheckPermissionResponse, len(model.EntityTypes))
	for _, t := range model.EntityTypes {
		response[t] = []int64{}
	}
	for _, r := range records {
		if !r.PermissionSet.Contains(action) || seen[r.Entity()] {
			continue
		}
		seen[r.Entity()] = true
		response[r.EntityType] = append(response[r.EntityType], r.EntityID)
	}
	for _, ids := range response {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	return response, nil
}
