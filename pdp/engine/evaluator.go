package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/observability"
	pdp_dao "github.com/strafeup/permissions/api/pdp/dao"
	pdp_model "github.com/strafeup/permissions/api/pdp/model"
)

// SnapshotLoader reads the structure and the records of a set of groups.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, groupIDs []int64) (*pdp_dao.Snapshot, error)
	LoadSnapshotOver(ctx context.Context, structure model.Structure, groupIDs []int64) (*pdp_dao.Snapshot, error)
}

// GroupResolver finds the admin group by its configured name.
type GroupResolver interface {
	GetGroupByName(ctx context.Context, name string) (*model.UserGroup, error)
}

// EvaluatorConfig carries the settings that would otherwise be globals.
type EvaluatorConfig struct {
	AdminGroupName string
	Actions        model.ActionSet
}

// Evaluator builds permission trees and decides grant requests.
type Evaluator struct {
	loader  SnapshotLoader
	groups  GroupResolver
	config  EvaluatorConfig
	metrics *observability.Metrics
}

func NewEvaluator(loader SnapshotLoader, groups GroupResolver, config EvaluatorConfig, metrics *observability.Metrics) *Evaluator {
	return &Evaluator{
		loader:  loader,
		groups:  groups,
		config:  config,
		metrics: metrics,
	}
}

func (e *Evaluator) AdminGroupName() string {
	return e.config.AdminGroupName
}

// IsGlobalAdmin reports whether user is both a member and an administrator of
// the admin group. A missing admin group means nobody is a global admin.
func (e *Evaluator) IsGlobalAdmin(ctx context.Context, user *model.User) (bool, error) {
	group, err := e.groups.GetGroupByName(ctx, e.config.AdminGroupName)
	if errors.Is(err, perm_errors.ErrGroupNotFound) {
		logger.Warn("Admin group not found", zap.String("groupName", e.config.AdminGroupName))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return group.HasMember(user.ID) && group.HasAdmin(user.ID), nil
}

// PermissionTree builds the user's tree from the groups they are a member of,
// or only from the groups they administer when forGrant is set.
func (e *Evaluator) PermissionTree(ctx context.Context, user *model.User, forGrant bool) (*model.PermissionTree, error) {
	return e.buildTree(ctx, user, pdp_model.ScopeFor(forGrant), nil)
}

// buildTree loads a fresh snapshot unless structure is given.
func (e *Evaluator) buildTree(ctx context.Context, user *model.User, scope pdp_model.TreeScope, structure model.Structure) (*model.PermissionTree, error) {
	start := time.Now()

	var snapshot *pdp_dao.Snapshot
	var err error
	if structure != nil {
		snapshot, err = e.loader.LoadSnapshotOver(ctx, structure, scope.GroupIDs(user))
	} else {
		snapshot, err = e.loader.LoadSnapshot(ctx, scope.GroupIDs(user))
	}
	if err != nil {
		return nil, err
	}
	tree := BuildTree(snapshot.Structure, snapshot.Records)

	duration := time.Since(start)
	e.metrics.RecordTreeBuild(duration)
	logger.Debug("Permission tree built",
		zap.Int64("userID", user.ID),
		zap.String("scope", scope.String()),
		zap.Int("records", len(snapshot.Records)),
		zap.Duration("duration", duration))
	return tree, nil
}

// Decide evaluates a grant request. Anything that cannot be shown to be
// covered is denied; infrastructure failures are returned as errors.
func (e *Evaluator) Decide(ctx context.Context, req pdp_model.GrantRequest) (*pdp_model.GrantDecision, error) {
	decision, err := e.decide(ctx, req)
	if err != nil {
		e.metrics.RecordDecision(observability.DecisionError)
		return nil, err
	}

	switch {
	case decision.Reason == pdp_model.ReasonGlobalAdmin:
		e.metrics.RecordDecision(observability.DecisionAdmin)
	case decision.Allowed:
		e.metrics.RecordDecision(observability.DecisionGranted)
	default:
		e.metrics.RecordDecision(observability.DecisionDenied)
	}

	logger.Info("Grant decision",
		zap.Int64("userID", req.User.ID),
		zap.String("entity", req.Entity().String()),
		zap.Strings("actions", req.Actions.Strings()),
		zap.Bool("allowed", decision.Allowed),
		zap.String("reason", decision.Reason))
	return decision, nil
}

func (e *Evaluator) decide(ctx context.Context, req pdp_model.GrantRequest) (*pdp_model.GrantDecision, error) {
	admin, err := e.IsGlobalAdmin(ctx, req.User)
	if err != nil {
		return nil, err
	}
	if admin {
		return &pdp_model.GrantDecision{Allowed: true, Reason: pdp_model.ReasonGlobalAdmin}, nil
	}

	if e.config.Actions != nil {
		if unknown := req.Actions.Difference(e.config.Actions); len(unknown) > 0 {
			return &pdp_model.GrantDecision{Reason: pdp_model.ReasonUnknownAction, Missing: unknown}, nil
		}
	}

	tree, err := e.buildTree(ctx, req.User, pdp_model.ScopeGrant, req.Structure)
	if err != nil {
		return nil, err
	}

	node, ok := tree.Find(req.EntityType, req.EntityID)
	if !ok {
		return &pdp_model.GrantDecision{Reason: pdp_model.ReasonEntityNotLocated}, nil
	}

	effective := node.Permissions.Clone()
	if missing := req.Actions.Difference(effective); len(missing) > 0 {
		return &pdp_model.GrantDecision{
			Reason:    pdp_model.ReasonMissingActions,
			Missing:   missing,
			Effective: effective,
		}, nil
	}
	return &pdp_model.GrantDecision{
		Allowed:   true,
		Reason:    pdp_model.ReasonCovered,
		Effective: effective,
	}, nil
}

// CanGrant reports whether user may assign actions on the entity.
func (e *Evaluator) CanGrant(ctx context.Context, user *model.User, entityType model.EntityType, entityID int64, actions model.ActionSet) (bool, error) {
	decision, err := e.Decide(ctx, pdp_model.GrantRequest{
		User:       user,
		EntityType: entityType,
		EntityID:   entityID,
		Actions:    actions,
	})
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}
