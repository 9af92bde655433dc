package service

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
)

// AdminUserEnsurer creates the bootstrap user when it is missing.
type AdminUserEnsurer interface {
	EnsureUser(ctx context.Context, user model.User) (*model.User, error)
}

// AdminGroupEnsurer creates the admin group when it is missing and makes the
// given user a member and administrator of it.
type AdminGroupEnsurer interface {
	EnsureGroup(ctx context.Context, name string, adminUserID int64) (*model.UserGroup, error)
}

// EnsureAdmin makes sure the admin user and the admin group exist.
func EnsureAdmin(ctx context.Context, users AdminUserEnsurer, groups AdminGroupEnsurer, admin model.User, groupName string) (*model.UserGroup, error) {
	user, err := users.EnsureUser(ctx, admin)
	if err != nil {
		return nil, err
	}

	group, err := groups.EnsureGroup(ctx, groupName, user.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Admin bootstrap complete",
		zap.Int64("adminUserID", user.ID),
		zap.Int64("adminGroupID", group.ID),
		zap.String("groupName", group.Name))
	return group, nil
}
