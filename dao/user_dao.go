// api/dao/user_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/strafeup/permissions/api/db"
	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	perm_neo4j "github.com/strafeup/permissions/api/model/neo4j"
	helper_util "github.com/strafeup/permissions/api/util/helper"
)

const userSequence = "user"

type UserDAO struct {
	Driver neo4j.Driver
}

func NewUserDAO(driver neo4j.Driver) *UserDAO {
	dao := &UserDAO{Driver: driver}
	// Ensure unique constraints on User ID and email
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on User ID")

	_, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		queries := []string{
			`CREATE CONSTRAINT unique_user_id IF NOT EXISTS
             FOR (u:` + perm_neo4j.LabelUser + `) REQUIRE u.` + perm_neo4j.AttrID + ` IS UNIQUE`,
			`CREATE CONSTRAINT unique_user_email IF NOT EXISTS
             FOR (u:` + perm_neo4j.LabelUser + `) REQUIRE u.` + perm_neo4j.AttrEmail + ` IS UNIQUE`,
		}
		for _, query := range queries {
			if _, err := transaction.Run(query, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on User ID", zap.Error(err))
		return err
	}

	logger.Info("Successfully ensured unique constraint on User ID")
	return nil
}

// GetUser resolves a user with the ids of the groups it belongs to and administers.
func (dao *UserDAO) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	start := time.Now()
	result, err := db.ExecuteReadTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + perm_neo4j.LabelUser + ` {` + perm_neo4j.AttrID + `: $id})
        OPTIONAL MATCH (u)-[:` + perm_neo4j.RelMemberOf + `]->(m:` + perm_neo4j.LabelGroup + `)
        WITH u, collect(DISTINCT m.` + perm_neo4j.AttrID + `) AS groupIDs
        OPTIONAL MATCH (u)-[:` + perm_neo4j.RelAdministers + `]->(a:` + perm_neo4j.LabelGroup + `)
        RETURN u, groupIDs, collect(DISTINCT a.` + perm_neo4j.AttrID + `) AS administeredGroupIDs
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}

		if result.Next() {
			record := result.Record()
			user, err := mapNodeToUser(record.Values[0].(neo4j.Node))
			if err != nil {
				return nil, err
			}
			user.GroupIDs = toInt64s(record.Values[1])
			user.AdministeredGroupIDs = toInt64s(record.Values[2])
			return user, nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, perm_errors.ErrUserNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Warn("Failed to get user",
			zap.Error(err),
			zap.Int64("userID", userID),
			zap.Duration("duration", duration))
		return nil, err
	}

	user := result.(*model.User)
	logger.Debug("User retrieved",
		zap.Int64("userID", userID),
		zap.Int("groups", len(user.GroupIDs)),
		zap.Duration("duration", duration))
	return user, nil
}

// EnsureUser returns the user registered under user.Email, creating it first
// when it does not exist yet.
func (dao *UserDAO) EnsureUser(ctx context.Context, user model.User) (*model.User, error) {
	start := time.Now()
	logger.Info("Ensuring user exists", zap.String("email", user.Email))

	result, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		lookup := `
        MATCH (u:` + perm_neo4j.LabelUser + ` {` + perm_neo4j.AttrEmail + `: $email})
        RETURN u
        `
		result, err := transaction.Run(lookup, map[string]interface{}{"email": user.Email})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return mapNodeToUser(result.Record().Values[0].(neo4j.Node))
		}

		id, err := nextID(transaction, userSequence)
		if err != nil {
			return nil, err
		}

		create := `
        CREATE (u:` + perm_neo4j.LabelUser + `)
        SET u += $props
        RETURN u
        `
		params := map[string]interface{}{
			"props": map[string]interface{}{
				perm_neo4j.AttrID:        id,
				perm_neo4j.AttrEmail:     user.Email,
				perm_neo4j.AttrFirstName: user.FirstName,
				perm_neo4j.AttrLastName:  user.LastName,
				perm_neo4j.AttrCreatedAt: helper_util.FormatTime(time.Now()),
			},
		}
		result, err = transaction.Run(create, params)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return mapNodeToUser(result.Record().Values[0].(neo4j.Node))
		}
		return nil, perm_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to ensure user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.Duration("duration", duration))
		return nil, err
	}

	ensured := result.(*model.User)
	logger.Info("User ensured",
		zap.Int64("userID", ensured.ID),
		zap.Duration("duration", duration))
	return ensured, nil
}

func mapNodeToUser(node neo4j.Node) (*model.User, error) {
	props := node.Props
	user := &model.User{}

	id, ok := props[perm_neo4j.AttrID].(int64)
	if !ok {
		return nil, fmt.Errorf("user node %s has no integer id", node.ElementId)
	}
	user.ID = id
	user.Email, _ = props[perm_neo4j.AttrEmail].(string)
	user.FirstName, _ = props[perm_neo4j.AttrFirstName].(string)
	user.LastName, _ = props[perm_neo4j.AttrLastName].(string)

	var err error
	if user.CreatedAt, err = helper_util.ParseTime(props[perm_neo4j.AttrCreatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse user createdAt: %w", err)
	}

	user.GroupIDs = []int64{}
	user.AdministeredGroupIDs = []int64{}
	return user, nil
}
