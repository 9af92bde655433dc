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

const groupSequence = "user_group"

type GroupDAO struct {
	Driver neo4j.Driver
}

func NewGroupDAO(driver neo4j.Driver) *GroupDAO {
	dao := &GroupDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Group", zap.Error(err))
	}
	return dao
}

func (dao *GroupDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Group ID and name")

	_, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		queries := []string{
			`CREATE CONSTRAINT unique_group_id IF NOT EXISTS
             FOR (g:` + perm_neo4j.LabelGroup + `) REQUIRE g.` + perm_neo4j.AttrID + ` IS UNIQUE`,
			`CREATE CONSTRAINT unique_group_name IF NOT EXISTS
             FOR (g:` + perm_neo4j.LabelGroup + `) REQUIRE g.` + perm_neo4j.AttrName + ` IS UNIQUE`,
		}
		for _, query := range queries {
			if _, err := transaction.Run(query, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Group", zap.Error(err))
		return err
	}

	logger.Info("Successfully ensured unique constraint on Group ID and name")
	return nil
}

// groupReturn collects member and administrator ids of the matched group g.
const groupReturn = `
        OPTIONAL MATCH (m:` + perm_neo4j.LabelUser + `)-[:` + perm_neo4j.RelMemberOf + `]->(g)
        WITH g, collect(DISTINCT m.` + perm_neo4j.AttrID + `) AS memberIDs
        OPTIONAL MATCH (a:` + perm_neo4j.LabelUser + `)-[:` + perm_neo4j.RelAdministers + `]->(g)
        RETURN g, memberIDs, collect(DISTINCT a.` + perm_neo4j.AttrID + `) AS adminIDs
        `

func (dao *GroupDAO) GetGroup(ctx context.Context, groupID int64) (*model.UserGroup, error) {
	query := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrID + `: $id})` + groupReturn
	return dao.findGroup(ctx, query, map[string]interface{}{"id": groupID}, zap.Int64("groupID", groupID))
}

func (dao *GroupDAO) GetGroupByName(ctx context.Context, name string) (*model.UserGroup, error) {
	query := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrName + `: $name})` + groupReturn
	return dao.findGroup(ctx, query, map[string]interface{}{"name": name}, zap.String("groupName", name))
}

func (dao *GroupDAO) findGroup(ctx context.Context, query string, params map[string]interface{}, field zap.Field) (*model.UserGroup, error) {
	start := time.Now()
	result, err := db.ExecuteReadTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return mapGroupRecord(result.Record())
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, perm_errors.ErrGroupNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Warn("Failed to get group", zap.Error(err), field, zap.Duration("duration", duration))
		return nil, err
	}

	logger.Debug("Group retrieved", field, zap.Duration("duration", duration))
	return result.(*model.UserGroup), nil
}

// EnsureGroup returns the group called name, creating it when missing, and
// makes adminUserID both a member and an administrator of it.
func (dao *GroupDAO) EnsureGroup(ctx context.Context, name string, adminUserID int64) (*model.UserGroup, error) {
	start := time.Now()
	logger.Info("Ensuring group exists", zap.String("groupName", name), zap.Int64("adminUserID", adminUserID))

	_, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		lookup := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrName + `: $name})
        RETURN g.` + perm_neo4j.AttrID + `
        `
		result, err := transaction.Run(lookup, map[string]interface{}{"name": name})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if !result.Next() {
			id, err := nextID(transaction, groupSequence)
			if err != nil {
				return nil, err
			}
			now := helper_util.FormatTime(time.Now())
			create := `
            CREATE (g:` + perm_neo4j.LabelGroup + `)
            SET g += $props
            `
			props := map[string]interface{}{
				perm_neo4j.AttrID:        id,
				perm_neo4j.AttrName:      name,
				perm_neo4j.AttrCreatedAt: now,
				perm_neo4j.AttrUpdatedAt: now,
			}
			if _, err := transaction.Run(create, map[string]interface{}{"props": props}); err != nil {
				return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
			}
		}

		link := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrName + `: $name})
        MATCH (u:` + perm_neo4j.LabelUser + ` {` + perm_neo4j.AttrID + `: $userID})
        MERGE (u)-[:` + perm_neo4j.RelMemberOf + `]->(g)
        MERGE (u)-[:` + perm_neo4j.RelAdministers + `]->(g)
        RETURN g
        `
		result, err = transaction.Run(link, map[string]interface{}{"name": name, "userID": adminUserID})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if !result.Next() {
			return nil, perm_errors.ErrUserNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to ensure group",
			zap.Error(err),
			zap.String("groupName", name),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Group ensured", zap.String("groupName", name), zap.Duration("duration", duration))
	return dao.GetGroupByName(ctx, name)
}

// DeleteGroup removes the group node and its relationships. Permission records
// are removed by the caller through the configured PermissionStore.
func (dao *GroupDAO) DeleteGroup(ctx context.Context, groupID int64) error {
	start := time.Now()
	logger.Info("Deleting group", zap.Int64("groupID", groupID))

	_, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrID + `: $id})
        DETACH DELETE g
        RETURN count(g) AS deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": groupID})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, perm_errors.ErrGroupNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete group",
			zap.Error(err),
			zap.Int64("groupID", groupID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Group deleted successfully",
		zap.Int64("groupID", groupID),
		zap.Duration("duration", duration))
	return nil
}

func mapGroupRecord(record *neo4j.Record) (*model.UserGroup, error) {
	node, ok := record.Values[0].(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected group value %T", record.Values[0])
	}
	group, err := mapNodeToGroup(node)
	if err != nil {
		return nil, err
	}
	group.MemberIDs = toInt64s(record.Values[1])
	group.AdminIDs = toInt64s(record.Values[2])
	return group, nil
}

func mapNodeToGroup(node neo4j.Node) (*model.UserGroup, error) {
	props := node.Props
	group := &model.UserGroup{}

	id, ok := props[perm_neo4j.AttrID].(int64)
	if !ok {
		return nil, fmt.Errorf("group node %s has no integer id", node.ElementId)
	}
	group.ID = id
	group.Name, _ = props[perm_neo4j.AttrName].(string)

	var err error
	if group.CreatedAt, err = helper_util.ParseTime(props[perm_neo4j.AttrCreatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse group createdAt: %w", err)
	}
	if group.UpdatedAt, err = helper_util.ParseTime(props[perm_neo4j.AttrUpdatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse group updatedAt: %w", err)
	}

	group.MemberIDs = []int64{}
	group.AdminIDs = []int64{}
	return group, nil
}

// nextID issues the next integer id of the named sequence inside transaction.
func nextID(transaction neo4j.Transaction, sequence string) (int64, error) {
	query := `
    MERGE (s:` + perm_neo4j.LabelSequence + ` {` + perm_neo4j.AttrName + `: $name})
    ON CREATE SET s.` + perm_neo4j.AttrValue + ` = 0
    SET s.` + perm_neo4j.AttrValue + ` = s.` + perm_neo4j.AttrValue + ` + 1
    RETURN s.` + perm_neo4j.AttrValue + `
    `
	result, err := transaction.Run(query, map[string]interface{}{"name": sequence})
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
	}
	if !result.Next() {
		return 0, fmt.Errorf("sequence %s returned no value: %w", sequence, perm_errors.ErrDatabaseOperation)
	}
	return result.Record().Values[0].(int64), nil
}

// toInt64s converts a collected Cypher list, dropping nulls and non-integers.
func toInt64s(value interface{}) []int64 {
	out := []int64{}
	list, ok := value.([]interface{})
	if !ok {
		return out
	}
	for _, v := range list {
		if id, ok := v.(int64); ok {
			out = append(out, id)
		}
	}
	return out
}
