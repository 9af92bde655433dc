package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/strafeup/permissions/api/db"
	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	perm_neo4j "github.com/strafeup/permissions/api/model/neo4j"
	helper_util "github.com/strafeup/permissions/api/util/helper"
)

// PermissionDAO stores permission records as nodes linked from their group.
type PermissionDAO struct {
	Driver neo4j.Driver
}

func NewPermissionDAO(driver neo4j.Driver) *PermissionDAO {
	dao := &PermissionDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for PermissionRecord", zap.Error(err))
	}
	return dao
}

func (dao *PermissionDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on PermissionRecord key")

	_, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_permission_record IF NOT EXISTS
        FOR (p:` + perm_neo4j.LabelPermissionRecord + `)
        REQUIRE (p.` + perm_neo4j.AttrUserGroupID + `, p.` + perm_neo4j.AttrEntityType + `, p.` + perm_neo4j.AttrEntityID + `) IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on PermissionRecord key", zap.Error(err))
		return err
	}

	logger.Info("Successfully ensured unique constraint on PermissionRecord key")
	return nil
}

func (dao *PermissionDAO) ListByGroups(ctx context.Context, groupIDs []int64) ([]model.PermissionRecord, error) {
	if len(groupIDs) == 0 {
		return []model.PermissionRecord{}, nil
	}

	start := time.Now()
	result, err := db.ExecuteReadTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + perm_neo4j.LabelPermissionRecord + `)
        WHERE p.` + perm_neo4j.AttrUserGroupID + ` IN $groupIDs
        RETURN p
        `
		result, err := transaction.Run(query, map[string]interface{}{"groupIDs": groupIDs})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}

		records := []model.PermissionRecord{}
		for result.Next() {
			record, err := mapNodeToPermissionRecord(result.Record().Values[0].(neo4j.Node))
			if err != nil {
				return nil, err
			}
			records = append(records, *record)
		}
		return records, result.Err()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to list permission records",
			zap.Error(err),
			zap.Int64s("groupIDs", groupIDs),
			zap.Duration("duration", duration))
		return nil, err
	}

	records := result.([]model.PermissionRecord)
	logger.Debug("Permission records listed",
		zap.Int64s("groupIDs", groupIDs),
		zap.Int("count", len(records)),
		zap.Duration("duration", duration))
	return records, nil
}

func (dao *PermissionDAO) GetPermission(ctx context.Context, groupID int64, entityType model.EntityType, entityID int64) (*model.PermissionRecord, error) {
	result, err := db.ExecuteReadTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + perm_neo4j.LabelPermissionRecord + ` {
            ` + perm_neo4j.AttrUserGroupID + `: $userGroupID,
            ` + perm_neo4j.AttrEntityType + `: $entityType,
            ` + perm_neo4j.AttrEntityID + `: $entityID
        })
        RETURN p
        `
		result, err := transaction.Run(query, keyParams(groupID, entityType, entityID))
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return mapNodeToPermissionRecord(result.Record().Values[0].(neo4j.Node))
		}
		return (*model.PermissionRecord)(nil), result.Err()
	})
	if err != nil {
		logger.Error("Failed to get permission record",
			zap.Error(err),
			zap.Int64("userGroupID", groupID),
			zap.String("entityType", string(entityType)),
			zap.Int64("entityID", entityID))
		return nil, err
	}
	return result.(*model.PermissionRecord), nil
}

// UpsertPermission relies on MERGE under the composite uniqueness constraint,
// so concurrent writers for one key end with a single node and the last
// permission set written.
func (dao *PermissionDAO) UpsertPermission(ctx context.Context, record model.PermissionRecord) (*model.PermissionRecord, error) {
	start := time.Now()
	logger.Info("Upserting permission record",
		zap.Int64("userGroupID", record.UserGroupID),
		zap.String("entityType", string(record.EntityType)),
		zap.Int64("entityID", record.EntityID),
		zap.Strings("actions", record.PermissionSet.Strings()))

	result, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrID + `: $userGroupID})
        MERGE (p:` + perm_neo4j.LabelPermissionRecord + ` {
            ` + perm_neo4j.AttrUserGroupID + `: $userGroupID,
            ` + perm_neo4j.AttrEntityType + `: $entityType,
            ` + perm_neo4j.AttrEntityID + `: $entityID
        })
        ON CREATE SET p.` + perm_neo4j.AttrID + ` = $id, p.` + perm_neo4j.AttrCreatedAt + ` = $now
        SET p.` + perm_neo4j.AttrPermissionSet + ` = $permissionSet, p.` + perm_neo4j.AttrUpdatedAt + ` = $now
        MERGE (g)-[:` + perm_neo4j.RelHasPermission + `]->(p)
        RETURN p
        `
		params := keyParams(record.UserGroupID, record.EntityType, record.EntityID)
		params["id"] = uuid.New().String()
		params["now"] = helper_util.FormatTime(time.Now())
		params["permissionSet"] = record.PermissionSet.Strings()

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return mapNodeToPermissionRecord(result.Record().Values[0].(neo4j.Node))
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, perm_errors.ErrGroupNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to upsert permission record",
			zap.Error(err),
			zap.Int64("userGroupID", record.UserGroupID),
			zap.Duration("duration", duration))
		return nil, err
	}

	stored := result.(*model.PermissionRecord)
	logger.Info("Permission record upserted",
		zap.String("recordID", stored.ID),
		zap.Duration("duration", duration))
	return stored, nil
}

func (dao *PermissionDAO) DeleteByGroup(ctx context.Context, groupID int64) (int64, error) {
	start := time.Now()
	result, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + perm_neo4j.LabelPermissionRecord + ` {` + perm_neo4j.AttrUserGroupID + `: $userGroupID})
        DETACH DELETE p
        RETURN count(p) AS deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"userGroupID": groupID})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return result.Record().Values[0].(int64), nil
		}
		return int64(0), result.Err()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete permission records",
			zap.Error(err),
			zap.Int64("userGroupID", groupID),
			zap.Duration("duration", duration))
		return 0, err
	}

	deleted := result.(int64)
	logger.Info("Permission records deleted",
		zap.Int64("userGroupID", groupID),
		zap.Int64("deleted", deleted),
		zap.Duration("duration", duration))
	return deleted, nil
}

// DeleteGroupCascade removes the group node and every record it owns in one
// write transaction. ErrGroupNotFound rolls the transaction back.
func (dao *PermissionDAO) DeleteGroupCascade(ctx context.Context, groupID int64) (int64, error) {
	start := time.Now()
	logger.Info("Deleting group with its permission records", zap.Int64("groupID", groupID))

	result, err := db.ExecuteWriteTransaction(ctx, dao.Driver, func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:` + perm_neo4j.LabelGroup + ` {` + perm_neo4j.AttrID + `: $userGroupID})
        OPTIONAL MATCH (p:` + perm_neo4j.LabelPermissionRecord + ` {` + perm_neo4j.AttrUserGroupID + `: $userGroupID})
        WITH g, collect(p) AS records
        FOREACH (r IN records | DETACH DELETE r)
        DETACH DELETE g
        RETURN size(records) AS deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"userGroupID": groupID})
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}
		if result.Next() {
			return result.Record().Values[0].(int64), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, perm_errors.ErrGroupNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete group with its permission records",
			zap.Error(err),
			zap.Int64("groupID", groupID),
			zap.Duration("duration", duration))
		return 0, err
	}

	deleted := result.(int64)
	logger.Info("Group and permission records deleted",
		zap.Int64("groupID", groupID),
		zap.Int64("deleted", deleted),
		zap.Duration("duration", duration))
	return deleted, nil
}

func keyParams(groupID int64, entityType model.EntityType, entityID int64) map[string]interface{} {
	return map[string]interface{}{
		"userGroupID": groupID,
		"entityType":  string(entityType),
		"entityID":    entityID,
	}
}

func mapNodeToPermissionRecord(node neo4j.Node) (*model.PermissionRecord, error) {
	props := node.Props
	record := &model.PermissionRecord{}

	record.ID, _ = props[perm_neo4j.AttrID].(string)

	groupID, ok := props[perm_neo4j.AttrUserGroupID].(int64)
	if !ok {
		return nil, fmt.Errorf("permission record %q: missing %s: %w", record.ID, perm_neo4j.AttrUserGroupID, perm_errors.ErrInvalidPermissionData)
	}
	record.UserGroupID = groupID

	entityType, _ := props[perm_neo4j.AttrEntityType].(string)
	parsed, err := model.ParseEntityType(entityType)
	if err != nil {
		return nil, fmt.Errorf("permission record %q: %w", record.ID, err)
	}
	record.EntityType = parsed

	entityID, ok := props[perm_neo4j.AttrEntityID].(int64)
	if !ok {
		return nil, fmt.Errorf("permission record %q: missing %s: %w", record.ID, perm_neo4j.AttrEntityID, perm_errors.ErrInvalidPermissionData)
	}
	record.EntityID = entityID

	record.PermissionSet = model.NewActionSet()
	if raw, ok := props[perm_neo4j.AttrPermissionSet].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				record.PermissionSet.Add(model.Action(s))
			}
		}
	}

	if record.CreatedAt, err = helper_util.ParseTime(props[perm_neo4j.AttrCreatedAt]); err != nil {
		return nil, fmt.Errorf("permission record %q: %w", record.ID, err)
	}
	if record.UpdatedAt, err = helper_util.ParseTime(props[perm_neo4j.AttrUpdatedAt]); err != nil {
		return nil, fmt.Errorf("permission record %q: %w", record.ID, err)
	}

	return record, nil
}
