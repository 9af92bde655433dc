package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
)

// permissionRow is the relational form of a PermissionRecord.
type permissionRow struct {
	ID            string    `gorm:"primaryKey;size:36"`
	UserGroupID   int64     `gorm:"not null;uniqueIndex:idx_permission_key,priority:1;index"`
	EntityType    string    `gorm:"not null;size:16;uniqueIndex:idx_permission_key,priority:2"`
	EntityID      int64     `gorm:"not null;uniqueIndex:idx_permission_key,priority:3"`
	PermissionSet []string  `gorm:"serializer:json;type:text;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (permissionRow) TableName() string {
	return "permission_groups"
}

func (r permissionRow) toModel() (*model.PermissionRecord, error) {
	entityType, err := model.ParseEntityType(r.EntityType)
	if err != nil {
		return nil, fmt.Errorf("permission row %s: %w", r.ID, err)
	}
	return &model.PermissionRecord{
		ID:            r.ID,
		UserGroupID:   r.UserGroupID,
		EntityType:    entityType,
		EntityID:      r.EntityID,
		PermissionSet: model.ActionSetFromStrings(r.PermissionSet),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

// SQLPermissionDAO keeps permission records in PostgreSQL (or any gorm dialect
// supporting ON CONFLICT).
type SQLPermissionDAO struct {
	DB *gorm.DB
}

func NewSQLPermissionDAO(db *gorm.DB) (*SQLPermissionDAO, error) {
	dao := &SQLPermissionDAO{DB: db}
	if err := dao.EnsureSchema(context.Background()); err != nil {
		return nil, err
	}
	return dao, nil
}

func (dao *SQLPermissionDAO) EnsureSchema(ctx context.Context) error {
	logger.Info("Ensuring permission_groups table and unique key")
	if err := dao.DB.WithContext(ctx).AutoMigrate(&permissionRow{}); err != nil {
		logger.Error("Failed to migrate permission_groups", zap.Error(err))
		return fmt.Errorf("failed to migrate permission_groups: %w", err)
	}
	return nil
}

func (dao *SQLPermissionDAO) ListByGroups(ctx context.Context, groupIDs []int64) ([]model.PermissionRecord, error) {
	if len(groupIDs) == 0 {
		return []model.PermissionRecord{}, nil
	}

	start := time.Now()
	var rows []permissionRow
	err := dao.DB.WithContext(ctx).
		Where("user_group_id IN ?", groupIDs).
		Order("user_group_id, entity_type, entity_id").
		Find(&rows).Error
	if err != nil {
		logger.Error("Failed to list permission records", zap.Error(err), zap.Int64s("groupIDs", groupIDs))
		return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
	}

	records := make([]model.PermissionRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	logger.Debug("Permission records listed",
		zap.Int64s("groupIDs", groupIDs),
		zap.Int("count", len(records)),
		zap.Duration("duration", time.Since(start)))
	return records, nil
}

func (dao *SQLPermissionDAO) GetPermission(ctx context.Context, groupID int64, entityType model.EntityType, entityID int64) (*model.PermissionRecord, error) {
	return dao.getPermission(dao.DB.WithContext(ctx), groupID, entityType, entityID)
}

func (dao *SQLPermissionDAO) getPermission(tx *gorm.DB, groupID int64, entityType model.EntityType, entityID int64) (*model.PermissionRecord, error) {
	var row permissionRow
	err := tx.
		Where("user_group_id = ? AND entity_type = ? AND entity_id = ?", groupID, string(entityType), entityID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
	}
	return row.toModel()
}

// UpsertPermission inserts the row or, on the unique key conflict, replaces
// the stored permission set. The stored row is read back in the same transaction.
func (dao *SQLPermissionDAO) UpsertPermission(ctx context.Context, record model.PermissionRecord) (*model.PermissionRecord, error) {
	start := time.Now()
	logger.Info("Upserting permission record",
		zap.Int64("userGroupID", record.UserGroupID),
		zap.String("entityType", string(record.EntityType)),
		zap.Int64("entityID", record.EntityID),
		zap.Strings("actions", record.PermissionSet.Strings()))

	now := time.Now().UTC()
	row := permissionRow{
		ID:            uuid.New().String(),
		UserGroupID:   record.UserGroupID,
		EntityType:    string(record.EntityType),
		EntityID:      record.EntityID,
		PermissionSet: record.PermissionSet.Strings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var stored *model.PermissionRecord
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_group_id"}, {Name: "entity_type"}, {Name: "entity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"permission_set", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("%v: %w", err, perm_errors.ErrDatabaseOperation)
		}

		stored, err = dao.getPermission(tx, record.UserGroupID, record.EntityType, record.EntityID)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("upserted row not found: %w", perm_errors.ErrDatabaseOperation)
		}
		return nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to upsert permission record",
			zap.Error(err),
			zap.Int64("userGroupID", record.UserGroupID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Permission record upserted",
		zap.String("recordID", stored.ID),
		zap.Duration("duration", duration))
	return stored, nil
}

func (dao *SQLPermissionDAO) DeleteByGroup(ctx context.Context, groupID int64) (int64, error) {
	result := dao.DB.WithContext(ctx).Where("user_group_id = ?", groupID).Delete(&permissionRow{})
	if result.Error != nil {
		logger.Error("Failed to delete permission records", zap.Error(result.Error), zap.Int64("userGroupID", groupID))
		return 0, fmt.Errorf("%v: %w", result.Error, perm_errors.ErrDatabaseOperation)
	}

	logger.Info("Permission records deleted",
		zap.Int64("userGroupID", groupID),
		zap.Int64("deleted", result.RowsAffected))
	return result.RowsAffected, nil
}
