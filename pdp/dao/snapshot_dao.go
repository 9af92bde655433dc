package dao

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/strafeup/permissions/api/dao"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/structure"
)

// Snapshot is everything a tree build reads: one structure and the grant
// records of the selected groups.
type Snapshot struct {
	Structure model.Structure
	Records   []model.PermissionRecord
}

// SnapshotDAO loads snapshots for the evaluator.
type SnapshotDAO struct {
	Structure structure.Provider
	Store     dao.PermissionStore
}

func NewSnapshotDAO(provider structure.Provider, store dao.PermissionStore) *SnapshotDAO {
	return &SnapshotDAO{Structure: provider, Store: store}
}

// LoadSnapshot reads the structure and the records of groupIDs concurrently.
// Either failure fails the whole load; no partial snapshot is returned.
func (d *SnapshotDAO) LoadSnapshot(ctx context.Context, groupIDs []int64) (*Snapshot, error) {
	start := time.Now()
	snapshot := &Snapshot{}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s, err := d.Structure.GetStructure(egCtx)
		if err != nil {
			return err
		}
		snapshot.Structure = s
		return nil
	})
	eg.Go(func() error {
		records, err := d.Store.ListByGroups(egCtx, groupIDs)
		if err != nil {
			return err
		}
		snapshot.Records = records
		return nil
	})

	if err := eg.Wait(); err != nil {
		logger.Error("Failed to load permission snapshot",
			zap.Error(err),
			zap.Int64s("groupIDs", groupIDs),
			zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	logger.Debug("Permission snapshot loaded",
		zap.Int64s("groupIDs", groupIDs),
		zap.Int("buildings", len(snapshot.Structure)),
		zap.Int("records", len(snapshot.Records)),
		zap.Duration("duration", time.Since(start)))
	return snapshot, nil
}

// LoadSnapshotOver pairs a structure the caller already holds with the records
// of groupIDs, so one request never reads two different structures.
func (d *SnapshotDAO) LoadSnapshotOver(ctx context.Context, structure model.Structure, groupIDs []int64) (*Snapshot, error) {
	records, err := d.Store.ListByGroups(ctx, groupIDs)
	if err != nil {
		logger.Error("Failed to load permission records", zap.Error(err), zap.Int64s("groupIDs", groupIDs))
		return nil, err
	}
	return &Snapshot{Structure: structure, Records: records}, nil
}
