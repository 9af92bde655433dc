package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/strafeup/permissions/api/audit"
	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/pdp/engine"
	pdp_dao "github.com/strafeup/permissions/api/pdp/dao"
	"github.com/strafeup/permissions/api/util"
)

const adminGroupName = "Administration"

var actionVocabulary = []string{"create", "read", "update", "delete"}

// building 1 -> floors 10, 11; floor 10 -> rooms 100, 101; room 100 -> devices 1000, 1001.
// building 2 -> floor 20 -> room 200 -> device 2000.
func facility() model.Structure {
	return model.Structure{
		1: {
			10: {100: {1000, 1001}, 101: {}},
			11: {},
		},
		2: {20: {200: {2000}}},
	}
}

type staticProvider struct {
	structure model.Structure
	err       error
}

func (p *staticProvider) GetStructure(ctx context.Context) (model.Structure, error) {
	return p.structure, p.err
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]model.PermissionRecord
	seq     int
	listErr error
	upserts int
}

func newMemoryStore(records ...model.PermissionRecord) *memoryStore {
	s := &memoryStore{records: map[string]model.PermissionRecord{}}
	for _, r := range records {
		if _, err := s.UpsertPermission(context.Background(), r); err != nil {
			panic(err)
		}
	}
	s.upserts = 0
	return s
}

func storeKey(groupID int64, t model.EntityType, id int64) string {
	return fmt.Sprintf("%d/%s/%d", groupID, t, id)
}

func (s *memoryStore) ListByGroups(ctx context.Context, groupIDs []int64) ([]model.PermissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	wanted := map[int64]bool{}
	for _, id := range groupIDs {
		wanted[id] = true
	}
	out := []model.PermissionRecord{}
	for _, r := range s.records {
		if wanted[r.UserGroupID] {
			r.PermissionSet = r.PermissionSet.Clone()
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memoryStore) GetPermission(ctx context.Context, groupID int64, entityType model.EntityType, entityID int64) (*model.PermissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[storeKey(groupID, entityType, entityID)]
	if !ok {
		return nil, nil
	}
	r.PermissionSet = r.PermissionSet.Clone()
	return &r, nil
}

func (s *memoryStore) UpsertPermission(ctx context.Context, record model.PermissionRecord) (*model.PermissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	key := storeKey(record.UserGroupID, record.EntityType, record.EntityID)
	now := time.Now().UTC()
	stored, ok := s.records[key]
	if !ok {
		s.seq++
		stored = record
		stored.ID = fmt.Sprintf("record-%d", s.seq)
		stored.CreatedAt = now
	}
	stored.PermissionSet = record.PermissionSet.Clone()
	stored.UpdatedAt = now
	s.records[key] = stored
	return &stored, nil
}

func (s *memoryStore) DeleteByGroup(ctx context.Context, groupID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for key, r := range s.records {
		if r.UserGroupID == groupID {
			delete(s.records, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memoryStore) get(groupID int64, t model.EntityType, id int64) (model.PermissionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[storeKey(groupID, t, id)]
	return r, ok
}

type memoryDirectory struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	groups map[int64]*model.UserGroup
}

func (d *memoryDirectory) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, perm_errors.ErrUserNotFound
	}
	return u, nil
}

func (d *memoryDirectory) GetGroup(ctx context.Context, groupID int64) (*model.UserGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[groupID]
	if !ok {
		return nil, perm_errors.ErrGroupNotFound
	}
	return g, nil
}

func (d *memoryDirectory) GetGroupByName(ctx context.Context, name string) (*model.UserGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range d.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, perm_errors.ErrGroupNotFound
}

func (d *memoryDirectory) DeleteGroup(ctx context.Context, groupID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.groups[groupID]; !ok {
		return perm_errors.ErrGroupNotFound
	}
	delete(d.groups, groupID)
	for _, u := range d.users {
		u.GroupIDs = without(u.GroupIDs, groupID)
		u.AdministeredGroupIDs = without(u.AdministeredGroupIDs, groupID)
	}
	return nil
}

func without(ids []int64, id int64) []int64 {
	out := []int64{}
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type fakeLocker struct {
	mu       sync.Mutex
	err      error
	held     map[string]bool
	acquired []string
}

func (l *fakeLocker) Lock(ctx context.Context, name string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[name] {
		return nil, perm_errors.ErrLockNotAcquired
	}
	l.held[name] = true
	l.acquired = append(l.acquired, name)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
		return nil
	}, nil
}

// Users: 1 is the global admin, 2 manages groups 2 and 3, 3 is a plain member
// of both. Group 2 holds read and update on building 1.
const (
	adminUserID   int64 = 1
	managerUserID int64 = 2
	viewerUserID  int64 = 3

	adminGroupID    int64 = 1
	facilityGroupID int64 = 2
	tenantGroupID   int64 = 3
)

func newDirectory() *memoryDirectory {
	return &memoryDirectory{
		users: map[int64]*model.User{
			adminUserID:   {ID: adminUserID, GroupIDs: []int64{adminGroupID}, AdministeredGroupIDs: []int64{adminGroupID}},
			managerUserID: {ID: managerUserID, GroupIDs: []int64{facilityGroupID}, AdministeredGroupIDs: []int64{facilityGroupID, tenantGroupID}},
			viewerUserID:  {ID: viewerUserID, GroupIDs: []int64{facilityGroupID, tenantGroupID}, AdministeredGroupIDs: []int64{}},
		},
		groups: map[int64]*model.UserGroup{
			adminGroupID:    {ID: adminGroupID, Name: adminGroupName, MemberIDs: []int64{adminUserID}, AdminIDs: []int64{adminUserID}},
			facilityGroupID: {ID: facilityGroupID, Name: "Facility", MemberIDs: []int64{managerUserID, viewerUserID}, AdminIDs: []int64{managerUserID}},
			tenantGroupID:   {ID: tenantGroupID, Name: "Tenants", MemberIDs: []int64{viewerUserID}, AdminIDs: []int64{managerUserID}},
		},
	}
}

func seedRecords() []model.PermissionRecord {
	return []model.PermissionRecord{{
		UserGroupID:   facilityGroupID,
		EntityType:    model.EntityBuilding,
		EntityID:      1,
		PermissionSet: model.NewActionSet("read", "update"),
	}}
}

type fixture struct {
	store     *memoryStore
	directory *memoryDirectory
	provider  *staticProvider
	locker    *fakeLocker
	evaluator *engine.Evaluator
	bus       *util.EventBus
}

func newFixture() *fixture {
	f := &fixture{
		store:     newMemoryStore(seedRecords()...),
		directory: newDirectory(),
		provider:  &staticProvider{structure: facility()},
		locker:    &fakeLocker{},
		bus:       util.NewEventBus(),
	}
	f.evaluator = engine.NewEvaluator(
		pdp_dao.NewSnapshotDAO(f.provider, f.store),
		f.directory,
		engine.EvaluatorConfig{AdminGroupName: adminGroupName, Actions: model.ActionSetFromStrings(actionVocabulary)},
		nil,
	)
	return f
}

func (f *fixture) permissionService(auditService audit.Service) *PermissionService {
	return NewPermissionService(PermissionServiceDeps{
		PermissionStore: f.store,
		Users:           f.directory,
		Groups:          f.directory,
		Structure:       f.provider,
		Evaluator:       f.evaluator,
		ValidationUtil:  util.NewValidationUtil(actionVocabulary),
		Locker:          f.locker,
		AuditService:    auditService,
		NotificationSvc: util.NewNotificationService(),
		EventBus:        f.bus,
	})
}

func (f *fixture) groupService(auditService audit.Service) *GroupService {
	return NewGroupService(f.directory, f.directory, f.store, f.evaluator, auditService, util.NewNotificationService(), f.bus)
}
