package milestones

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryMilestoneRepo struct {
	defs       map[int64]Definition
	instances  map[int64]Instance
	nextDefID  int64
	nextInstID int64
	listCalls  int
}

func newMemoryMilestoneRepo() *memoryMilestoneRepo {
	return &memoryMilestoneRepo{
		defs:      make(map[int64]Definition),
		instances: make(map[int64]Instance),
	}
}

func (r *memoryMilestoneRepo) ListDefinitions(ctx context.Context, serviceType ServiceType) ([]Definition, error) {
	r.listCalls++
	var defs []Definition
	for _, def := range r.defs {
		if def.ServiceType == serviceType {
			defs = append(defs, def)
		}
	}
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].SequenceOrder != defs[j].SequenceOrder {
			return defs[i].SequenceOrder < defs[j].SequenceOrder
		}
		return defs[i].Code < defs[j].Code
	})
	return defs, nil
}

func (r *memoryMilestoneRepo) GetDefinition(ctx context.Context, id int64) (Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return Definition{}, httpx.ErrNotFound
	}
	return def, nil
}

func (r *memoryMilestoneRepo) CreateDefinition(ctx context.Context, def Definition) (Definition, error) {
	r.nextDefID++
	def.ID = r.nextDefID
	def.CreatedAt = time.Now()
	def.UpdatedAt = def.CreatedAt
	r.defs[def.ID] = def
	return def, nil
}

func (r *memoryMilestoneRepo) UpdateDefinition(ctx context.Context, def Definition) (Definition, error) {
	if _, ok := r.defs[def.ID]; !ok {
		return Definition{}, httpx.ErrNotFound
	}
	def.UpdatedAt = time.Now()
	r.defs[def.ID] = def
	return def, nil
}

func (r *memoryMilestoneRepo) DeleteDefinition(ctx context.Context, id int64) error {
	if _, ok := r.defs[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.defs, id)
	return nil
}

func (r *memoryMilestoneRepo) InsertInstances(ctx context.Context, instances []Instance) error {
	for _, inst := range instances {
		r.nextInstID++
		inst.ID = r.nextInstID
		r.instances[inst.ID] = inst
	}
	return nil
}

func (r *memoryMilestoneRepo) ListInstances(ctx context.Context, bookingID int64) ([]Instance, error) {
	var out []Instance
	for _, inst := range r.instances {
		if inst.BookingID == bookingID {
			out = append(out, inst)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SequenceOrder < out[j].SequenceOrder })
	return out, nil
}

func (r *memoryMilestoneRepo) GetInstance(ctx context.Context, id int64) (Instance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return Instance{}, httpx.ErrNotFound
	}
	return inst, nil
}

func (r *memoryMilestoneRepo) UpdateInstance(ctx context.Context, inst Instance) error {
	if _, ok := r.instances[inst.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.instances[inst.ID] = inst
	return nil
}

func (r *memoryMilestoneRepo) ListReminderCandidates(ctx context.Context) ([]ReminderCandidate, error) {
	var out []ReminderCandidate
	for _, inst := range r.instances {
		if inst.State != StateCompleted && inst.RemindedAt == nil {
			out = append(out, ReminderCandidate{Instance: inst, BookingDate: time.Now().AddDate(0, 0, -10)})
		}
	}
	return out, nil
}

func (r *memoryMilestoneRepo) MarkReminded(ctx context.Context, instanceID int64, at time.Time) error {
	inst, ok := r.instances[instanceID]
	if !ok {
		return httpx.ErrNotFound
	}
	inst.RemindedAt = &at
	r.instances[instanceID] = inst
	return nil
}

func newDefinitionService(repo Repository) *Service {
	return NewService(repo, cache.NewQueryCache(time.Minute))
}

func createDef(t *testing.T, svc *Service, st ServiceType, code string, seq int, required bool) Definition {
	t.Helper()
	def, err := svc.Create(context.Background(), CreateDefinitionRequest{
		ServiceType:   string(st),
		MilestoneCode: code,
		MilestoneName: "Milestone " + code,
		SequenceOrder: seq,
		IsRequired:    Flag(required),
	})
	require.NoError(t, err)
	return def
}

func TestListSortedBySequence(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)

	createDef(t, svc, ServiceImport, "CLR", 3, true)
	createDef(t, svc, ServiceImport, "ARR", 1, true)
	createDef(t, svc, ServiceImport, "DOC", 2, false)
	createDef(t, svc, ServiceDomesticTrucking, "PUP", 1, true)

	defs, err := svc.List(context.Background(), ServiceImport)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	for i := 1; i < len(defs); i++ {
		require.Less(t, defs[i-1].SequenceOrder, defs[i].SequenceOrder,
			"definitions must come back strictly ascending")
	}
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)

	createDef(t, svc, ServiceImport, "ARR", 1, true)
	_, err := svc.Create(context.Background(), CreateDefinitionRequest{
		ServiceType:   string(ServiceImport),
		MilestoneCode: "arr", // codes are case-insensitive on intake
		MilestoneName: "Vessel Arrival",
		SequenceOrder: 5,
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateAllowsSameCodeAcrossServiceTypes(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)

	createDef(t, svc, ServiceImport, "DEL", 1, true)
	_, err := svc.Create(context.Background(), CreateDefinitionRequest{
		ServiceType:   string(ServiceDomesticForwarding),
		MilestoneCode: "DEL",
		MilestoneName: "Delivered",
		SequenceOrder: 1,
	})
	require.NoError(t, err)
}

func TestCreateRejectsDuplicateSequence(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)

	createDef(t, svc, ServiceImport, "ARR", 1, true)
	_, err := svc.Create(context.Background(), CreateDefinitionRequest{
		ServiceType:   string(ServiceImport),
		MilestoneCode: "DOC",
		MilestoneName: "Docs Received",
		SequenceOrder: 1,
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateValidation(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateDefinitionRequest{
		ServiceType:   "air_freight",
		MilestoneCode: "X",
		MilestoneName: "X",
		SequenceOrder: 1,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, CreateDefinitionRequest{
		ServiceType:   string(ServiceImport),
		MilestoneCode: "X",
		MilestoneName: "  ",
		SequenceOrder: 1,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, CreateDefinitionRequest{
		ServiceType:   string(ServiceImport),
		MilestoneCode: "X",
		MilestoneName: "X",
		SequenceOrder: 0,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdatePartialPatch(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)
	def := createDef(t, svc, ServiceImport, "ARR", 1, true)

	name := "Vessel Arrival"
	days := 3.5
	updated, err := svc.Update(context.Background(), def.ID, UpdateDefinitionRequest{
		MilestoneName: &name,
		EstimatedDays: &days,
	})
	require.NoError(t, err)
	require.Equal(t, "Vessel Arrival", updated.Name)
	require.Equal(t, 3.5, updated.EstimatedDays)
	require.Equal(t, def.SequenceOrder, updated.SequenceOrder, "untouched fields keep their values")
}

func TestUpdateMissingDefinition(t *testing.T) {
	svc := newDefinitionService(newMemoryMilestoneRepo())
	name := "x"
	_, err := svc.Update(context.Background(), 99, UpdateDefinitionRequest{MilestoneName: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteKeepsHistoricalInstances(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)
	tracker := NewTracker(svc, repo)
	ctx := context.Background()

	createDef(t, svc, ServiceDomesticTrucking, "PUP", 1, true)
	def := createDef(t, svc, ServiceDomesticTrucking, "DEL", 2, true)

	instances, err := tracker.Snapshot(ctx, 42, ServiceDomesticTrucking, time.Now())
	require.NoError(t, err)
	require.Len(t, instances, 2)

	require.NoError(t, svc.Delete(ctx, def.ID))

	// The booking's records survive and still reference the deleted code.
	kept, err := tracker.List(ctx, 42)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	require.Equal(t, "DEL", kept[1].MilestoneCode)
}

func TestListCacheInvalidatedOnWrite(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)
	ctx := context.Background()

	createDef(t, svc, ServiceImport, "ARR", 1, true)
	baseline := repo.listCalls

	_, err := svc.List(ctx, ServiceImport)
	require.NoError(t, err)
	_, err = svc.List(ctx, ServiceImport)
	require.NoError(t, err)
	require.Equal(t, baseline+1, repo.listCalls, "second list should come from cache")

	createDef(t, svc, ServiceImport, "DOC", 2, false)
	defs, err := svc.List(ctx, ServiceImport)
	require.NoError(t, err)
	require.Len(t, defs, 2, "create must invalidate the cached list")
}

func TestInactiveExcludedFromSnapshotOnly(t *testing.T) {
	repo := newMemoryMilestoneRepo()
	svc := newDefinitionService(repo)
	tracker := NewTracker(svc, repo)
	ctx := context.Background()

	createDef(t, svc, ServiceImport, "ARR", 1, true)
	def := createDef(t, svc, ServiceImport, "OLD", 2, false)
	inactive := Flag(false)
	_, err := svc.Update(ctx, def.ID, UpdateDefinitionRequest{IsActive: &inactive})
	require.NoError(t, err)

	// Retired definitions still list for historical display.
	defs, err := svc.List(ctx, ServiceImport)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	instances, err := tracker.Snapshot(ctx, 7, ServiceImport, time.Now())
	require.NoError(t, err)
	require.Len(t, instances, 1, "inactive definitions are excluded from new bookings")
	require.Equal(t, "ARR", instances[0].MilestoneCode)
}
