package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryBookingRepo struct {
	bookings map[int64]Booking
	nextID   int64
	seq      int64
}

func newMemoryBookingRepo() *memoryBookingRepo {
	return &memoryBookingRepo{bookings: make(map[int64]Booking), nextID: 1}
}

func (m *memoryBookingRepo) Create(_ context.Context, b Booking) (int64, error) {
	for _, existing := range m.bookings {
		if existing.BookingRef == b.BookingRef {
			return 0, httpx.ErrDuplicate
		}
	}
	b.ID = m.nextID
	m.nextID++
	m.bookings[b.ID] = b
	return b.ID, nil
}

func (m *memoryBookingRepo) Get(_ context.Context, id int64) (Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return Booking{}, httpx.ErrNotFound
	}
	return b, nil
}

func (m *memoryBookingRepo) List(_ context.Context, filter ListFilter) ([]Booking, int, error) {
	var out []Booking
	for _, b := range m.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.ServiceType != "" && b.ServiceType != filter.ServiceType {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *memoryBookingRepo) Update(_ context.Context, b Booking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		return httpx.ErrNotFound
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *memoryBookingRepo) GenerateRef(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("BK-%s-%04d", date.Format("0601"), m.seq), nil
}

// milestoneStore fakes the milestone repository; only the paths used by
// Snapshot and List are live.
type milestoneStore struct {
	defs      []milestones.Definition
	instances map[int64][]milestones.Instance
}

func (f *milestoneStore) ListDefinitions(_ context.Context, st milestones.ServiceType) ([]milestones.Definition, error) {
	var out []milestones.Definition
	for _, d := range f.defs {
		if d.ServiceType == st {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *milestoneStore) GetDefinition(context.Context, int64) (milestones.Definition, error) {
	return milestones.Definition{}, httpx.ErrNotFound
}

func (f *milestoneStore) CreateDefinition(_ context.Context, d milestones.Definition) (milestones.Definition, error) {
	return d, nil
}

func (f *milestoneStore) UpdateDefinition(_ context.Context, d milestones.Definition) (milestones.Definition, error) {
	return d, nil
}

func (f *milestoneStore) DeleteDefinition(context.Context, int64) error { return nil }

func (f *milestoneStore) InsertInstances(_ context.Context, instances []milestones.Instance) error {
	if f.instances == nil {
		f.instances = make(map[int64][]milestones.Instance)
	}
	for _, inst := range instances {
		f.instances[inst.BookingID] = append(f.instances[inst.BookingID], inst)
	}
	return nil
}

func (f *milestoneStore) ListInstances(_ context.Context, bookingID int64) ([]milestones.Instance, error) {
	return f.instances[bookingID], nil
}

func (f *milestoneStore) GetInstance(context.Context, int64) (milestones.Instance, error) {
	return milestones.Instance{}, httpx.ErrNotFound
}

func (f *milestoneStore) UpdateInstance(context.Context, milestones.Instance) error { return nil }

func (f *milestoneStore) ListReminderCandidates(context.Context) ([]milestones.ReminderCandidate, error) {
	return nil, nil
}

func (f *milestoneStore) MarkReminded(context.Context, int64, time.Time) error { return nil }

func fixture(t *testing.T) (*Service, *memoryBookingRepo, *milestoneStore) {
	t.Helper()
	store := &milestoneStore{defs: []milestones.Definition{
		{ID: 1, ServiceType: milestones.ServiceImport, Code: "PO", Name: "Pre-alert received", SequenceOrder: 1, Required: true, Active: true, Priority: milestones.PriorityMedium, EstimatedDays: 1},
		{ID: 2, ServiceType: milestones.ServiceImport, Code: "CC", Name: "Customs clearance", SequenceOrder: 2, Required: true, Active: true, Priority: milestones.PriorityHigh, EstimatedDays: 3},
		{ID: 3, ServiceType: milestones.ServiceImport, Code: "XX", Name: "Retired step", SequenceOrder: 3, Required: false, Active: false, Priority: milestones.PriorityLow, EstimatedDays: 1},
	}}
	defSvc := milestones.NewService(store, cache.NewQueryCache(time.Minute))
	tracker := milestones.NewTracker(defSvc, store)
	repo := newMemoryBookingRepo()
	svc := NewService(slog.New(slog.DiscardHandler), repo, tracker)
	return svc, repo, store
}

func createRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ServiceType:  string(milestones.ServiceImport),
		CustomerName: "Acme Trading",
		OriginPort:   "Kaohsiung",
		DestPort:     "Manila",
		Commodity:    "Machinery parts",
		ContainerQty: 2,
		BookingDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateSnapshotsActiveMilestones(t *testing.T) {
	svc, _, store := fixture(t)

	booking, err := svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)
	require.Equal(t, StatusPending, booking.Status)
	require.Regexp(t, `^BK-2604-\d{4}$`, booking.BookingRef)

	instances := store.instances[booking.ID]
	require.Len(t, instances, 2, "inactive definitions are excluded")
	require.Equal(t, milestones.StateInProgress, instances[0].State)
	require.Equal(t, milestones.StatePending, instances[1].State)
}

func TestCreateRejectsUnknownServiceType(t *testing.T) {
	svc, _, _ := fixture(t)
	req := createRequest()
	req.ServiceType = "sea_charter"

	_, err := svc.Create(context.Background(), req, 7)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStatusTransitions(t *testing.T) {
	svc, _, _ := fixture(t)
	booking, err := svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)

	booking, err = svc.SetStatus(context.Background(), booking.ID, StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, booking.Status)

	booking, err = svc.SetStatus(context.Background(), booking.ID, StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, booking.Status)

	_, err = svc.SetStatus(context.Background(), booking.ID, StatusCancelled)
	require.ErrorIs(t, err, httpx.ErrValidation, "completed bookings are terminal")
}

func TestUpdateKeepsServiceTypeAndDate(t *testing.T) {
	svc, _, _ := fixture(t)
	booking, err := svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)

	name := "Updated Customer"
	updated, err := svc.Update(context.Background(), booking.ID, UpdateBookingRequest{CustomerName: &name})
	require.NoError(t, err)
	require.Equal(t, "Updated Customer", updated.CustomerName)
	require.Equal(t, booking.ServiceType, updated.ServiceType)
	require.Equal(t, booking.BookingDate, updated.BookingDate)
}

func TestListRejectsUnknownFilters(t *testing.T) {
	svc, _, _ := fixture(t)
	_, _, err := svc.List(context.Background(), ListFilter{Status: "SHIPPED"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBookingInfoForWorkflow(t *testing.T) {
	svc, _, _ := fixture(t)
	booking, err := svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)

	info, err := svc.BookingInfo(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Equal(t, milestones.ServiceImport, info.ServiceType)
	require.Equal(t, booking.BookingDate, info.BookingDate)
}
