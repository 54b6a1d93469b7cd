package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type reminderStore struct {
	candidates []milestones.ReminderCandidate
	reminded   []int64
}

func (s *reminderStore) ListDefinitions(ctx context.Context, st milestones.ServiceType) ([]milestones.Definition, error) {
	return nil, nil
}
func (s *reminderStore) GetDefinition(ctx context.Context, id int64) (milestones.Definition, error) {
	return milestones.Definition{}, httpx.ErrNotFound
}
func (s *reminderStore) CreateDefinition(ctx context.Context, d milestones.Definition) (milestones.Definition, error) {
	return d, nil
}
func (s *reminderStore) UpdateDefinition(ctx context.Context, d milestones.Definition) (milestones.Definition, error) {
	return d, nil
}
func (s *reminderStore) DeleteDefinition(ctx context.Context, id int64) error { return nil }
func (s *reminderStore) InsertInstances(ctx context.Context, instances []milestones.Instance) error {
	return nil
}
func (s *reminderStore) ListInstances(ctx context.Context, bookingID int64) ([]milestones.Instance, error) {
	return nil, nil
}
func (s *reminderStore) GetInstance(ctx context.Context, id int64) (milestones.Instance, error) {
	return milestones.Instance{}, httpx.ErrNotFound
}
func (s *reminderStore) UpdateInstance(ctx context.Context, inst milestones.Instance) error {
	return nil
}
func (s *reminderStore) ListReminderCandidates(ctx context.Context) ([]milestones.ReminderCandidate, error) {
	return s.candidates, nil
}
func (s *reminderStore) MarkReminded(ctx context.Context, instanceID int64, at time.Time) error {
	s.reminded = append(s.reminded, instanceID)
	return nil
}

type captureEnqueuer struct {
	sent []NotificationPayload
}

func (e *captureEnqueuer) EnqueueNotification(ctx context.Context, payload NotificationPayload) error {
	e.sent = append(e.sent, payload)
	return nil
}

func scanTask(t *testing.T, payload ReminderScanPayload) *asynq.Task {
	t.Helper()
	task, err := NewReminderScanTask(payload)
	require.NoError(t, err)
	return task
}

func TestReminderScanDispatchesOnlyDueSteps(t *testing.T) {
	now := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)
	bookingDate := now.AddDate(0, 0, -10)
	store := &reminderStore{candidates: []milestones.ReminderCandidate{
		{
			Instance: milestones.Instance{
				ID: 1, BookingID: 7, MilestoneCode: "CC", MilestoneName: "Customs Clearance",
				EstimatedDays: 5, NotifyBeforeDays: 2, State: milestones.StateInProgress,
			},
			BookingRef:  "BK-2604-0007",
			BookingDate: bookingDate,
		},
		{
			Instance: milestones.Instance{
				ID: 2, BookingID: 7, MilestoneCode: "DL", MilestoneName: "Delivery",
				EstimatedDays: 30, NotifyBeforeDays: 3, State: milestones.StatePending,
			},
			BookingRef:  "BK-2604-0007",
			BookingDate: bookingDate,
		},
	}}
	enq := &captureEnqueuer{}

	job := NewReminderScanJob(store, enq, slog.New(slog.DiscardHandler), nil)
	job.clock = func() time.Time { return now }

	require.NoError(t, job.Handle(context.Background(), scanTask(t, ReminderScanPayload{})))

	require.Len(t, enq.sent, 1)
	require.Equal(t, int64(1), enq.sent[0].InstanceID)
	require.Equal(t, "BK-2604-0007", enq.sent[0].BookingRef)
	require.Equal(t, "CC", enq.sent[0].MilestoneCode)
	require.Equal(t, []int64{1}, store.reminded)
}

func TestReminderScanHonorsLimit(t *testing.T) {
	now := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)
	bookingDate := now.AddDate(0, 0, -30)
	var candidates []milestones.ReminderCandidate
	for i := int64(1); i <= 5; i++ {
		candidates = append(candidates, milestones.ReminderCandidate{
			Instance: milestones.Instance{
				ID: i, BookingID: 1, MilestoneCode: "PO", MilestoneName: "Pickup Order",
				EstimatedDays: 1, NotifyBeforeDays: 0, State: milestones.StatePending,
			},
			BookingRef:  "BK-2603-0001",
			BookingDate: bookingDate,
		})
	}
	store := &reminderStore{candidates: candidates}
	enq := &captureEnqueuer{}

	job := NewReminderScanJob(store, enq, slog.New(slog.DiscardHandler), nil)
	job.clock = func() time.Time { return now }

	require.NoError(t, job.Handle(context.Background(), scanTask(t, ReminderScanPayload{Limit: 2})))
	require.Len(t, enq.sent, 2)
	require.Len(t, store.reminded, 2)
}

func TestReminderScanRejectsMalformedPayload(t *testing.T) {
	job := NewReminderScanJob(&reminderStore{}, &captureEnqueuer{}, slog.New(slog.DiscardHandler), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskMilestoneReminderScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNotificationDispatchDecodesPayload(t *testing.T) {
	payload := NotificationPayload{InstanceID: 9, BookingRef: "BK-2604-0009", MilestoneCode: "CC"}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	job := NewNotificationDispatchJob(slog.New(slog.DiscardHandler), nil)
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskNotificationDispatch, data)))
}
