package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/observability"
)

// Enqueuer submits follow-up tasks produced by a sweep.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, payload NotificationPayload) error
}

// ReminderScanJob walks open milestone instances and dispatches a
// notification for every step whose trigger point has passed.
type ReminderScanJob struct {
	Repo     milestones.Repository
	Enqueuer Enqueuer
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	clock    func() time.Time
}

// NewReminderScanJob initialises the sweep handler.
func NewReminderScanJob(repo milestones.Repository, enq Enqueuer, logger *slog.Logger, metrics *observability.Metrics) *ReminderScanJob {
	return &ReminderScanJob{
		Repo:     repo,
		Enqueuer: enq,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one reminder sweep.
func (j *ReminderScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("reminder scan: handler not configured")
	}
	var payload ReminderScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	now := j.now()
	logger := j.logger()
	logger.Info("starting reminder scan")

	candidates, err := j.Repo.ListReminderCandidates(ctx)
	if err != nil {
		j.observe("error")
		logger.Error("list reminder candidates", slog.Any("error", err))
		return err
	}

	dispatched := 0
	for _, c := range candidates {
		if payload.Limit > 0 && dispatched >= payload.Limit {
			break
		}
		notifyAt := c.Instance.NotifyAt(c.BookingDate)
		if now.Before(notifyAt) {
			continue
		}
		note := NotificationPayload{
			InstanceID:    c.Instance.ID,
			BookingRef:    c.BookingRef,
			MilestoneCode: c.Instance.MilestoneCode,
			MilestoneName: c.Instance.MilestoneName,
			DueAt:         c.Instance.DueAt(c.BookingDate).Format(time.RFC3339),
		}
		if j.Enqueuer != nil {
			if err := j.Enqueuer.EnqueueNotification(ctx, note); err != nil {
				logger.Error("enqueue reminder",
					slog.Int64("instance_id", c.Instance.ID),
					slog.Any("error", err),
				)
				continue
			}
		}
		if err := j.Repo.MarkReminded(ctx, c.Instance.ID, now); err != nil {
			logger.Error("mark reminded",
				slog.Int64("instance_id", c.Instance.ID),
				slog.Any("error", err),
			)
			continue
		}
		dispatched++
	}

	j.observe("success")
	logger.Info("completed reminder scan",
		slog.Int("candidates", len(candidates)),
		slog.Int("dispatched", dispatched),
	)
	return nil
}

func (j *ReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMilestoneReminderScan))
	}
	return slog.Default().With(slog.String("job", TaskMilestoneReminderScan))
}

func (j *ReminderScanJob) observe(outcome string) {
	j.Metrics.ObserveJob(TaskMilestoneReminderScan, outcome)
}

func (j *ReminderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// NotificationDispatchJob renders and hands a reminder to the delivery
// channel. Delivery integration lands with the mail gateway; until then the
// reminder is logged so operators can trace the trigger.
type NotificationDispatchJob struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewNotificationDispatchJob initialises the dispatch handler.
func NewNotificationDispatchJob(logger *slog.Logger, metrics *observability.Metrics) *NotificationDispatchJob {
	return &NotificationDispatchJob{Logger: logger, Metrics: metrics}
}

// Handle processes TaskNotificationDispatch tasks.
func (j *NotificationDispatchJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload NotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("milestone reminder due",
		slog.String("booking_ref", payload.BookingRef),
		slog.String("milestone", payload.MilestoneCode),
		slog.String("milestone_name", payload.MilestoneName),
		slog.String("due_at", payload.DueAt),
	)
	j.Metrics.ObserveJob(TaskNotificationDispatch, "success")
	return nil
}
