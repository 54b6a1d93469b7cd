package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMilestoneReminderScan sweeps open milestone instances for steps
	// past their notification trigger point.
	TaskMilestoneReminderScan = "milestones:reminder_scan"
	// TaskNotificationDispatch delivers a single milestone reminder.
	TaskNotificationDispatch = "notify:dispatch"
)

// ReminderScanPayload parametrizes a reminder sweep.
type ReminderScanPayload struct {
	// Limit caps how many reminders a single sweep may dispatch. Zero
	// means no cap.
	Limit int `json:"limit"`
}

// NotificationPayload describes one milestone reminder to deliver.
type NotificationPayload struct {
	InstanceID    int64  `json:"instance_id"`
	BookingRef    string `json:"booking_ref"`
	MilestoneCode string `json:"milestone_code"`
	MilestoneName string `json:"milestone_name"`
	DueAt         string `json:"due_at"`
}

// NewReminderScanTask constructs the sweep task.
func NewReminderScanTask(payload ReminderScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMilestoneReminderScan, data), nil
}

// NewNotificationTask constructs a single-reminder dispatch task.
func NewNotificationTask(payload NotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, data), nil
}
