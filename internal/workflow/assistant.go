// Package workflow derives advisory progress views from booking milestone
// records. It computes, never persists.
package workflow

import (
	"sort"
	"time"

	"github.com/sbclc/sbclc/internal/milestones"
)

// Step is one checklist row in the assistant view.
type Step struct {
	Code        string                   `json:"code"`
	Name        string                   `json:"name"`
	Sequence    int                      `json:"sequence"`
	State       milestones.InstanceState `json:"state"`
	Required    bool                     `json:"is_required"`
	Priority    milestones.Priority      `json:"priority"`
	DueAt       time.Time                `json:"due_at"`
	NotifyAt    time.Time                `json:"notify_at"`
	Overdue     bool                     `json:"overdue"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
}

// View is the full assistant payload for one booking.
type View struct {
	Progress  float64  `json:"progress"`
	Steps     []Step   `json:"steps"`
	NextSteps []Step   `json:"next_steps"`
	Tips      []string `json:"tips"`
}

// Build assembles the assistant view. Steps follow sequence order; next
// actionable steps are the non-completed ones, blocked steps surfaced first
// because they need intervention before the chain can move.
func Build(serviceType milestones.ServiceType, instances []milestones.Instance, bookingDate, now time.Time) View {
	steps := make([]Step, 0, len(instances))
	for _, inst := range instances {
		due := inst.DueAt(bookingDate)
		steps = append(steps, Step{
			Code:        inst.MilestoneCode,
			Name:        inst.MilestoneName,
			Sequence:    inst.SequenceOrder,
			State:       inst.State,
			Required:    inst.Required,
			Priority:    inst.Priority,
			DueAt:       due,
			NotifyAt:    inst.NotifyAt(bookingDate),
			Overdue:     inst.State != milestones.StateCompleted && now.After(due),
			CompletedAt: inst.CompletedAt,
		})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Sequence < steps[j].Sequence })

	var next []Step
	for _, step := range steps {
		if step.State == milestones.StateBlocked {
			next = append(next, step)
		}
	}
	for _, step := range steps {
		if step.State == milestones.StatePending || step.State == milestones.StateInProgress {
			next = append(next, step)
		}
	}

	return View{
		Progress:  milestones.Progress(instances),
		Steps:     steps,
		NextSteps: next,
		Tips:      Tips(serviceType),
	}
}
