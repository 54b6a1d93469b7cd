package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/milestones"
)

func instance(code string, seq int, state milestones.InstanceState) milestones.Instance {
	return milestones.Instance{
		BookingID:     7,
		MilestoneCode: code,
		MilestoneName: "Step " + code,
		SequenceOrder: seq,
		Required:      true,
		Priority:      milestones.PriorityMedium,
		EstimatedDays: 2,
		State:         state,
	}
}

func TestBuildHalfDoneBooking(t *testing.T) {
	bookingDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	done := instance("A", 1, milestones.StateCompleted)
	completedAt := bookingDate.Add(24 * time.Hour)
	done.CompletedAt = &completedAt
	pending := instance("B", 2, milestones.StatePending)

	view := Build(milestones.ServiceImport, []milestones.Instance{pending, done}, bookingDate, bookingDate)

	require.Equal(t, 50.0, view.Progress)
	require.Len(t, view.Steps, 2)
	require.Equal(t, "A", view.Steps[0].Code, "steps are ordered by sequence")
	require.Len(t, view.NextSteps, 1)
	require.Equal(t, "B", view.NextSteps[0].Code)
}

func TestBuildBlockedStepsComeFirst(t *testing.T) {
	bookingDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	steps := []milestones.Instance{
		instance("A", 1, milestones.StateInProgress),
		instance("B", 2, milestones.StateBlocked),
		instance("C", 3, milestones.StatePending),
	}

	view := Build(milestones.ServiceDomesticTrucking, steps, bookingDate, bookingDate)

	require.Len(t, view.NextSteps, 3)
	require.Equal(t, "B", view.NextSteps[0].Code, "blocked steps need intervention first")
	require.Equal(t, "A", view.NextSteps[1].Code)
	require.Equal(t, "C", view.NextSteps[2].Code)
}

func TestBuildOverdueFlag(t *testing.T) {
	bookingDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	late := instance("A", 1, milestones.StateInProgress) // due bookingDate+2d
	onTime := instance("B", 2, milestones.StatePending)
	onTime.EstimatedDays = 30

	now := bookingDate.Add(5 * 24 * time.Hour)
	view := Build(milestones.ServiceImport, []milestones.Instance{late, onTime}, bookingDate, now)

	require.True(t, view.Steps[0].Overdue)
	require.False(t, view.Steps[1].Overdue)
}

func TestBuildCompletedNeverOverdue(t *testing.T) {
	bookingDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	done := instance("A", 1, milestones.StateCompleted)

	view := Build(milestones.ServiceImport, []milestones.Instance{done}, bookingDate, bookingDate.AddDate(0, 1, 0))

	require.False(t, view.Steps[0].Overdue)
	require.Equal(t, 100.0, view.Progress)
	require.Empty(t, view.NextSteps)
}

func TestBuildEmpty(t *testing.T) {
	view := Build(milestones.ServiceImport, nil, time.Now(), time.Now())
	require.Equal(t, 0.0, view.Progress)
	require.Empty(t, view.Steps)
	require.Empty(t, view.NextSteps)
	require.NotEmpty(t, view.Tips)
}

func TestTipsUnknownServiceType(t *testing.T) {
	require.Empty(t, Tips(milestones.ServiceType("sea_charter")))
}
