package milestones

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProgressEmptyIsZero(t *testing.T) {
	if got := Progress(nil); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
	if got := Progress([]Instance{}); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
}

func TestProgressHalfway(t *testing.T) {
	instances := []Instance{
		{MilestoneCode: "A", State: StateCompleted},
		{MilestoneCode: "B", State: StateCompleted},
		{MilestoneCode: "C", State: StateInProgress},
		{MilestoneCode: "D", State: StatePending},
	}
	if got := Progress(instances); got != 50 {
		t.Fatalf("expected exactly 50 got %v", got)
	}
}

func TestProgressCountsOptionalSteps(t *testing.T) {
	// The denominator includes every step, not just required ones.
	instances := []Instance{
		{MilestoneCode: "A", Required: true, State: StateCompleted},
		{MilestoneCode: "B", Required: false, State: StatePending},
	}
	if got := Progress(instances); got != 50 {
		t.Fatalf("expected 50 got %v", got)
	}
}

func TestTransitionsMonotonicForward(t *testing.T) {
	allowed := []struct {
		from, to InstanceState
	}{
		{StatePending, StateInProgress},
		{StatePending, StateCompleted},
		{StatePending, StateBlocked},
		{StateInProgress, StateCompleted},
		{StateInProgress, StateBlocked},
		{StateBlocked, StateInProgress},
		{StateBlocked, StateCompleted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to InstanceState
	}{
		{StateCompleted, StatePending},
		{StateCompleted, StateInProgress},
		{StateCompleted, StateBlocked},
		{StateInProgress, StatePending},
		{StateBlocked, StatePending},
		{StatePending, StatePending},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s forbidden", tc.from, tc.to)
		}
	}
}

func TestDueAndNotifyComputation(t *testing.T) {
	booked := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inst := Instance{EstimatedDays: 5, NotifyBeforeDays: 2}

	due := inst.DueAt(booked)
	if want := booked.AddDate(0, 0, 5); !due.Equal(want) {
		t.Fatalf("due: expected %v got %v", want, due)
	}
	notify := inst.NotifyAt(booked)
	if want := booked.AddDate(0, 0, 3); !notify.Equal(want) {
		t.Fatalf("notify: expected %v got %v", want, notify)
	}

	// Once the step is reached its own clock takes over.
	reached := booked.AddDate(0, 0, 4)
	inst.ReachedAt = &reached
	if want := reached.AddDate(0, 0, 5); !inst.DueAt(booked).Equal(want) {
		t.Fatalf("due after reach: expected %v got %v", want, inst.DueAt(booked))
	}
}

func TestServiceTypeValidity(t *testing.T) {
	for _, st := range ServiceTypes() {
		if !st.IsValid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if ServiceType("export").IsValid() {
		t.Error("unknown service type accepted")
	}
}

func TestFlagMarshalling(t *testing.T) {
	data, err := json.Marshal(struct {
		Required Flag `json:"is_required"`
		Active   Flag `json:"is_active"`
	}{Required: true, Active: false})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"is_required":1,"is_active":0}` {
		t.Fatalf("unexpected wire form %s", data)
	}

	var parsed struct {
		Required Flag `json:"is_required"`
	}
	for _, raw := range []string{`{"is_required":1}`, `{"is_required":true}`} {
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !bool(parsed.Required) {
			t.Fatalf("expected true from %s", raw)
		}
	}
}
