package model

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to StateType
		want     bool
	}{
		{StateScheduled, StatePending, true},
		{StatePending, StateRunning, true},
		{StateRunning, StateCompleted, true},
		{StateRunning, StateCrashed, true},
		{StateCancelling, StateCancelled, true},
		{StateCompleted, StateRunning, false},
		{StateFailed, StateScheduled, false},
		{StateScheduled, StateCompleted, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestApplyState(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &FlowRun{State: StateScheduled}

	if err := r.ApplyState(StateRunning, "", false, now); err != nil {
		t.Fatalf("ApplyState(RUNNING) error = %v", err)
	}
	if r.StartTime == nil || !r.StartTime.Equal(now) || r.RunCount != 1 {
		t.Errorf("running should set start time and bump run count: %+v", r)
	}

	later := now.Add(time.Minute)
	if err := r.ApplyState(StateFailed, "boom", false, later); err != nil {
		t.Fatalf("ApplyState(FAILED) error = %v", err)
	}
	if r.EndTime == nil || !r.EndTime.Equal(later) || r.StateMessage != "boom" {
		t.Errorf("terminal state should set end time and message: %+v", r)
	}

	err := r.ApplyState(StateRunning, "", false, later)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if err := r.ApplyState(StateScheduled, "retry", true, later); err != nil {
		t.Fatalf("forced transition error = %v", err)
	}
	if r.State != StateScheduled {
		t.Errorf("forced transition not applied")
	}
}

func TestStateName(t *testing.T) {
	if n := StateCancelling.Name(); n != "Cancelling" {
		t.Errorf("Name() = %q", n)
	}
	if _, err := ParseStateType("DONE"); err == nil {
		t.Errorf("expected error for unknown state")
	}
}
