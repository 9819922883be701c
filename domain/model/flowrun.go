package model

import (
	"fmt"
	"time"
)

// StateType is the lifecycle state of a flow run.
type StateType string

const (
	StateScheduled  StateType = "SCHEDULED"
	StatePending    StateType = "PENDING"
	StateRunning    StateType = "RUNNING"
	StatePaused     StateType = "PAUSED"
	StateCancelling StateType = "CANCELLING"
	StateCompleted  StateType = "COMPLETED"
	StateFailed     StateType = "FAILED"
	StateCrashed    StateType = "CRASHED"
	StateCancelled  StateType = "CANCELLED"
)

// AllStates lists the states in lifecycle order.
var AllStates = []StateType{
	StateScheduled, StatePending, StateRunning, StatePaused, StateCancelling,
	StateCompleted, StateFailed, StateCrashed, StateCancelled,
}

// allowedTransitions lists the non-forced transitions out of each state.
var allowedTransitions = map[StateType][]StateType{
	StateScheduled:  {StatePending, StateRunning, StateCancelled, StateCancelling},
	StatePending:    {StateRunning, StateCancelling, StateCancelled, StateCrashed, StateFailed},
	StateRunning:    {StateCompleted, StateFailed, StateCrashed, StatePaused, StateCancelling, StateCancelled},
	StatePaused:     {StateRunning, StateScheduled, StateCancelled, StateCancelling},
	StateCancelling: {StateCancelled, StateCrashed, StateFailed, StateCompleted},
}

// ParseStateType validates and normalizes a state name.
func ParseStateType(s string) (StateType, error) {
	st := StateType(s)
	switch st {
	case StateScheduled, StatePending, StateRunning, StatePaused, StateCancelling,
		StateCompleted, StateFailed, StateCrashed, StateCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown state %q", ErrFlowRunInvalid, s)
}

// IsTerminal reports whether no further transitions are allowed.
func (s StateType) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCrashed, StateCancelled:
		return true
	}
	return false
}

// Name returns the title-cased state name used in event names, e.g. "Failed".
func (s StateType) Name() string {
	if s == "" {
		return ""
	}
	b := []byte(string(s))
	for i := 1; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// CanTransition reports whether from -> to is allowed without force.
func CanTransition(from, to StateType) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// FlowRun is a single execution of a flow.
type FlowRun struct {
	ID                string         `json:"id"`
	WorkspaceID       string         `json:"workspace_id"`
	FlowID            string         `json:"flow_id"`
	DeploymentID      string         `json:"deployment_id,omitempty"`
	Name              string         `json:"name"`
	Parameters        map[string]any `json:"parameters,omitempty"`
	JobVariables      map[string]any `json:"job_variables,omitempty"`
	State             StateType      `json:"state"`
	StateMessage      string         `json:"state_message,omitempty"`
	ExpectedStartTime time.Time      `json:"expected_start_time"`
	StartTime         *time.Time     `json:"start_time,omitempty"`
	EndTime           *time.Time     `json:"end_time,omitempty"`
	WorkPoolName      string         `json:"work_pool_name,omitempty"`
	WorkQueueName     string         `json:"work_queue_name,omitempty"`
	InfrastructureID  string         `json:"infrastructure_id,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	IdempotencyKey    string         `json:"idempotency_key,omitempty"`
	RunCount          int            `json:"run_count"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ApplyState moves the run into state `to` at time now, updating timestamps.
func (r *FlowRun) ApplyState(to StateType, message string, force bool, now time.Time) error {
	if !force && !CanTransition(r.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, r.State, to)
	}
	r.State = to
	r.StateMessage = message
	if to == StateRunning {
		t := now
		if r.StartTime == nil {
			r.StartTime = &t
		}
		r.RunCount++
	}
	if to.IsTerminal() {
		t := now
		r.EndTime = &t
	}
	r.UpdatedAt = now
	return nil
}

// InfrastructureResult is the outcome reported by infrastructure after running a flow run.
type InfrastructureResult struct {
	Identifier string `json:"identifier"`
	StatusCode int    `json:"status_code"`
}
