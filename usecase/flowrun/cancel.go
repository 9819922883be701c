package flowrun

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain/model"
)

// CancelInput identifies the run to cancel.
type CancelInput struct {
	WorkspaceID string `json:"workspace_id"`
	FlowRunID   string `json:"flow_run_id"`
}

// CancelOutput wraps the run after cancellation.
type CancelOutput struct {
	FlowRun *model.FlowRun `json:"flow_run"`
}

// Cancel cancels a run that has not started, and asks a running one to stop
// by moving it to CANCELLING.
func (u *UseCase) Cancel(ctx context.Context, in *CancelInput) (*CancelOutput, error) {
	if in == nil {
		return nil, model.ErrFlowRunInvalid
	}
	r, err := u.get(ctx, in.WorkspaceID, in.FlowRunID)
	if err != nil {
		return nil, err
	}
	var to model.StateType
	switch r.State {
	case model.StateScheduled, model.StatePending, model.StatePaused:
		to = model.StateCancelled
	case model.StateRunning:
		to = model.StateCancelling
	case model.StateCancelling:
		return &CancelOutput{FlowRun: r}, nil
	default:
		return nil, fmt.Errorf("%w: run is already %s", model.ErrInvalidStateTransition, r.State)
	}
	out, err := u.SetState(ctx, &SetStateInput{
		WorkspaceID: in.WorkspaceID,
		FlowRunID:   r.ID,
		State:       to,
		Message:     "Cancelled by request",
	})
	if err != nil {
		return nil, err
	}
	return &CancelOutput{FlowRun: out.FlowRun}, nil
}
