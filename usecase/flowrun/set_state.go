package flowrun

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// SetStateInput requests a state transition.
type SetStateInput struct {
	WorkspaceID string          `json:"workspace_id"`
	FlowRunID   string          `json:"flow_run_id"`
	State       model.StateType `json:"state"`
	Message     string          `json:"message,omitempty"`
	// Force bypasses the transition table.
	Force bool `json:"force,omitempty"`
	// InfrastructureID records where the run executes, when known.
	InfrastructureID string `json:"infrastructure_id,omitempty"`
}

// SetStateOutput wraps the run after the transition.
type SetStateOutput struct {
	FlowRun *model.FlowRun `json:"flow_run"`
}

// SetState moves a run to a new state and emits flowops.flow-run.<State>.
func (u *UseCase) SetState(ctx context.Context, in *SetStateInput) (*SetStateOutput, error) {
	if in == nil {
		return nil, model.ErrFlowRunInvalid
	}
	if _, err := model.ParseStateType(string(in.State)); err != nil {
		return nil, err
	}
	r, err := u.get(ctx, in.WorkspaceID, in.FlowRunID)
	if err != nil {
		return nil, err
	}
	from := r.State
	if err := r.ApplyState(in.State, in.Message, in.Force, u.now()); err != nil {
		return nil, err
	}
	if in.InfrastructureID != "" {
		r.InfrastructureID = in.InfrastructureID
	}
	if err := u.Repos.FlowRun.Update(ctx, r); err != nil {
		return nil, err
	}
	u.emitState(ctx, r, from)
	return &SetStateOutput{FlowRun: r}, nil
}
