package flowrun

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies a flow run.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	FlowRunID   string `json:"flow_run_id"`
}

// GetOutput wraps the run.
type GetOutput struct {
	FlowRun *model.FlowRun `json:"flow_run"`
}

// Get returns a flow run of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrFlowRunInvalid
	}
	r, err := u.get(ctx, in.WorkspaceID, in.FlowRunID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{FlowRun: r}, nil
}
