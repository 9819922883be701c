package flowrun

import (
	"context"
)

// DeleteInput identifies the run to delete.
type DeleteInput struct {
	WorkspaceID string `json:"workspace_id"`
	FlowRunID   string `json:"flow_run_id"`
}

// DeleteOutput is empty because delete has no return entity.
type DeleteOutput struct{}

// Delete removes a flow run; empty ID is a no-op.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil || in.FlowRunID == "" {
		return &DeleteOutput{}, nil
	}
	r, err := u.get(ctx, in.WorkspaceID, in.FlowRunID)
	if err != nil {
		return nil, err
	}
	if err := u.Repos.FlowRun.Delete(ctx, r.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{}, nil
}
