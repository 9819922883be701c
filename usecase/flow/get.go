package flow

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies the flow by ID or name.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// GetOutput wraps the retrieved flow.
type GetOutput struct {
	Flow *model.Flow `json:"flow"`
}

// Get retrieves a flow of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrFlowInvalid
	}
	f, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Flow: f}, nil
}
