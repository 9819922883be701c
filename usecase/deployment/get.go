package deployment

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies a deployment by ID, "flow/deployment" or name.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// GetOutput wraps the deployment.
type GetOutput struct {
	Deployment *model.Deployment `json:"deployment"`
}

// Get returns a deployment of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrDeploymentInvalid
	}
	d, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Deployment: d}, nil
}
