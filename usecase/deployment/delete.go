package deployment

import (
	"context"
)

// DeleteInput identifies the deployment to delete.
type DeleteInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// DeleteOutput is empty because delete has no return entity.
type DeleteOutput struct{}

// Delete removes a deployment; empty ref is a no-op. Existing flow runs are kept.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil || in.Ref == "" {
		return &DeleteOutput{}, nil
	}
	d, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if err := u.Repos.Deployment.Delete(ctx, d.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{}, nil
}
