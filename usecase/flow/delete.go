package flow

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// DeleteInput identifies the flow to delete.
type DeleteInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// DeleteOutput is empty because delete has no return entity.
type DeleteOutput struct{}

// Delete removes a flow.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil {
		return nil, model.ErrFlowInvalid
	}
	f, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if err := u.Repos.Flow.Delete(ctx, f.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{}, nil
}
