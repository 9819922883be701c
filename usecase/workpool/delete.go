package workpool

import (
	"context"
)

// DeleteInput identifies the pool to delete.
type DeleteInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// DeleteOutput is empty because delete has no return entity.
type DeleteOutput struct{}

// Delete removes a work pool; empty ref is a no-op.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil || in.Ref == "" {
		return &DeleteOutput{}, nil
	}
	p, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if err := u.Repos.WorkPool.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{}, nil
}
