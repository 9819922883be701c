package workpool

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies a work pool by ID or name.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// GetOutput wraps the pool.
type GetOutput struct {
	WorkPool *model.WorkPool `json:"work_pool"`
}

// Get returns a work pool of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrWorkPoolInvalid
	}
	p, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	return &GetOutput{WorkPool: p}, nil
}
