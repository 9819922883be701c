package workpool

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters work pools.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	Type        string `json:"type,omitempty"`
}

// ListOutput wraps listed pools.
type ListOutput struct {
	WorkPools []*model.WorkPool `json:"work_pools"`
}

// List returns the work pools of a workspace.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrWorkPoolInvalid
	}
	items, err := u.Repos.WorkPool.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.WorkPool, 0, len(items))
	for _, p := range items {
		if p.WorkspaceID != in.WorkspaceID || (in.Type != "" && p.Type != in.Type) {
			continue
		}
		out = append(out, p)
	}
	return &ListOutput{WorkPools: out}, nil
}
