package flow

import (
	"context"

	"github.com/thoas/go-funk"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters flows.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	// Tag keeps only flows carrying the tag.
	Tag string `json:"tag,omitempty"`
}

// ListOutput wraps listed flows.
type ListOutput struct {
	Flows []*model.Flow `json:"flows"`
}

// List returns the flows of a workspace.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrFlowInvalid
	}
	items, err := u.Repos.Flow.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Flow, 0, len(items))
	for _, f := range items {
		if f.WorkspaceID != in.WorkspaceID {
			continue
		}
		if in.Tag != "" && !funk.ContainsString(f.Tags, in.Tag) {
			continue
		}
		out = append(out, f)
	}
	return &ListOutput{Flows: out}, nil
}
