package artifact

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters artifacts.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	Key         string `json:"key,omitempty"`
	FlowRunID   string `json:"flow_run_id,omitempty"`
}

// ListOutput wraps artifacts, oldest first.
type ListOutput struct {
	Artifacts []*model.Artifact `json:"artifacts"`
}

// List returns artifacts of a workspace in creation order.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrArtifactInvalid
	}
	items, err := u.Repos.Artifact.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Artifact, 0, len(items))
	for _, a := range items {
		if a.WorkspaceID != in.WorkspaceID {
			continue
		}
		if in.Key != "" && a.Key != in.Key {
			continue
		}
		if in.FlowRunID != "" && a.FlowRunID != in.FlowRunID {
			continue
		}
		out = append(out, a)
	}
	return &ListOutput{Artifacts: out}, nil
}
