package artifact

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies an artifact by ID.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
}

// GetOutput wraps the artifact.
type GetOutput struct {
	Artifact *model.Artifact `json:"artifact"`
}

// Get returns an artifact of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || in.ID == "" {
		return nil, model.ErrArtifactInvalid
	}
	a, err := u.Repos.Artifact.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.WorkspaceID != in.WorkspaceID {
		return nil, model.ErrArtifactNotFound
	}
	return &GetOutput{Artifact: a}, nil
}

// LatestInput identifies an artifact key.
type LatestInput struct {
	WorkspaceID string `json:"workspace_id"`
	Key         string `json:"key"`
}

// Latest returns the most recent artifact stored under a key.
func (u *UseCase) Latest(ctx context.Context, in *LatestInput) (*GetOutput, error) {
	if in == nil || in.Key == "" {
		return nil, model.ErrArtifactInvalid
	}
	list, err := u.List(ctx, &ListInput{WorkspaceID: in.WorkspaceID, Key: in.Key})
	if err != nil {
		return nil, err
	}
	if len(list.Artifacts) == 0 {
		return nil, fmt.Errorf("%w: key %s", model.ErrArtifactNotFound, in.Key)
	}
	return &GetOutput{Artifact: list.Artifacts[len(list.Artifacts)-1]}, nil
}
