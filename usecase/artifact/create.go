package artifact

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/naming"
)

// CreateInput describes an artifact.
type CreateInput struct {
	WorkspaceID string `json:"workspace_id"`
	Key         string `json:"key"`
	// Type defaults to markdown.
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Data        string `json:"data"`
	FlowRunID   string `json:"flow_run_id,omitempty"`
}

// CreateOutput wraps the artifact.
type CreateOutput struct {
	Artifact *model.Artifact `json:"artifact"`
}

// Create stores a new version of the artifact under its key.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrArtifactInvalid
	}
	if err := naming.ValidateArtifactKey(in.Key); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrArtifactInvalid, err)
	}
	typ := in.Type
	if typ == "" {
		typ = model.ArtifactMarkdown
	}
	if typ != model.ArtifactMarkdown && typ != model.ArtifactTable {
		return nil, fmt.Errorf("%w: unknown type %q", model.ErrArtifactInvalid, typ)
	}
	t := u.now()
	a := &model.Artifact{
		WorkspaceID: in.WorkspaceID,
		Key:         in.Key,
		Type:        typ,
		Description: in.Description,
		Data:        in.Data,
		FlowRunID:   in.FlowRunID,
		CreatedAt:   t,
		UpdatedAt:   t,
	}
	if err := u.Repos.Artifact.Create(ctx, a); err != nil {
		return nil, err
	}
	return &CreateOutput{Artifact: a}, nil
}
