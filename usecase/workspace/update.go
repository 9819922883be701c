package workspace

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// UpdateInput specifies workspace fields that can be changed.
type UpdateInput struct {
	// WorkspaceID identifies the workspace.
	WorkspaceID string `json:"workspace_id"`
	// Name optionally renames the workspace; the handle follows.
	Name *string `json:"name,omitempty"`
	// Description optionally replaces the description.
	Description *string `json:"description,omitempty"`
}

// UpdateOutput wraps the updated workspace.
type UpdateOutput struct {
	// Workspace is the updated entity.
	Workspace *model.Workspace `json:"workspace"`
}

// Update applies provided changes to a workspace.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrWorkspaceInvalid
	}
	existing, err := u.Repos.Workspace.Get(ctx, in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	changed := false
	if in.Name != nil && *in.Name != "" && existing.Name != *in.Name {
		handle, err := handleFor(*in.Name)
		if err != nil {
			return nil, err
		}
		if err := u.ensureUnique(ctx, existing.ID, *in.Name, handle); err != nil {
			return nil, err
		}
		existing.Name = *in.Name
		existing.Handle = handle
		changed = true
	}
	if in.Description != nil && existing.Description != *in.Description {
		existing.Description = *in.Description
		changed = true
	}
	if changed {
		existing.UpdatedAt = now()
		if err := u.Repos.Workspace.Update(ctx, existing); err != nil {
			return nil, err
		}
	}
	return &UpdateOutput{Workspace: existing}, nil
}
