package workspace

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// CreateInput contains data to create a workspace.
type CreateInput struct {
	// Name is the workspace name.
	Name string `json:"name"`
	// Description is optional free text.
	Description string `json:"description,omitempty"`
}

// CreateOutput wraps the created workspace.
type CreateOutput struct {
	// Workspace is the newly created entity.
	Workspace *model.Workspace `json:"workspace"`
}

// Create persists a new workspace. Its handle is the slug of the name.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.Name == "" {
		return nil, model.ErrWorkspaceInvalid
	}
	handle, err := handleFor(in.Name)
	if err != nil {
		return nil, err
	}
	if err := u.ensureUnique(ctx, "", in.Name, handle); err != nil {
		return nil, err
	}
	t := now()
	w := &model.Workspace{Name: in.Name, Handle: handle, Description: in.Description, CreatedAt: t, UpdatedAt: t}
	if err := u.Repos.Workspace.Create(ctx, w); err != nil {
		return nil, err
	}
	return &CreateOutput{Workspace: w}, nil
}
