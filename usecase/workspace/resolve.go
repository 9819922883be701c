package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/kompox/flowops/domain/model"
)

// DefaultName is the workspace used when none is selected.
const DefaultName = "default"

// ResolveInput references a workspace by ID, name or handle.
type ResolveInput struct {
	// Ref is an ID, name or handle. Empty selects DefaultName.
	Ref string `json:"ref"`
	// Create creates the workspace named Ref when nothing matches.
	Create bool `json:"create,omitempty"`
}

// ResolveOutput wraps the resolved workspace.
type ResolveOutput struct {
	Workspace *model.Workspace `json:"workspace"`
	Created   bool             `json:"created,omitempty"`
}

// Resolve finds a workspace by reference, optionally creating it.
func (u *UseCase) Resolve(ctx context.Context, in *ResolveInput) (*ResolveOutput, error) {
	ref := DefaultName
	create := false
	if in != nil {
		create = in.Create
		if in.Ref != "" {
			ref = in.Ref
		}
	}
	w, err := u.Repos.Workspace.Get(ctx, ref)
	if err == nil {
		return &ResolveOutput{Workspace: w}, nil
	}
	if !errors.Is(err, model.ErrWorkspaceNotFound) {
		return nil, err
	}
	items, err := u.Repos.Workspace.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range items {
		if w.Name == ref || w.Handle == ref {
			return &ResolveOutput{Workspace: w}, nil
		}
	}
	if !create {
		return nil, fmt.Errorf("%w: %s", model.ErrWorkspaceNotFound, ref)
	}
	out, err := u.Create(ctx, &CreateInput{Name: ref})
	if err != nil {
		return nil, err
	}
	return &ResolveOutput{Workspace: out.Workspace, Created: true}, nil
}
