package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/thoas/go-funk"

	"github.com/kompox/flowops/domain/model"
)

// RegisterInput records a flow by entrypoint.
type RegisterInput struct {
	WorkspaceID string `json:"workspace_id"`
	// Entrypoint is "path/to/file.py:func". It may be empty when Name is given.
	Entrypoint string `json:"entrypoint,omitempty"`
	// Name overrides the name derived from the entrypoint function.
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// RegisterOutput wraps the registered flow.
type RegisterOutput struct {
	Flow    *model.Flow `json:"flow"`
	Created bool        `json:"created"`
}

// Register creates the flow or refreshes the entrypoint of an existing flow
// with the same name. The name defaults to the entrypoint function with
// underscores turned into dashes.
func (u *UseCase) Register(ctx context.Context, in *RegisterInput) (*RegisterOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrFlowInvalid
	}
	name := in.Name
	if in.Entrypoint != "" {
		if _, _, ok := model.SplitEntrypoint(in.Entrypoint); !ok {
			return nil, fmt.Errorf("%w: entrypoint %q must look like path/to/file.py:flow_func", model.ErrFlowInvalid, in.Entrypoint)
		}
		if name == "" {
			name = model.FlowNameFromEntrypoint(in.Entrypoint)
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: an entrypoint or a name is required", model.ErrFlowInvalid)
	}
	tags := funk.UniqString(in.Tags)

	existing, err := u.findByName(ctx, in.WorkspaceID, name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if existing != nil {
		if in.Entrypoint != "" {
			existing.Entrypoint = in.Entrypoint
		}
		if in.Description != "" {
			existing.Description = in.Description
		}
		if len(tags) > 0 {
			existing.Tags = tags
		}
		existing.UpdatedAt = now
		if err := u.Repos.Flow.Update(ctx, existing); err != nil {
			return nil, err
		}
		return &RegisterOutput{Flow: existing}, nil
	}
	f := &model.Flow{
		WorkspaceID: in.WorkspaceID,
		Name:        name,
		Entrypoint:  in.Entrypoint,
		Description: in.Description,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.Repos.Flow.Create(ctx, f); err != nil {
		return nil, err
	}
	return &RegisterOutput{Flow: f, Created: true}, nil
}
