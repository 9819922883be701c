package automation

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies an automation by ID or name.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// GetOutput wraps the automation.
type GetOutput struct {
	Automation *model.Automation `json:"automation"`
}

// Get returns an automation of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrAutomationInvalid
	}
	a, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Automation: a}, nil
}
