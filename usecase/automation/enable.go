package automation

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// EnableInput identifies the automation to enable or disable.
type EnableInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// EnableOutput wraps the automation.
type EnableOutput struct {
	Automation *model.Automation `json:"automation"`
}

// Enable turns an automation on. The chain check applies again.
func (u *UseCase) Enable(ctx context.Context, in *EnableInput) (*EnableOutput, error) {
	return u.setEnabled(ctx, in, true)
}

// Disable turns an automation off and drops its trigger state.
func (u *UseCase) Disable(ctx context.Context, in *EnableInput) (*EnableOutput, error) {
	return u.setEnabled(ctx, in, false)
}

func (u *UseCase) setEnabled(ctx context.Context, in *EnableInput, enabled bool) (*EnableOutput, error) {
	if in == nil {
		return nil, model.ErrAutomationInvalid
	}
	a, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if a.Enabled == enabled {
		return &EnableOutput{Automation: a}, nil
	}
	a.Enabled = enabled
	if enabled {
		if err := u.validate(ctx, a); err != nil {
			return nil, err
		}
	}
	a.UpdatedAt = u.now()
	if err := u.Repos.Automation.Update(ctx, a); err != nil {
		return nil, err
	}
	if !enabled {
		u.forget(a.ID)
	}
	return &EnableOutput{Automation: a}, nil
}
