package automation

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// UpdateInput replaces parts of an automation. Nil fields are kept.
type UpdateInput struct {
	WorkspaceID string              `json:"workspace_id"`
	Ref         string              `json:"ref"`
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Trigger     *model.EventTrigger `json:"trigger,omitempty"`
	Actions     []model.Action      `json:"actions,omitempty"`
}

// UpdateOutput wraps the updated automation.
type UpdateOutput struct {
	Automation *model.Automation `json:"automation"`
}

// Update applies changes to an automation. A changed trigger starts from a
// clean evaluation state.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil {
		return nil, model.ErrAutomationInvalid
	}
	a, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Trigger != nil {
		a.Trigger = *in.Trigger
	}
	if in.Actions != nil {
		a.Actions = in.Actions
	}
	if err := u.validate(ctx, a); err != nil {
		return nil, err
	}
	a.UpdatedAt = u.now()
	if err := u.Repos.Automation.Update(ctx, a); err != nil {
		return nil, err
	}
	if in.Trigger != nil {
		u.forget(a.ID)
	}
	return &UpdateOutput{Automation: a}, nil
}
