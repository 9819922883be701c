package automation

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// CreateInput defines a new automation.
type CreateInput struct {
	WorkspaceID string             `json:"workspace_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Enabled     bool               `json:"enabled"`
	Trigger     model.EventTrigger `json:"trigger"`
	Actions     []model.Action     `json:"actions"`
}

// CreateOutput wraps the created automation.
type CreateOutput struct {
	Automation *model.Automation `json:"automation"`
}

// Create validates and stores an automation.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrAutomationInvalid
	}
	t := u.now()
	a := &model.Automation{
		WorkspaceID: in.WorkspaceID,
		Name:        in.Name,
		Description: in.Description,
		Enabled:     in.Enabled,
		Trigger:     in.Trigger,
		Actions:     in.Actions,
		CreatedAt:   t,
		UpdatedAt:   t,
	}
	if err := u.validate(ctx, a); err != nil {
		return nil, err
	}
	if err := u.Repos.Automation.Create(ctx, a); err != nil {
		return nil, err
	}
	return &CreateOutput{Automation: a}, nil
}
