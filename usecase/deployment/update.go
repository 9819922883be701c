package deployment

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// UpdateInput specifies deployment fields that can be changed. Nil fields are kept.
type UpdateInput struct {
	WorkspaceID   string           `json:"workspace_id"`
	Ref           string           `json:"ref"`
	Version       *string          `json:"version,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Parameters    map[string]any   `json:"parameters,omitempty"`
	Schedule      *model.Schedule  `json:"schedule,omitempty"`
	ClearSchedule bool             `json:"clear_schedule,omitempty"`
	WorkPoolName  *string          `json:"work_pool_name,omitempty"`
	WorkQueueName *string          `json:"work_queue_name,omitempty"`
	PullSteps     []map[string]any `json:"pull_steps,omitempty"`
	JobVariables  map[string]any   `json:"job_variables,omitempty"`
}

// UpdateOutput wraps the updated deployment.
type UpdateOutput struct {
	Deployment *model.Deployment `json:"deployment"`
}

// Update applies provided changes to a deployment.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil {
		return nil, model.ErrDeploymentInvalid
	}
	d, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if in.Version != nil {
		d.Version = *in.Version
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.Tags != nil {
		d.Tags = in.Tags
	}
	if in.Parameters != nil {
		d.Parameters = in.Parameters
	}
	if in.ClearSchedule {
		d.Schedule = nil
	} else if in.Schedule != nil {
		d.Schedule = in.Schedule
	}
	if in.WorkPoolName != nil {
		d.WorkPoolName = *in.WorkPoolName
	}
	if in.WorkQueueName != nil {
		d.WorkQueueName = *in.WorkQueueName
	}
	if in.PullSteps != nil {
		d.PullSteps = in.PullSteps
	}
	if in.JobVariables != nil {
		d.JobVariables = in.JobVariables
	}
	if err := u.validate(ctx, d); err != nil {
		return nil, err
	}
	d.UpdatedAt = now()
	if err := u.Repos.Deployment.Update(ctx, d); err != nil {
		return nil, err
	}
	return &UpdateOutput{Deployment: d}, nil
}
