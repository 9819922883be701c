package deployment

import (
	"context"

	"github.com/thoas/go-funk"

	"github.com/kompox/flowops/domain/model"
)

// CreateInput defines a new deployment.
type CreateInput struct {
	WorkspaceID     string           `json:"workspace_id"`
	FlowID          string           `json:"flow_id"`
	Name            string           `json:"name"`
	Version         string           `json:"version,omitempty"`
	Description     string           `json:"description,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Parameters      map[string]any   `json:"parameters,omitempty"`
	ParameterSchema map[string]any   `json:"parameter_openapi_schema,omitempty"`
	Schedule        *model.Schedule  `json:"schedule,omitempty"`
	Paused          bool             `json:"paused,omitempty"`
	WorkPoolName    string           `json:"work_pool_name,omitempty"`
	WorkQueueName   string           `json:"work_queue_name,omitempty"`
	Entrypoint      string           `json:"entrypoint,omitempty"`
	Path            string           `json:"path,omitempty"`
	PullSteps       []map[string]any `json:"pull_steps,omitempty"`
	JobVariables    map[string]any   `json:"job_variables,omitempty"`
}

// CreateOutput wraps the created deployment.
type CreateOutput struct {
	Deployment *model.Deployment `json:"deployment"`
}

// Create validates and stores a deployment. Names are unique per flow.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrDeploymentInvalid
	}
	t := now()
	d := &model.Deployment{
		WorkspaceID:     in.WorkspaceID,
		FlowID:          in.FlowID,
		Name:            in.Name,
		Version:         in.Version,
		Description:     in.Description,
		Tags:            funk.UniqString(in.Tags),
		Parameters:      in.Parameters,
		ParameterSchema: in.ParameterSchema,
		Schedule:        in.Schedule,
		Paused:          in.Paused,
		WorkPoolName:    in.WorkPoolName,
		WorkQueueName:   in.WorkQueueName,
		Entrypoint:      in.Entrypoint,
		Path:            in.Path,
		PullSteps:       in.PullSteps,
		JobVariables:    in.JobVariables,
		CreatedAt:       t,
		UpdatedAt:       t,
	}
	if err := u.validate(ctx, d); err != nil {
		return nil, err
	}
	if err := u.Repos.Deployment.Create(ctx, d); err != nil {
		return nil, err
	}
	return &CreateOutput{Deployment: d}, nil
}
