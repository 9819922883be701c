package deployment

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/flowrun"
)

// RunInput creates a flow run of a deployment.
type RunInput struct {
	WorkspaceID  string         `json:"workspace_id"`
	Ref          string         `json:"ref"`
	Name         string         `json:"name,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	JobVariables map[string]any `json:"job_variables,omitempty"`
	// StartAt schedules the run; nil means now.
	StartAt        *time.Time `json:"start_at,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// RunOutput wraps the created run.
type RunOutput struct {
	FlowRun *model.FlowRun `json:"flow_run"`
	Created bool           `json:"created"`
}

// Run creates a SCHEDULED flow run. Parameters are merged over the deployment defaults.
func (u *UseCase) Run(ctx context.Context, in *RunInput) (*RunOutput, error) {
	if in == nil {
		return nil, model.ErrDeploymentInvalid
	}
	if u.FlowRuns == nil {
		return nil, fmt.Errorf("flow run use case is not configured")
	}
	d, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	out, err := u.FlowRuns.Create(ctx, &flowrun.CreateInput{
		WorkspaceID:       in.WorkspaceID,
		DeploymentID:      d.ID,
		Name:              in.Name,
		Parameters:        in.Parameters,
		JobVariables:      in.JobVariables,
		ExpectedStartTime: in.StartAt,
		Tags:              in.Tags,
		IdempotencyKey:    in.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &RunOutput{FlowRun: out.FlowRun, Created: out.Created}, nil
}
