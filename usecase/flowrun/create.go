package flowrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thoas/go-funk"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/naming"
)

// CreateInput defines a new flow run of a deployment or of a bare flow.
type CreateInput struct {
	WorkspaceID string `json:"workspace_id"`
	// DeploymentID selects the deployment. The flow, parameters, work pool and
	// job variables default to the deployment's.
	DeploymentID string `json:"deployment_id,omitempty"`
	// FlowID is required when DeploymentID is empty.
	FlowID            string          `json:"flow_id,omitempty"`
	Name              string          `json:"name,omitempty"`
	Parameters        map[string]any  `json:"parameters,omitempty"`
	JobVariables      map[string]any  `json:"job_variables,omitempty"`
	State             model.StateType `json:"state,omitempty"`
	ExpectedStartTime *time.Time      `json:"expected_start_time,omitempty"`
	WorkPoolName      string          `json:"work_pool_name,omitempty"`
	WorkQueueName     string          `json:"work_queue_name,omitempty"`
	Tags              []string        `json:"tags,omitempty"`
	// IdempotencyKey returns the existing run of the same deployment or flow
	// instead of creating a new one.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CreateOutput wraps the run.
type CreateOutput struct {
	FlowRun *model.FlowRun `json:"flow_run"`
	Created bool           `json:"created"`
}

// Create stores a new flow run in the SCHEDULED state unless State says otherwise.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrFlowRunInvalid
	}
	state := in.State
	if state == "" {
		state = model.StateScheduled
	}
	if _, err := model.ParseStateType(string(state)); err != nil {
		return nil, err
	}
	if state.IsTerminal() {
		return nil, fmt.Errorf("%w: a run cannot start in terminal state %s", model.ErrFlowRunInvalid, state)
	}

	t := u.now()
	run := &model.FlowRun{
		WorkspaceID:    in.WorkspaceID,
		Name:           in.Name,
		State:          state,
		WorkPoolName:   in.WorkPoolName,
		WorkQueueName:  in.WorkQueueName,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      t,
		UpdatedAt:      t,
	}
	if in.DeploymentID != "" {
		d, err := u.Repos.Deployment.Get(ctx, in.DeploymentID)
		if err != nil || d.WorkspaceID != in.WorkspaceID {
			if err == nil || errors.Is(err, model.ErrDeploymentNotFound) {
				return nil, fmt.Errorf("%w: %s", model.ErrDeploymentNotFound, in.DeploymentID)
			}
			return nil, err
		}
		run.DeploymentID = d.ID
		run.FlowID = d.FlowID
		run.Parameters = mergeMaps(d.Parameters, in.Parameters)
		run.JobVariables = mergeMaps(d.JobVariables, in.JobVariables)
		run.Tags = funk.UniqString(append(append([]string{}, d.Tags...), in.Tags...))
		if run.WorkPoolName == "" {
			run.WorkPoolName = d.WorkPoolName
		}
		if run.WorkQueueName == "" {
			run.WorkQueueName = d.WorkQueueName
		}
	} else {
		if in.FlowID == "" {
			return nil, fmt.Errorf("%w: a deployment or a flow is required", model.ErrFlowRunInvalid)
		}
		f, err := u.Repos.Flow.Get(ctx, in.FlowID)
		if err != nil || f.WorkspaceID != in.WorkspaceID {
			if err == nil || errors.Is(err, model.ErrFlowNotFound) {
				return nil, fmt.Errorf("%w: %s", model.ErrFlowNotFound, in.FlowID)
			}
			return nil, err
		}
		run.FlowID = f.ID
		run.Parameters = mergeMaps(nil, in.Parameters)
		run.JobVariables = mergeMaps(nil, in.JobVariables)
		run.Tags = funk.UniqString(in.Tags)
	}
	if run.WorkPoolName != "" && run.WorkQueueName == "" {
		run.WorkQueueName = model.DefaultWorkQueueName
	}

	if in.IdempotencyKey != "" {
		existing, err := u.findByKey(ctx, run)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &CreateOutput{FlowRun: existing}, nil
		}
	}

	if run.Name == "" {
		run.Name = naming.NewRunName()
	}
	run.ExpectedStartTime = t
	if in.ExpectedStartTime != nil {
		run.ExpectedStartTime = in.ExpectedStartTime.UTC()
	}
	if err := u.Repos.FlowRun.Create(ctx, run); err != nil {
		return nil, err
	}
	u.emitState(ctx, run, "")
	return &CreateOutput{FlowRun: run, Created: true}, nil
}

// findByKey returns a run of the same deployment (or flow) with the same idempotency key.
func (u *UseCase) findByKey(ctx context.Context, run *model.FlowRun) (*model.FlowRun, error) {
	items, err := u.Repos.FlowRun.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range items {
		if r.WorkspaceID == run.WorkspaceID && r.IdempotencyKey == run.IdempotencyKey &&
			r.DeploymentID == run.DeploymentID && r.FlowID == run.FlowID {
			return r, nil
		}
	}
	return nil, nil
}

// mergeMaps returns a copy of base overlaid with over.
func mergeMaps(base, over map[string]any) map[string]any {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
