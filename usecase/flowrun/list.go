package flowrun

import (
	"context"
	"sort"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters flow runs. Empty fields do not filter.
type ListInput struct {
	WorkspaceID   string            `json:"workspace_id"`
	DeploymentID  string            `json:"deployment_id,omitempty"`
	FlowID        string            `json:"flow_id,omitempty"`
	States        []model.StateType `json:"states,omitempty"`
	WorkPoolName  string            `json:"work_pool_name,omitempty"`
	WorkQueueName string            `json:"work_queue_name,omitempty"`
	// Limit keeps the first runs after sorting; 0 keeps all.
	Limit int `json:"limit,omitempty"`
}

// ListOutput wraps listed runs ordered by expected start time.
type ListOutput struct {
	FlowRuns []*model.FlowRun `json:"flow_runs"`
}

// List returns the flow runs of a workspace.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrFlowRunInvalid
	}
	items, err := u.Repos.FlowRun.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.FlowRun, 0, len(items))
	for _, r := range items {
		if r.WorkspaceID != in.WorkspaceID {
			continue
		}
		if in.DeploymentID != "" && r.DeploymentID != in.DeploymentID {
			continue
		}
		if in.FlowID != "" && r.FlowID != in.FlowID {
			continue
		}
		if in.WorkPoolName != "" && r.WorkPoolName != in.WorkPoolName {
			continue
		}
		if in.WorkQueueName != "" && r.WorkQueueName != in.WorkQueueName {
			continue
		}
		if len(in.States) > 0 && !hasState(in.States, r.State) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpectedStartTime.Before(out[j].ExpectedStartTime)
	})
	if in.Limit > 0 && len(out) > in.Limit {
		out = out[:in.Limit]
	}
	return &ListOutput{FlowRuns: out}, nil
}

func hasState(states []model.StateType, s model.StateType) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}
