package deployment

import (
	"context"

	"github.com/thoas/go-funk"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters deployments.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	FlowID      string `json:"flow_id,omitempty"`
	Tag         string `json:"tag,omitempty"`
	// ScheduledOnly keeps active deployments with a schedule.
	ScheduledOnly bool `json:"scheduled_only,omitempty"`
}

// ListOutput wraps listed deployments.
type ListOutput struct {
	Deployments []*model.Deployment `json:"deployments"`
}

// List returns the deployments of a workspace.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrDeploymentInvalid
	}
	items, err := u.Repos.Deployment.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Deployment, 0, len(items))
	for _, d := range items {
		if d.WorkspaceID != in.WorkspaceID {
			continue
		}
		if in.FlowID != "" && d.FlowID != in.FlowID {
			continue
		}
		if in.Tag != "" && !funk.ContainsString(d.Tags, in.Tag) {
			continue
		}
		if in.ScheduledOnly && !d.IsScheduled() {
			continue
		}
		out = append(out, d)
	}
	return &ListOutput{Deployments: out}, nil
}
