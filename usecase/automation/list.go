package automation

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters automations.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	EnabledOnly bool   `json:"enabled_only,omitempty"`
}

// ListOutput wraps automations.
type ListOutput struct {
	Automations []*model.Automation `json:"automations"`
}

// List returns the automations of a workspace.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrAutomationInvalid
	}
	items, err := u.Repos.Automation.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Automation, 0, len(items))
	for _, a := range items {
		if a.WorkspaceID != in.WorkspaceID || (in.EnabledOnly && !a.Enabled) {
			continue
		}
		out = append(out, a)
	}
	return &ListOutput{Automations: out}, nil
}
