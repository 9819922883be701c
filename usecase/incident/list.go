package incident

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters incidents.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	// Status is active or resolved; empty lists both.
	Status string `json:"status,omitempty"`
}

// ListOutput wraps incidents.
type ListOutput struct {
	Incidents []*model.Incident `json:"incidents"`
}

// List returns incidents of a workspace in declaration order.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrIncidentInvalid
	}
	switch in.Status {
	case "", model.IncidentActive, model.IncidentResolved:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrIncidentInvalid, in.Status)
	}
	items, err := u.Repos.Incident.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Incident, 0, len(items))
	for _, inc := range items {
		if inc.WorkspaceID != in.WorkspaceID {
			continue
		}
		if in.Status != "" && inc.Status != in.Status {
			continue
		}
		out = append(out, inc)
	}
	return &ListOutput{Incidents: out}, nil
}
