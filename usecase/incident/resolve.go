package incident

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// ResolveInput identifies the incident to resolve.
type ResolveInput struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
}

// ResolveOutput wraps the incident.
type ResolveOutput struct {
	Incident *model.Incident `json:"incident"`
}

// Resolve marks an incident resolved. Resolving twice is a no-op.
func (u *UseCase) Resolve(ctx context.Context, in *ResolveInput) (*ResolveOutput, error) {
	if in == nil {
		return nil, model.ErrIncidentInvalid
	}
	inc, err := u.get(ctx, in.WorkspaceID, in.ID)
	if err != nil {
		return nil, err
	}
	if inc.Status == model.IncidentResolved {
		return &ResolveOutput{Incident: inc}, nil
	}
	t := u.now()
	inc.Status = model.IncidentResolved
	inc.ResolvedAt = &t
	inc.UpdatedAt = t
	if err := u.Repos.Incident.Update(ctx, inc); err != nil {
		return nil, err
	}
	u.emit(ctx, EventResolved, inc)
	return &ResolveOutput{Incident: inc}, nil
}
