package incident

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// GetInput identifies an incident.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
}

// GetOutput wraps the incident.
type GetOutput struct {
	Incident *model.Incident `json:"incident"`
}

// Get returns an incident of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrIncidentInvalid
	}
	inc, err := u.get(ctx, in.WorkspaceID, in.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Incident: inc}, nil
}
