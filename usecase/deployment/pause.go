package deployment

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// PauseInput identifies the deployment to pause or resume.
type PauseInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// PauseOutput wraps the deployment.
type PauseOutput struct {
	Deployment *model.Deployment `json:"deployment"`
}

// Pause stops the scheduler from creating runs for the deployment.
func (u *UseCase) Pause(ctx context.Context, in *PauseInput) (*PauseOutput, error) {
	return u.setPaused(ctx, in, true)
}

// Resume undoes Pause.
func (u *UseCase) Resume(ctx context.Context, in *PauseInput) (*PauseOutput, error) {
	return u.setPaused(ctx, in, false)
}

func (u *UseCase) setPaused(ctx context.Context, in *PauseInput, paused bool) (*PauseOutput, error) {
	if in == nil {
		return nil, model.ErrDeploymentInvalid
	}
	d, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if d.Paused == paused {
		return &PauseOutput{Deployment: d}, nil
	}
	d.Paused = paused
	d.UpdatedAt = now()
	if err := u.Repos.Deployment.Update(ctx, d); err != nil {
		return nil, err
	}
	return &PauseOutput{Deployment: d}, nil
}
