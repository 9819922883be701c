package automation

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// DeleteInput identifies the automation to delete.
type DeleteInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
}

// DeleteOutput is empty.
type DeleteOutput struct{}

// Delete removes an automation and its trigger state.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil {
		return nil, model.ErrAutomationInvalid
	}
	a, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if err := u.Repos.Automation.Delete(ctx, a.ID); err != nil {
		return nil, err
	}
	u.forget(a.ID)
	return &DeleteOutput{}, nil
}
