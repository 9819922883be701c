package workpool

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// UpdateInput specifies pool fields that can be changed.
type UpdateInput struct {
	WorkspaceID      string         `json:"workspace_id"`
	Ref              string         `json:"ref"`
	Description      *string        `json:"description,omitempty"`
	BaseJobTemplate  map[string]any `json:"base_job_template,omitempty"`
	ConcurrencyLimit *int           `json:"concurrency_limit,omitempty"`
}

// UpdateOutput wraps the updated pool.
type UpdateOutput struct {
	WorkPool *model.WorkPool `json:"work_pool"`
}

// Update applies provided changes. The type and name are immutable.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil {
		return nil, model.ErrWorkPoolInvalid
	}
	p, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.BaseJobTemplate != nil {
		p.BaseJobTemplate = in.BaseJobTemplate
	}
	if in.ConcurrencyLimit != nil {
		p.ConcurrencyLimit = *in.ConcurrencyLimit
	}
	if err := validatePool(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = now()
	if err := u.Repos.WorkPool.Update(ctx, p); err != nil {
		return nil, err
	}
	return &UpdateOutput{WorkPool: p}, nil
}
