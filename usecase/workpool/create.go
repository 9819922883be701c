package workpool

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain/model"
)

// CreateInput defines a new work pool.
type CreateInput struct {
	WorkspaceID      string            `json:"workspace_id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Description      string            `json:"description,omitempty"`
	BaseJobTemplate  map[string]any    `json:"base_job_template,omitempty"`
	ConcurrencyLimit int               `json:"concurrency_limit,omitempty"`
	Paused           bool              `json:"paused,omitempty"`
	Queues           []model.WorkQueue `json:"queues,omitempty"`
}

// CreateOutput wraps the created pool.
type CreateOutput struct {
	WorkPool *model.WorkPool `json:"work_pool"`
}

// Create validates and stores a work pool. The default queue is always added.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrWorkPoolInvalid
	}
	t := now()
	p := &model.WorkPool{
		WorkspaceID:      in.WorkspaceID,
		Name:             in.Name,
		Type:             in.Type,
		Description:      in.Description,
		BaseJobTemplate:  in.BaseJobTemplate,
		ConcurrencyLimit: in.ConcurrencyLimit,
		Paused:           in.Paused,
		Queues:           append([]model.WorkQueue(nil), in.Queues...),
		CreatedAt:        t,
		UpdatedAt:        t,
	}
	if p.Type == "" {
		p.Type = model.WorkPoolTypeProcess
	}
	ensureDefaultQueue(p)
	if err := validatePool(p); err != nil {
		return nil, err
	}
	existing, err := u.findByName(ctx, in.WorkspaceID, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrWorkPoolConflict, in.Name)
	}
	if err := u.Repos.WorkPool.Create(ctx, p); err != nil {
		return nil, err
	}
	return &CreateOutput{WorkPool: p}, nil
}
