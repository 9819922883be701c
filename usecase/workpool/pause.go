package workpool

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// PauseInput identifies a pool, or one of its queues when Queue is set.
type PauseInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
	Queue       string `json:"queue,omitempty"`
}

// PauseOutput wraps the updated pool.
type PauseOutput struct {
	WorkPool *model.WorkPool `json:"work_pool"`
}

// Pause stops workers from picking up runs of the pool or queue.
func (u *UseCase) Pause(ctx context.Context, in *PauseInput) (*PauseOutput, error) {
	return u.setPaused(ctx, in, true)
}

// Resume undoes Pause.
func (u *UseCase) Resume(ctx context.Context, in *PauseInput) (*PauseOutput, error) {
	return u.setPaused(ctx, in, false)
}

func (u *UseCase) setPaused(ctx context.Context, in *PauseInput, paused bool) (*PauseOutput, error) {
	if in == nil {
		return nil, model.ErrWorkPoolInvalid
	}
	p, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	if in.Queue == "" {
		p.Paused = paused
	} else {
		q := p.Queue(in.Queue)
		if q == nil {
			return nil, queueNotFound(p, in.Queue)
		}
		q.Paused = paused
	}
	p.UpdatedAt = now()
	if err := u.Repos.WorkPool.Update(ctx, p); err != nil {
		return nil, err
	}
	return &PauseOutput{WorkPool: p}, nil
}
