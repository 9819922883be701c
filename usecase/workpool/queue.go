package workpool

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain/model"
)

// QueueSetInput creates or updates a queue of a pool.
type QueueSetInput struct {
	WorkspaceID      string `json:"workspace_id"`
	Ref              string `json:"ref"`
	Name             string `json:"name"`
	Priority         *int   `json:"priority,omitempty"`
	ConcurrencyLimit *int   `json:"concurrency_limit,omitempty"`
}

// QueueSetOutput wraps the pool and the queue after the change.
type QueueSetOutput struct {
	WorkPool *model.WorkPool  `json:"work_pool"`
	Queue    *model.WorkQueue `json:"queue"`
	Created  bool             `json:"created"`
}

// QueueSet creates the queue when missing, otherwise updates the given fields.
// New queues default to the lowest priority of the pool.
func (u *UseCase) QueueSet(ctx context.Context, in *QueueSetInput) (*QueueSetOutput, error) {
	if in == nil {
		return nil, model.ErrWorkPoolInvalid
	}
	p, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	created := false
	q := p.Queue(in.Name)
	if q == nil {
		prio := 1
		for _, existing := range p.Queues {
			if existing.Priority >= prio {
				prio = existing.Priority + 1
			}
		}
		p.Queues = append(p.Queues, model.WorkQueue{Name: in.Name, Priority: prio})
		q = &p.Queues[len(p.Queues)-1]
		created = true
	}
	if in.Priority != nil {
		q.Priority = *in.Priority
	}
	if in.ConcurrencyLimit != nil {
		q.ConcurrencyLimit = *in.ConcurrencyLimit
	}
	if err := validateQueue(q); err != nil {
		return nil, err
	}
	sortQueues(p)
	p.UpdatedAt = now()
	if err := u.Repos.WorkPool.Update(ctx, p); err != nil {
		return nil, err
	}
	return &QueueSetOutput{WorkPool: p, Queue: p.Queue(in.Name), Created: created}, nil
}

// QueueDeleteInput identifies a queue to delete.
type QueueDeleteInput struct {
	WorkspaceID string `json:"workspace_id"`
	Ref         string `json:"ref"`
	Name        string `json:"name"`
}

// QueueDeleteOutput wraps the pool after the change.
type QueueDeleteOutput struct {
	WorkPool *model.WorkPool `json:"work_pool"`
}

// QueueDelete removes a queue. The default queue cannot be deleted.
func (u *UseCase) QueueDelete(ctx context.Context, in *QueueDeleteInput) (*QueueDeleteOutput, error) {
	if in == nil {
		return nil, model.ErrWorkPoolInvalid
	}
	if in.Name == model.DefaultWorkQueueName {
		return nil, fmt.Errorf("%w: the default queue cannot be deleted", model.ErrWorkPoolInvalid)
	}
	p, err := u.Resolve(ctx, in.WorkspaceID, in.Ref)
	if err != nil {
		return nil, err
	}
	kept := p.Queues[:0]
	found := false
	for _, q := range p.Queues {
		if q.Name == in.Name {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return nil, queueNotFound(p, in.Name)
	}
	p.Queues = kept
	p.UpdatedAt = now()
	if err := u.Repos.WorkPool.Update(ctx, p); err != nil {
		return nil, err
	}
	return &QueueDeleteOutput{WorkPool: p}, nil
}

func queueNotFound(p *model.WorkPool, name string) error {
	return fmt.Errorf("%w: queue %q in pool %q", model.ErrWorkPoolNotFound, name, p.Name)
}
