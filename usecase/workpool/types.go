package workpool

import (
	"context"
	"fmt"
	"sort"
	"time"

	infradrv "github.com/kompox/flowops/adapters/drivers/infra"
	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/naming"
)

// Repos holds repositories needed for work pool use cases.
type Repos struct {
	WorkPool domain.WorkPoolRepository
}

// UseCase wires repositories needed for work pool use cases.
type UseCase struct {
	Repos *Repos
}

// findByName returns the pool named name in the workspace, or nil.
func (u *UseCase) findByName(ctx context.Context, workspaceID, name string) (*model.WorkPool, error) {
	items, err := u.Repos.WorkPool.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		if p.WorkspaceID == workspaceID && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

// Resolve returns the pool by ID or by name within the workspace.
func (u *UseCase) Resolve(ctx context.Context, workspaceID, ref string) (*model.WorkPool, error) {
	if ref == "" {
		return nil, model.ErrWorkPoolInvalid
	}
	if p, err := u.Repos.WorkPool.Get(ctx, ref); err == nil && p.WorkspaceID == workspaceID {
		return p, nil
	}
	p, err := u.findByName(ctx, workspaceID, ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrWorkPoolNotFound, ref)
	}
	return p, nil
}

// validatePool checks type, limits, queues and the base job template.
func validatePool(p *model.WorkPool) error {
	if err := naming.ValidateHandle(p.Name); err != nil {
		return fmt.Errorf("%w: name: %v", model.ErrWorkPoolInvalid, err)
	}
	if !model.IsKnownWorkPoolType(p.Type) {
		return fmt.Errorf("%w: unknown type %q", model.ErrWorkPoolInvalid, p.Type)
	}
	if p.ConcurrencyLimit < 0 {
		return fmt.Errorf("%w: concurrency limit must not be negative", model.ErrWorkPoolInvalid)
	}
	seen := map[string]bool{}
	for _, q := range p.Queues {
		if err := validateQueue(&q); err != nil {
			return err
		}
		if seen[q.Name] {
			return fmt.Errorf("%w: duplicate queue %q", model.ErrWorkPoolInvalid, q.Name)
		}
		seen[q.Name] = true
	}
	if err := infradrv.ValidateTemplate(p.Type, p.BaseJobTemplate); err != nil {
		return fmt.Errorf("%w: base job template: %v", model.ErrWorkPoolInvalid, err)
	}
	return nil
}

func validateQueue(q *model.WorkQueue) error {
	if err := naming.ValidateHandle(q.Name); err != nil {
		return fmt.Errorf("%w: queue name: %v", model.ErrWorkPoolInvalid, err)
	}
	if q.ConcurrencyLimit < 0 {
		return fmt.Errorf("%w: queue %q: concurrency limit must not be negative", model.ErrWorkPoolInvalid, q.Name)
	}
	return nil
}

// ensureDefaultQueue adds the default queue when missing and sorts queues by priority.
func ensureDefaultQueue(p *model.WorkPool) {
	if p.Queue(model.DefaultWorkQueueName) == nil {
		p.Queues = append(p.Queues, model.WorkQueue{Name: model.DefaultWorkQueueName, Priority: 1})
	}
	sortQueues(p)
}

func sortQueues(p *model.WorkPool) {
	sort.SliceStable(p.Queues, func(i, j int) bool {
		if p.Queues[i].Priority != p.Queues[j].Priority {
			return p.Queues[i].Priority < p.Queues[j].Priority
		}
		return p.Queues[i].Name < p.Queues[j].Name
	})
}

func now() time.Time { return time.Now().UTC() }
