package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/domain/trigger"
)

// Repos holds repositories needed for automation use cases.
type Repos struct {
	Automation domain.AutomationRepository
	// Deployment resolves wildcard deployment matches of the chain check.
	Deployment domain.DeploymentRepository
}

// UseCase wires repositories and the trigger evaluator for automation use cases.
type UseCase struct {
	Repos *Repos
	// Evaluator forgets trigger state of changed automations. Optional.
	Evaluator *trigger.Evaluator
	Now       func() time.Time
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

func (u *UseCase) forget(id string) {
	if u.Evaluator != nil {
		u.Evaluator.Forget(id)
	}
}

// Resolve returns an automation of the workspace by ID or by name.
func (u *UseCase) Resolve(ctx context.Context, workspaceID, ref string) (*model.Automation, error) {
	if ref == "" {
		return nil, model.ErrAutomationInvalid
	}
	if a, err := u.Repos.Automation.Get(ctx, ref); err == nil && a.WorkspaceID == workspaceID {
		return a, nil
	}
	items, err := u.Repos.Automation.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		if a.WorkspaceID == workspaceID && a.Name == ref {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrAutomationNotFound, ref)
}

// validate checks the definition, name uniqueness and the run chain.
func (u *UseCase) validate(ctx context.Context, a *model.Automation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	items, err := u.Repos.Automation.List(ctx)
	if err != nil {
		return err
	}
	peers := make([]*model.Automation, 0, len(items)+1)
	for _, other := range items {
		if other.WorkspaceID != a.WorkspaceID || other.ID == a.ID {
			continue
		}
		if other.Name == a.Name {
			return fmt.Errorf("%w: automation %q already exists", model.ErrAutomationInvalid, a.Name)
		}
		peers = append(peers, other)
	}
	peers = append(peers, a)
	return u.checkChain(ctx, a.WorkspaceID, peers)
}
