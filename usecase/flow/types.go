package flow

import (
	"context"
	"fmt"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
)

// Repos holds repositories needed for flow use cases.
type Repos struct {
	Flow domain.FlowRepository
}

// UseCase wires repositories needed for flow use cases.
type UseCase struct {
	Repos *Repos
}

// findByName returns the flow named name in the workspace, or nil.
func (u *UseCase) findByName(ctx context.Context, workspaceID, name string) (*model.Flow, error) {
	items, err := u.Repos.Flow.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range items {
		if f.WorkspaceID == workspaceID && f.Name == name {
			return f, nil
		}
	}
	return nil, nil
}

// Resolve returns the flow by ID or by name within the workspace.
func (u *UseCase) Resolve(ctx context.Context, workspaceID, ref string) (*model.Flow, error) {
	if ref == "" {
		return nil, model.ErrFlowInvalid
	}
	if f, err := u.Repos.Flow.Get(ctx, ref); err == nil && f.WorkspaceID == workspaceID {
		return f, nil
	}
	f, err := u.findByName(ctx, workspaceID, ref)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrFlowNotFound, ref)
	}
	return f, nil
}
