package deployment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/flowrun"
)

// Repos holds repositories needed for deployment use cases.
type Repos struct {
	Deployment domain.DeploymentRepository
	Flow       domain.FlowRepository
	WorkPool   domain.WorkPoolRepository
}

// FlowLocator finds the entrypoint of a flow registered in the project.
type FlowLocator interface {
	LookupFlow(name string) (entrypoint string, err error)
}

// UseCase wires repositories and collaborators for deployment use cases.
type UseCase struct {
	Repos *Repos
	// FlowRuns creates runs for Run. Required by Run only.
	FlowRuns *flowrun.UseCase
	// Steps runs build and push steps of Deploy. Defaults to NewSteps(nil).
	Steps *Steps
	// Locator resolves flow names for Deploy when no entrypoint is given.
	Locator FlowLocator
}

// Resolve returns a deployment by ID, by "flow/deployment" or by name.
// A bare name matching deployments of several flows is ambiguous.
func (u *UseCase) Resolve(ctx context.Context, workspaceID, ref string) (*model.Deployment, error) {
	if ref == "" {
		return nil, model.ErrDeploymentInvalid
	}
	if d, err := u.Repos.Deployment.Get(ctx, ref); err == nil && d.WorkspaceID == workspaceID {
		return d, nil
	}
	flowName, name := "", ref
	if i := strings.Index(ref, "/"); i > 0 {
		flowName, name = ref[:i], ref[i+1:]
	}
	items, err := u.Repos.Deployment.List(ctx)
	if err != nil {
		return nil, err
	}
	var found []*model.Deployment
	for _, d := range items {
		if d.WorkspaceID != workspaceID || d.Name != name {
			continue
		}
		if flowName != "" {
			f, err := u.Repos.Flow.Get(ctx, d.FlowID)
			if err != nil || f.Name != flowName {
				continue
			}
		}
		found = append(found, d)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", model.ErrDeploymentNotFound, ref)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q matches %d deployments, use flow/deployment", model.ErrDeploymentInvalid, ref, len(found))
}

// findByFlowAndName returns the deployment of flowID named name, or nil.
func (u *UseCase) findByFlowAndName(ctx context.Context, workspaceID, flowID, name string) (*model.Deployment, error) {
	items, err := u.Repos.Deployment.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range items {
		if d.WorkspaceID == workspaceID && d.FlowID == flowID && d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

// validate checks a deployment before it is stored.
func (u *UseCase) validate(ctx context.Context, d *model.Deployment) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", model.ErrDeploymentInvalid)
	}
	if strings.Contains(d.Name, "/") {
		return fmt.Errorf("%w: name must not contain '/'", model.ErrDeploymentInvalid)
	}
	f, err := u.Repos.Flow.Get(ctx, d.FlowID)
	if err != nil || f.WorkspaceID != d.WorkspaceID {
		return fmt.Errorf("%w: flow %q", model.ErrFlowNotFound, d.FlowID)
	}
	if d.Schedule != nil {
		if d.Schedule.Kind() == "" {
			d.Schedule = nil
		} else if err := d.Schedule.Validate(); err != nil {
			return err
		} else if err := d.Schedule.PinStart(now()); err != nil {
			return err
		}
	}
	existing, err := u.findByFlowAndName(ctx, d.WorkspaceID, d.FlowID, d.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != d.ID {
		return fmt.Errorf("%w: %s", model.ErrDeploymentConflict, d.Name)
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }
