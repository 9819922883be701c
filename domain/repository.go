package domain

import (
	"context"

	"github.com/kompox/flowops/domain/model"
)

// WorkspaceRepository stores and retrieves Workspace aggregates.
type WorkspaceRepository interface {
	Create(ctx context.Context, w *model.Workspace) error
	Get(ctx context.Context, id string) (*model.Workspace, error)
	List(ctx context.Context) ([]*model.Workspace, error)
	Update(ctx context.Context, w *model.Workspace) error
	Delete(ctx context.Context, id string) error
}

// FlowRepository stores and retrieves Flow aggregates.
type FlowRepository interface {
	Create(ctx context.Context, f *model.Flow) error
	Get(ctx context.Context, id string) (*model.Flow, error)
	List(ctx context.Context) ([]*model.Flow, error)
	Update(ctx context.Context, f *model.Flow) error
	Delete(ctx context.Context, id string) error
}

// DeploymentRepository stores and retrieves Deployment aggregates.
type DeploymentRepository interface {
	Create(ctx context.Context, d *model.Deployment) error
	Get(ctx context.Context, id string) (*model.Deployment, error)
	List(ctx context.Context) ([]*model.Deployment, error)
	Update(ctx context.Context, d *model.Deployment) error
	Delete(ctx context.Context, id string) error
}

// WorkPoolRepository stores and retrieves WorkPool aggregates.
type WorkPoolRepository interface {
	Create(ctx context.Context, p *model.WorkPool) error
	Get(ctx context.Context, id string) (*model.WorkPool, error)
	List(ctx context.Context) ([]*model.WorkPool, error)
	Update(ctx context.Context, p *model.WorkPool) error
	Delete(ctx context.Context, id string) error
}

// FlowRunRepository stores and retrieves FlowRun aggregates.
type FlowRunRepository interface {
	Create(ctx context.Context, r *model.FlowRun) error
	Get(ctx context.Context, id string) (*model.FlowRun, error)
	List(ctx context.Context) ([]*model.FlowRun, error)
	Update(ctx context.Context, r *model.FlowRun) error
	Delete(ctx context.Context, id string) error
}

// EventRepository stores ingested events.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

// AutomationRepository stores and retrieves Automation aggregates.
type AutomationRepository interface {
	Create(ctx context.Context, a *model.Automation) error
	Get(ctx context.Context, id string) (*model.Automation, error)
	List(ctx context.Context) ([]*model.Automation, error)
	Update(ctx context.Context, a *model.Automation) error
	Delete(ctx context.Context, id string) error
}

// IncidentRepository stores and retrieves Incident aggregates.
type IncidentRepository interface {
	Create(ctx context.Context, i *model.Incident) error
	Get(ctx context.Context, id string) (*model.Incident, error)
	List(ctx context.Context) ([]*model.Incident, error)
	Update(ctx context.Context, i *model.Incident) error
	Delete(ctx context.Context, id string) error
}

// ArtifactRepository stores and retrieves Artifact aggregates.
type ArtifactRepository interface {
	Create(ctx context.Context, a *model.Artifact) error
	Get(ctx context.Context, id string) (*model.Artifact, error)
	List(ctx context.Context) ([]*model.Artifact, error)
	Update(ctx context.Context, a *model.Artifact) error
	Delete(ctx context.Context, id string) error
}

// Repositories groups repository interfaces.
type Repositories struct {
	Workspace  WorkspaceRepository
	Flow       FlowRepository
	Deployment DeploymentRepository
	WorkPool   WorkPoolRepository
	FlowRun    FlowRunRepository
	Event      EventRepository
	Automation AutomationRepository
	Incident   IncidentRepository
	Artifact   ArtifactRepository
}
