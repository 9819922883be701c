package inmem

import (
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
)

// WorkspaceRepository is a thread-safe in-memory implementation.
type WorkspaceRepository struct{ *table[model.Workspace] }

// FlowRepository is a thread-safe in-memory implementation.
type FlowRepository struct{ *table[model.Flow] }

// DeploymentRepository is a thread-safe in-memory implementation.
type DeploymentRepository struct{ *table[model.Deployment] }

// WorkPoolRepository is a thread-safe in-memory implementation.
type WorkPoolRepository struct{ *table[model.WorkPool] }

// FlowRunRepository is a thread-safe in-memory implementation.
type FlowRunRepository struct{ *table[model.FlowRun] }

// EventRepository is a thread-safe in-memory implementation.
type EventRepository struct{ *table[model.Event] }

// AutomationRepository is a thread-safe in-memory implementation.
type AutomationRepository struct{ *table[model.Automation] }

// IncidentRepository is a thread-safe in-memory implementation.
type IncidentRepository struct{ *table[model.Incident] }

// ArtifactRepository is a thread-safe in-memory implementation.
type ArtifactRepository struct{ *table[model.Artifact] }

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{newTable(fields[model.Workspace]{
		id:        func(v *model.Workspace) *string { return &v.ID },
		createdAt: func(v *model.Workspace) *time.Time { return &v.CreatedAt },
		idPrefix:  "ws",
		notFound:  model.ErrWorkspaceNotFound,
	})}
}

func NewFlowRepository() *FlowRepository {
	return &FlowRepository{newTable(fields[model.Flow]{
		id:        func(v *model.Flow) *string { return &v.ID },
		createdAt: func(v *model.Flow) *time.Time { return &v.CreatedAt },
		clone: func(v *model.Flow) *model.Flow {
			cp := *v
			cp.Tags = append([]string(nil), v.Tags...)
			return &cp
		},
		idPrefix: "flow",
		notFound: model.ErrFlowNotFound,
	})}
}

func NewDeploymentRepository() *DeploymentRepository {
	return &DeploymentRepository{newTable(fields[model.Deployment]{
		id:        func(v *model.Deployment) *string { return &v.ID },
		createdAt: func(v *model.Deployment) *time.Time { return &v.CreatedAt },
		clone: func(v *model.Deployment) *model.Deployment {
			cp := *v
			cp.Tags = append([]string(nil), v.Tags...)
			if v.Schedule != nil {
				s := *v.Schedule
				cp.Schedule = &s
			}
			return &cp
		},
		idPrefix: "dep",
		notFound: model.ErrDeploymentNotFound,
	})}
}

func NewWorkPoolRepository() *WorkPoolRepository {
	return &WorkPoolRepository{newTable(fields[model.WorkPool]{
		id:        func(v *model.WorkPool) *string { return &v.ID },
		createdAt: func(v *model.WorkPool) *time.Time { return &v.CreatedAt },
		clone: func(v *model.WorkPool) *model.WorkPool {
			cp := *v
			cp.Queues = append([]model.WorkQueue(nil), v.Queues...)
			return &cp
		},
		idPrefix: "pool",
		notFound: model.ErrWorkPoolNotFound,
	})}
}

func NewFlowRunRepository() *FlowRunRepository {
	return &FlowRunRepository{newTable(fields[model.FlowRun]{
		id:        func(v *model.FlowRun) *string { return &v.ID },
		createdAt: func(v *model.FlowRun) *time.Time { return &v.CreatedAt },
		clone: func(v *model.FlowRun) *model.FlowRun {
			cp := *v
			cp.Tags = append([]string(nil), v.Tags...)
			return &cp
		},
		idPrefix: "run",
		notFound: model.ErrFlowRunNotFound,
	})}
}

func NewEventRepository() *EventRepository {
	return &EventRepository{newTable(fields[model.Event]{
		id:        func(v *model.Event) *string { return &v.ID },
		createdAt: func(v *model.Event) *time.Time { return &v.Received },
		idPrefix:  "evt",
		notFound:  model.ErrEventNotFound,
	})}
}

func NewAutomationRepository() *AutomationRepository {
	return &AutomationRepository{newTable(fields[model.Automation]{
		id:        func(v *model.Automation) *string { return &v.ID },
		createdAt: func(v *model.Automation) *time.Time { return &v.CreatedAt },
		clone: func(v *model.Automation) *model.Automation {
			cp := *v
			cp.Actions = append([]model.Action(nil), v.Actions...)
			return &cp
		},
		idPrefix: "auto",
		notFound: model.ErrAutomationNotFound,
	})}
}

func NewIncidentRepository() *IncidentRepository {
	return &IncidentRepository{newTable(fields[model.Incident]{
		id:        func(v *model.Incident) *string { return &v.ID },
		createdAt: func(v *model.Incident) *time.Time { return &v.CreatedAt },
		idPrefix:  "inc",
		notFound:  model.ErrIncidentNotFound,
	})}
}

func NewArtifactRepository() *ArtifactRepository {
	return &ArtifactRepository{newTable(fields[model.Artifact]{
		id:        func(v *model.Artifact) *string { return &v.ID },
		createdAt: func(v *model.Artifact) *time.Time { return &v.CreatedAt },
		idPrefix:  "art",
		notFound:  model.ErrArtifactNotFound,
	})}
}

// Store provides a unified interface for all in-memory repositories.
type Store struct {
	WorkspaceRepository  *WorkspaceRepository
	FlowRepository       *FlowRepository
	DeploymentRepository *DeploymentRepository
	WorkPoolRepository   *WorkPoolRepository
	FlowRunRepository    *FlowRunRepository
	EventRepository      *EventRepository
	AutomationRepository *AutomationRepository
	IncidentRepository   *IncidentRepository
	ArtifactRepository   *ArtifactRepository
}

// NewStore creates a new in-memory store with all repositories.
func NewStore() *Store {
	return &Store{
		WorkspaceRepository:  NewWorkspaceRepository(),
		FlowRepository:       NewFlowRepository(),
		DeploymentRepository: NewDeploymentRepository(),
		WorkPoolRepository:   NewWorkPoolRepository(),
		FlowRunRepository:    NewFlowRunRepository(),
		EventRepository:      NewEventRepository(),
		AutomationRepository: NewAutomationRepository(),
		IncidentRepository:   NewIncidentRepository(),
		ArtifactRepository:   NewArtifactRepository(),
	}
}

// Repositories returns the store as a domain.Repositories bundle.
func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{
		Workspace:  s.WorkspaceRepository,
		Flow:       s.FlowRepository,
		Deployment: s.DeploymentRepository,
		WorkPool:   s.WorkPoolRepository,
		FlowRun:    s.FlowRunRepository,
		Event:      s.EventRepository,
		Automation: s.AutomationRepository,
		Incident:   s.IncidentRepository,
		Artifact:   s.ArtifactRepository,
	}
}

// Compile-time assertions
var (
	_ domain.WorkspaceRepository  = (*WorkspaceRepository)(nil)
	_ domain.FlowRepository       = (*FlowRepository)(nil)
	_ domain.DeploymentRepository = (*DeploymentRepository)(nil)
	_ domain.WorkPoolRepository   = (*WorkPoolRepository)(nil)
	_ domain.FlowRunRepository    = (*FlowRunRepository)(nil)
	_ domain.EventRepository      = (*EventRepository)(nil)
	_ domain.AutomationRepository = (*AutomationRepository)(nil)
	_ domain.IncidentRepository   = (*IncidentRepository)(nil)
	_ domain.ArtifactRepository   = (*ArtifactRepository)(nil)
)
